// Package generation contains the orchestration core for content
// generation: routing requests to the provider boundary, running the
// two-stage structured-document pipeline, polling long-running video
// operations, and classifying provider failures into a closed taxonomy.
//
// The package is provider-agnostic. It consumes the Provider interface
// and domain values only; the Gemini-backed implementation lives in
// internal/platform/gemini, following the hexagonal architecture pattern.
package generation
