// Package gemini implements the generation.Provider interface against
// Google's Gemini API using the google.golang.org/genai client.
//
// This package is an infrastructure adapter in the hexagonal
// architecture: it translates between the application's domain values and
// the genai SDK's request and response types without exposing SDK details
// to the orchestration core. It issues exactly one network call per
// Provider method and returns raw provider errors; failure classification
// belongs to the generation package.
package gemini
