package generation

import (
	"context"

	"github.com/museworks/muse-api/internal/domain"
)

// TextSchema selects server-side output constraints for a text call.
type TextSchema int

const (
	// TextSchemaNone requests free-form text.
	TextSchemaNone TextSchema = iota

	// TextSchemaDocument enforces the structured-document skeleton schema
	// server-side. Incompatible with search augmentation; the pipeline
	// falls back to a prose instruction when search is requested.
	TextSchemaDocument
)

// TextRequest is one text-generation call against the provider.
type TextRequest struct {
	Prompt string

	// UseSearch enables search augmentation; responses then carry
	// grounding references.
	UseSearch bool

	Schema TextSchema

	// Asset optionally attaches a binary input, e.g. an image to analyze.
	Asset *domain.Attachment
}

// TextResult is the normalized outcome of a text call.
type TextResult struct {
	Text      string
	Grounding []domain.GroundingRef
}

// ImageRequest is one image-generation or image-edit call.
type ImageRequest struct {
	Prompt      string
	AspectRatio string

	// Asset is the source image for an edit call; nil for pure generation.
	Asset *domain.Attachment
}

// VideoRequest is the initial call of a long-running video job.
type VideoRequest struct {
	Prompt      string
	AspectRatio string
	Resolution  string

	// Asset optionally seeds the video with a source image.
	Asset *domain.Attachment
}

// Provider is the abstract boundary to the generative-content backend.
// One method call corresponds to one network call; no method retries.
// Implementations return raw provider errors and leave classification to
// this package.
type Provider interface {
	// GenerateText issues one synchronous text call.
	GenerateText(ctx context.Context, req TextRequest) (*TextResult, error)

	// GenerateImage issues one image call returning the encoded payload.
	GenerateImage(ctx context.Context, req ImageRequest) (*domain.Blob, error)

	// StartVideo issues the initial video call and returns the job handle.
	StartVideo(ctx context.Context, req VideoRequest) (*domain.OperationHandle, error)

	// PollVideo re-checks a job handle and returns the refreshed handle.
	PollVideo(ctx context.Context, handle *domain.OperationHandle) (*domain.OperationHandle, error)

	// FetchAsset performs an authenticated download of a result URI.
	FetchAsset(ctx context.Context, uri string) (*domain.Blob, error)
}

// ArtifactSaver converts a fetched binary payload into a
// caller-addressable resource reference. Implemented by internal/artifact.
type ArtifactSaver interface {
	Save(ctx context.Context, blob *domain.Blob) (string, error)
}
