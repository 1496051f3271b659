package domain

// MediaNone is the explicit sentinel for a section whose media is absent,
// either because no image prompt was given or because enrichment failed.
const MediaNone = "none"

// Document is a structured, ordered document produced by the two-stage
// pipeline: a skeleton of titled sections, then per-section media
// enrichment. Section order always equals skeleton order.
type Document struct {
	Title    string    `json:"title"`
	Sections []Section `json:"sections"`
}

// Section is one element of a Document. Media starts absent, and after
// enrichment holds either an artifact reference or MediaNone.
type Section struct {
	Title       string   `json:"title"`
	Content     []string `json:"content"`
	ImagePrompt string   `json:"image_prompt,omitempty"`
	Media       string   `json:"media,omitempty"`
}

// OperationHandle is an opaque token for an asynchronous provider job.
// Done transitions from false to true exactly once; once true, either
// ResultURI or FailureMessage is populated.
type OperationHandle struct {
	Name           string `json:"name"`
	Done           bool   `json:"done"`
	ResultURI      string `json:"result_uri,omitempty"`
	FailureMessage string `json:"failure_message,omitempty"`

	// Raw carries the provider's native operation value so the provider
	// adapter can refresh the handle. Never serialized.
	Raw any `json:"-"`
}

// Blob is a fetched binary payload plus its media type.
type Blob struct {
	Data     []byte
	MIMEType string
}
