package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Mode selects the provider call shape for a generation request.
type Mode string

// Supported generation modes.
const (
	ModeChat         Mode = "chat"
	ModeImage        Mode = "image"
	ModeImageEdit    Mode = "image_edit"
	ModeImageAnalyze Mode = "image_analyze"
	ModeDocument     Mode = "document"
	ModeVideo        Mode = "video"
)

// GenerationStatus represents the processing state of a generation record.
type GenerationStatus string

// Possible generation status values
const (
	GenerationStatusPending    GenerationStatus = "pending"
	GenerationStatusProcessing GenerationStatus = "processing"
	GenerationStatusCompleted  GenerationStatus = "completed"
	GenerationStatusFailed     GenerationStatus = "failed"
)

// Common validation errors for generation requests and records
var (
	ErrEmptyGenerationID     = errors.New("generation ID cannot be empty")
	ErrEmptyGenerationUserID = errors.New("generation user ID cannot be empty")
	ErrEmptyPrompt           = errors.New("prompt cannot be empty")
	ErrInvalidMode           = errors.New("invalid generation mode")
	ErrInvalidStatus         = errors.New("invalid generation status")
	ErrResultModeMismatch    = errors.New("result variant does not match request mode")
)

// Attachment is a binary asset supplied alongside a request, e.g. the
// source image for an edit. Encoding from the user's file to bytes happens
// upstream; the core only sees the decoded payload.
type Attachment struct {
	Data     []byte `json:"-"`
	MIMEType string `json:"mime_type"`
}

// GenerationRequest describes a single user-issued generation. It is
// consumed exactly once and produces exactly one GenerationResult or one
// classified failure.
type GenerationRequest struct {
	Mode        Mode        `json:"mode"`
	Prompt      string      `json:"prompt"`
	AspectRatio string      `json:"aspect_ratio,omitempty"`
	Asset       *Attachment `json:"asset,omitempty"`

	// DocumentStyle selects a presentation style for document mode.
	DocumentStyle string `json:"document_style,omitempty"`

	// UseSearch requests search augmentation with grounding references.
	UseSearch bool `json:"use_search,omitempty"`
}

// Validate checks the request for locally-detectable problems. It never
// touches the network; the dispatcher calls it before issuing any
// provider call.
func (r *GenerationRequest) Validate() error {
	if !isValidMode(r.Mode) {
		return ErrInvalidMode
	}
	if r.Prompt == "" && r.Mode != ModeImageAnalyze {
		return ErrEmptyPrompt
	}
	return nil
}

func isValidMode(m Mode) bool {
	switch m {
	case ModeChat, ModeImage, ModeImageEdit, ModeImageAnalyze, ModeDocument, ModeVideo:
		return true
	default:
		return false
	}
}

// GroundingRef is a citation accompanying search-augmented text output.
type GroundingRef struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// GenerationResult is a tagged union over the possible outcomes of a
// request. Exactly one variant field is populated, and it must match the
// request's mode.
type GenerationResult struct {
	Mode Mode `json:"mode"`

	// Text holds the model output for chat and image-analyze modes.
	Text      string         `json:"text,omitempty"`
	Grounding []GroundingRef `json:"grounding,omitempty"`

	// ImageRef and VideoRef are artifact references to stored media.
	ImageRef string `json:"image_ref,omitempty"`
	VideoRef string `json:"video_ref,omitempty"`

	Document *Document `json:"document,omitempty"`
}

// Validate checks that the populated variant matches the result mode.
func (res *GenerationResult) Validate() error {
	switch res.Mode {
	case ModeChat, ModeImageAnalyze:
		if res.Text == "" {
			return ErrResultModeMismatch
		}
	case ModeImage, ModeImageEdit:
		if res.ImageRef == "" {
			return ErrResultModeMismatch
		}
	case ModeDocument:
		if res.Document == nil {
			return ErrResultModeMismatch
		}
	case ModeVideo:
		if res.VideoRef == "" {
			return ErrResultModeMismatch
		}
	default:
		return ErrInvalidMode
	}
	return nil
}

// Generation is the persisted lifecycle record for a request. Status moves
// pending -> processing -> {completed, failed}.
type Generation struct {
	ID           uuid.UUID         `json:"id"`
	UserID       uuid.UUID         `json:"user_id"`
	Request      GenerationRequest `json:"request"`
	Status       GenerationStatus  `json:"status"`
	Result       *GenerationResult `json:"result,omitempty"`
	ErrorKind    string            `json:"error_kind,omitempty"`
	ErrorMessage string            `json:"error_message,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// NewGeneration creates a pending Generation for the given user and request.
// Returns an error if validation fails.
func NewGeneration(userID uuid.UUID, req GenerationRequest) (*Generation, error) {
	g := &Generation{
		ID:        uuid.New(),
		UserID:    userID,
		Request:   req,
		Status:    GenerationStatusPending,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := g.Validate(); err != nil {
		return nil, err
	}

	return g, nil
}

// Validate checks if the Generation has valid data.
func (g *Generation) Validate() error {
	if g.ID == uuid.Nil {
		return ErrEmptyGenerationID
	}
	if g.UserID == uuid.Nil {
		return ErrEmptyGenerationUserID
	}
	if err := g.Request.Validate(); err != nil {
		return err
	}
	if !isValidGenerationStatus(g.Status) {
		return ErrInvalidStatus
	}
	return nil
}

// UpdateStatus updates the generation's status and the UpdatedAt timestamp.
func (g *Generation) UpdateStatus(status GenerationStatus) error {
	if !isValidGenerationStatus(status) {
		return ErrInvalidStatus
	}

	g.Status = status
	g.UpdatedAt = time.Now().UTC()
	return nil
}

func isValidGenerationStatus(status GenerationStatus) bool {
	switch status {
	case GenerationStatusPending, GenerationStatusProcessing,
		GenerationStatusCompleted, GenerationStatusFailed:
		return true
	default:
		return false
	}
}
