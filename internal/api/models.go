package api

import (
	"time"

	"github.com/museworks/muse-api/internal/domain"
)

// Common request/response structures

// CreateGenerationRequest defines the payload for submitting a new
// generation. Binary assets arrive base64-encoded; decoding to bytes is
// the only transformation this layer performs on them.
type CreateGenerationRequest struct {
	Mode          string `json:"mode"            validate:"required,oneof=chat image image_edit image_analyze document video"`
	Prompt        string `json:"prompt"          validate:"max=32768"`
	AspectRatio   string `json:"aspect_ratio"    validate:"omitempty,oneof=1:1 16:9 9:16 4:3 3:4"`
	DocumentStyle string `json:"document_style"  validate:"max=256"`
	UseSearch     bool   `json:"use_search"`

	AssetData     string `json:"asset_data"      validate:"omitempty,base64"`
	AssetMIMEType string `json:"asset_mime_type" validate:"required_with=AssetData,max=128"`
}

// GenerationResponse represents the response data for a generation record.
type GenerationResponse struct {
	ID           string                   `json:"id"`
	Mode         string                   `json:"mode"`
	Status       string                   `json:"status"`
	Result       *domain.GenerationResult `json:"result,omitempty"`
	ErrorKind    string                   `json:"error_kind,omitempty"`
	ErrorMessage string                   `json:"error_message,omitempty"`
	CreatedAt    time.Time                `json:"created_at"`
	UpdatedAt    time.Time                `json:"updated_at"`
}

// generationToResponse converts a domain.Generation to its DTO.
func generationToResponse(gen *domain.Generation) GenerationResponse {
	return GenerationResponse{
		ID:           gen.ID.String(),
		Mode:         string(gen.Request.Mode),
		Status:       string(gen.Status),
		Result:       gen.Result,
		ErrorKind:    gen.ErrorKind,
		ErrorMessage: gen.ErrorMessage,
		CreatedAt:    gen.CreatedAt,
		UpdatedAt:    gen.UpdatedAt,
	}
}
