package api

import (
	"context"
	"encoding/base64"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/museworks/muse-api/internal/api/middleware"
	"github.com/museworks/muse-api/internal/api/shared"
	"github.com/museworks/muse-api/internal/domain"
)

// GenerationService is the service surface the handler depends on.
type GenerationService interface {
	CreateAndEnqueue(ctx context.Context, userID uuid.UUID, req domain.GenerationRequest) (*domain.Generation, error)
	GetForUser(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*domain.Generation, error)
}

// GenerationHandler handles generation-related HTTP requests.
type GenerationHandler struct {
	service GenerationService
	logger  *slog.Logger
}

// NewGenerationHandler creates a new GenerationHandler.
func NewGenerationHandler(service GenerationService, logger *slog.Logger) *GenerationHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GenerationHandler{
		service: service,
		logger:  logger.With(slog.String("component", "generation_handler")),
	}
}

// CreateGeneration handles POST /api/generations requests. Processing is
// asynchronous: the response is 202 Accepted with the pending record.
func (h *GenerationHandler) CreateGeneration(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req CreateGenerationRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error", err)
		return
	}

	domainReq, err := toDomainRequest(req)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid asset encoding", err)
		return
	}

	gen, err := h.service.CreateAndEnqueue(r.Context(), userID, domainReq)
	if err != nil {
		shared.RespondWithError(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, generationToResponse(gen))
}

// GetGeneration handles GET /api/generations/{id} requests.
func (h *GenerationHandler) GetGeneration(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid generation ID", err)
		return
	}

	gen, err := h.service.GetForUser(r.Context(), id, userID)
	if err != nil {
		shared.RespondWithError(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, generationToResponse(gen))
}

// toDomainRequest converts the DTO to a domain request, decoding the
// optional base64 asset payload.
func toDomainRequest(req CreateGenerationRequest) (domain.GenerationRequest, error) {
	domainReq := domain.GenerationRequest{
		Mode:          domain.Mode(req.Mode),
		Prompt:        req.Prompt,
		AspectRatio:   req.AspectRatio,
		DocumentStyle: req.DocumentStyle,
		UseSearch:     req.UseSearch,
	}

	if req.AssetData != "" {
		data, err := base64.StdEncoding.DecodeString(req.AssetData)
		if err != nil {
			return domain.GenerationRequest{}, err
		}
		domainReq.Asset = &domain.Attachment{
			Data:     data,
			MIMEType: req.AssetMIMEType,
		}
	}

	return domainReq, nil
}
