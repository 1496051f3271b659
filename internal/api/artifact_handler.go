package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/museworks/muse-api/internal/api/shared"
	"github.com/museworks/muse-api/internal/artifact"
)

// ArtifactHandler serves stored media artifacts referenced from
// generation results.
type ArtifactHandler struct {
	store  artifact.Store
	logger *slog.Logger
}

// NewArtifactHandler creates a new ArtifactHandler.
func NewArtifactHandler(store artifact.Store, logger *slog.Logger) *ArtifactHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ArtifactHandler{
		store:  store,
		logger: logger.With(slog.String("component", "artifact_handler")),
	}
}

// GetArtifact handles GET /api/artifacts/{id} requests, streaming the
// raw media bytes with their stored content type.
func (h *ArtifactHandler) GetArtifact(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Artifact ID required")
		return
	}

	blob, err := h.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, artifact.ErrNotFound) {
			shared.RespondWithError(w, r, http.StatusNotFound, "Artifact not found")
			return
		}
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to load artifact", err)
		return
	}

	w.Header().Set("Content-Type", blob.MIMEType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(blob.Data); err != nil {
		h.logger.Warn("failed to write artifact response", "error", err)
	}
}
