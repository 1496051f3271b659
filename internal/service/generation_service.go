// Package service contains application services coordinating the domain,
// stores, and background processing on behalf of the API layer.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/museworks/muse-api/internal/domain"
	"github.com/museworks/muse-api/internal/store"
	"github.com/museworks/muse-api/internal/task"
)

// TaskSubmitter is the slice of the task runner the service needs.
type TaskSubmitter interface {
	Submit(t task.Task) error
}

// GenerationService accepts generation requests, persists their
// lifecycle records, and enqueues the background work that fulfills
// them.
type GenerationService struct {
	store      store.GenerationStore
	dispatcher task.GenerationDispatcher
	runner     TaskSubmitter
	logger     *slog.Logger
}

// NewGenerationService creates a GenerationService.
func NewGenerationService(
	genStore store.GenerationStore,
	dispatcher task.GenerationDispatcher,
	runner TaskSubmitter,
	logger *slog.Logger,
) (*GenerationService, error) {
	if genStore == nil {
		return nil, errors.New("generation store cannot be nil")
	}
	if dispatcher == nil {
		return nil, errors.New("dispatcher cannot be nil")
	}
	if runner == nil {
		return nil, errors.New("runner cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &GenerationService{
		store:      genStore,
		dispatcher: dispatcher,
		runner:     runner,
		logger:     logger.With(slog.String("component", "generation_service")),
	}, nil
}

// CreateAndEnqueue persists a pending generation for the user and
// enqueues its background task. The returned record is in the pending
// state; clients observe progress by fetching it again.
func (s *GenerationService) CreateAndEnqueue(
	ctx context.Context,
	userID uuid.UUID,
	req domain.GenerationRequest,
) (*domain.Generation, error) {
	gen, err := domain.NewGeneration(userID, req)
	if err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, gen); err != nil {
		return nil, err
	}

	t, err := task.NewGenerationTask(gen, s.dispatcher, s.store, s.logger)
	if err != nil {
		return nil, err
	}

	if err := s.runner.Submit(t); err != nil {
		// The record exists but nothing will process it; fail it rather
		// than leave the client polling forever.
		s.logger.WarnContext(ctx, "failed to enqueue generation",
			slog.String("generation_id", gen.ID.String()),
			slog.String("error", err.Error()))

		gen.ErrorKind = "unknown"
		gen.ErrorMessage = "the server is overloaded, try again later"
		if updateErr := gen.UpdateStatus(domain.GenerationStatusFailed); updateErr == nil {
			if storeErr := s.store.Update(ctx, gen); storeErr != nil {
				s.logger.ErrorContext(ctx, "failed to mark generation failed",
					slog.String("generation_id", gen.ID.String()),
					slog.String("error", storeErr.Error()))
			}
		}
		return nil, err
	}

	s.logger.InfoContext(ctx, "generation enqueued",
		slog.String("generation_id", gen.ID.String()),
		slog.String("mode", string(req.Mode)))
	return gen, nil
}

// GetForUser retrieves a generation owned by the given user. A record
// belonging to another user reads as not found rather than forbidden, so
// record IDs leak no ownership information.
func (s *GenerationService) GetForUser(
	ctx context.Context,
	id uuid.UUID,
	userID uuid.UUID,
) (*domain.Generation, error) {
	gen, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if gen.UserID != userID {
		return nil, store.ErrGenerationNotFound
	}
	return gen, nil
}
