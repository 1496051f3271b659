package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/museworks/muse-api/internal/domain"
	"github.com/museworks/muse-api/internal/generation"
	"github.com/museworks/muse-api/internal/redact"
	"github.com/museworks/muse-api/internal/store"
)

// GenerationDispatcher is the slice of the orchestration core this task
// needs: consume one request, produce one result or classified failure.
type GenerationDispatcher interface {
	Dispatch(ctx context.Context, req *domain.GenerationRequest) (*domain.GenerationResult, error)
}

// GenerationTask executes one persisted generation: it marks the record
// processing, dispatches the request, and stores either the result or
// the classified failure.
type GenerationTask struct {
	generation *domain.Generation
	dispatcher GenerationDispatcher
	store      store.GenerationStore
	logger     *slog.Logger
}

// Ensure GenerationTask implements the Task interface
var _ Task = (*GenerationTask)(nil)

// NewGenerationTask creates a task for the given pending generation.
func NewGenerationTask(
	gen *domain.Generation,
	dispatcher GenerationDispatcher,
	genStore store.GenerationStore,
	logger *slog.Logger,
) (*GenerationTask, error) {
	if gen == nil {
		return nil, errors.New("generation cannot be nil")
	}
	if dispatcher == nil {
		return nil, errors.New("dispatcher cannot be nil")
	}
	if genStore == nil {
		return nil, errors.New("generation store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &GenerationTask{
		generation: gen,
		dispatcher: dispatcher,
		store:      genStore,
		logger:     logger.With(slog.String("generation_id", gen.ID.String())),
	}, nil
}

// ID implements Task.ID.
func (t *GenerationTask) ID() uuid.UUID {
	return t.generation.ID
}

// Type implements Task.Type.
func (t *GenerationTask) Type() string {
	return "generation"
}

// Execute implements Task.Execute.
func (t *GenerationTask) Execute(ctx context.Context) error {
	if err := t.transition(ctx, domain.GenerationStatusProcessing); err != nil {
		return err
	}

	result, err := t.dispatcher.Dispatch(ctx, &t.generation.Request)
	if err != nil {
		return t.recordFailure(ctx, err)
	}

	t.generation.Result = result
	if err := t.transition(ctx, domain.GenerationStatusCompleted); err != nil {
		return err
	}

	t.logger.InfoContext(ctx, "generation completed",
		slog.String("mode", string(t.generation.Request.Mode)))
	return nil
}

// recordFailure persists the classified failure on the generation record.
// The task itself completes normally; the failure belongs to the record.
func (t *GenerationTask) recordFailure(ctx context.Context, dispatchErr error) error {
	classified := generation.Classify(dispatchErr)
	t.generation.ErrorKind = string(classified.Kind)
	t.generation.ErrorMessage = classified.UserMessage()

	t.logger.WarnContext(ctx, "generation failed",
		slog.String("mode", string(t.generation.Request.Mode)),
		slog.String("kind", string(classified.Kind)),
		slog.String("error", redact.String(classified.Message)))

	return t.transition(ctx, domain.GenerationStatusFailed)
}

func (t *GenerationTask) transition(ctx context.Context, status domain.GenerationStatus) error {
	if err := t.generation.UpdateStatus(status); err != nil {
		return err
	}
	if err := t.store.Update(ctx, t.generation); err != nil {
		return fmt.Errorf("failed to persist generation status %s: %w", status, err)
	}
	return nil
}

// recoveryBatchSize bounds each FindByStatus page during startup recovery.
const recoveryBatchSize = 100

// RecoverInterrupted marks generations left in the pending or processing
// state by a previous run as failed, so clients are not left polling a
// record that will never complete. It must run before the server starts
// accepting new requests.
func RecoverInterrupted(ctx context.Context, genStore store.GenerationStore, logger *slog.Logger) error {
	count, err := genStore.FailStaleProcessing(ctx, time.Duration(0),
		"generation interrupted by server restart")
	if err != nil {
		return fmt.Errorf("failed to recover interrupted generations: %w", err)
	}

	if count > 0 {
		logger.Info("recovered interrupted generations", slog.Int64("count", count))
	}

	// The queue is in-memory, so pending records from before the restart
	// were lost with it. Recovery runs before the server accepts traffic,
	// so every pending record seen here is one of those; fail them rather
	// than leave clients polling records nothing will process.
	for {
		pending, err := genStore.FindByStatus(ctx, domain.GenerationStatusPending, recoveryBatchSize)
		if err != nil {
			return fmt.Errorf("failed to find pending generations: %w", err)
		}
		if len(pending) == 0 {
			return nil
		}

		for _, gen := range pending {
			gen.ErrorKind = string(generation.KindUnknown)
			gen.ErrorMessage = "generation interrupted by server restart"
			if err := gen.UpdateStatus(domain.GenerationStatusFailed); err != nil {
				return err
			}
			if err := genStore.Update(ctx, gen); err != nil {
				return fmt.Errorf("failed to fail pending generation %s: %w", gen.ID, err)
			}
		}
		logger.Info("failed pending generations from a previous run",
			slog.Int("count", len(pending)))

		if len(pending) < recoveryBatchSize {
			return nil
		}
	}
}
