// Package postgres provides PostgreSQL-backed implementations of the
// store interfaces using database/sql over the pgx driver.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/museworks/muse-api/internal/domain"
	"github.com/museworks/muse-api/internal/generation"
	"github.com/museworks/muse-api/internal/platform/logger"
	"github.com/museworks/muse-api/internal/store"
)

// GenerationStore implements store.GenerationStore using a PostgreSQL
// database as the storage backend.
type GenerationStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewGenerationStore creates a new PostgreSQL implementation of the
// GenerationStore interface. The database handle must be initialized and
// managed by the caller. If logger is nil, a default logger is used.
func NewGenerationStore(db store.DBTX, logger *slog.Logger) *GenerationStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &GenerationStore{
		db:     db,
		logger: logger.With(slog.String("component", "generation_store")),
	}
}

// Ensure GenerationStore implements store.GenerationStore
var _ store.GenerationStore = (*GenerationStore)(nil)

// Create implements store.GenerationStore.Create.
func (s *GenerationStore) Create(ctx context.Context, g *domain.Generation) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := g.Validate(); err != nil {
		log.Warn("generation validation failed during create",
			slog.String("error", err.Error()),
			slog.String("generation_id", g.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	requestJSON, resultJSON, err := marshalPayloads(g)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO generations
			(id, user_id, request, status, result, error_kind, error_message, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		g.ID,
		g.UserID,
		requestJSON,
		g.Status,
		resultJSON,
		g.ErrorKind,
		g.ErrorMessage,
		g.CreatedAt,
		g.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create generation",
			slog.String("error", err.Error()),
			slog.String("generation_id", g.ID.String()))
		return err
	}

	log.Debug("generation created",
		slog.String("generation_id", g.ID.String()),
		slog.String("status", string(g.Status)))
	return nil
}

// GetByID implements store.GenerationStore.GetByID.
func (s *GenerationStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Generation, error) {
	query := `
		SELECT id, user_id, request, status, result, error_kind, error_message, created_at, updated_at
		FROM generations
		WHERE id = $1
	`
	row := s.db.QueryRowContext(ctx, query, id)

	g, err := scanGeneration(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrGenerationNotFound
		}
		return nil, err
	}
	return g, nil
}

// Update implements store.GenerationStore.Update.
func (s *GenerationStore) Update(ctx context.Context, g *domain.Generation) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	requestJSON, resultJSON, err := marshalPayloads(g)
	if err != nil {
		return err
	}

	query := `
		UPDATE generations
		SET request = $2, status = $3, result = $4, error_kind = $5,
		    error_message = $6, updated_at = $7
		WHERE id = $1
	`
	res, err := s.db.ExecContext(
		ctx,
		query,
		g.ID,
		requestJSON,
		g.Status,
		resultJSON,
		g.ErrorKind,
		g.ErrorMessage,
		g.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to update generation",
			slog.String("error", err.Error()),
			slog.String("generation_id", g.ID.String()))
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrGenerationNotFound
	}

	log.Debug("generation updated",
		slog.String("generation_id", g.ID.String()),
		slog.String("status", string(g.Status)))
	return nil
}

// FindByStatus implements store.GenerationStore.FindByStatus.
func (s *GenerationStore) FindByStatus(
	ctx context.Context,
	status domain.GenerationStatus,
	limit int,
) ([]*domain.Generation, error) {
	query := `
		SELECT id, user_id, request, status, result, error_kind, error_message, created_at, updated_at
		FROM generations
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, query, status, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logger.Warn("failed to close rows", "error", closeErr)
		}
	}()

	var generations []*domain.Generation
	for rows.Next() {
		g, err := scanGeneration(rows)
		if err != nil {
			return nil, err
		}
		generations = append(generations, g)
	}
	return generations, rows.Err()
}

// FailStaleProcessing implements store.GenerationStore.FailStaleProcessing.
func (s *GenerationStore) FailStaleProcessing(
	ctx context.Context,
	age time.Duration,
	message string,
) (int64, error) {
	query := `
		UPDATE generations
		SET status = $1, error_kind = $2, error_message = $3, updated_at = NOW()
		WHERE status = $4 AND updated_at < $5
	`
	res, err := s.db.ExecContext(
		ctx,
		query,
		domain.GenerationStatusFailed,
		string(generation.KindUnknown),
		message,
		domain.GenerationStatusProcessing,
		time.Now().UTC().Add(-age),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanGeneration(row rowScanner) (*domain.Generation, error) {
	var (
		g            domain.Generation
		requestJSON  []byte
		resultJSON   []byte
		errorKind    sql.NullString
		errorMessage sql.NullString
	)

	err := row.Scan(
		&g.ID,
		&g.UserID,
		&requestJSON,
		&g.Status,
		&resultJSON,
		&errorKind,
		&errorMessage,
		&g.CreatedAt,
		&g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(requestJSON, &g.Request); err != nil {
		return nil, fmt.Errorf("failed to unmarshal generation request: %w", err)
	}
	if len(resultJSON) > 0 {
		var result domain.GenerationResult
		if err := json.Unmarshal(resultJSON, &result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal generation result: %w", err)
		}
		g.Result = &result
	}

	g.ErrorKind = errorKind.String
	g.ErrorMessage = errorMessage.String
	return &g, nil
}

func marshalPayloads(g *domain.Generation) (requestJSON, resultJSON []byte, err error) {
	requestJSON, err = json.Marshal(g.Request)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal generation request: %w", err)
	}

	if g.Result != nil {
		resultJSON, err = json.Marshal(g.Result)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to marshal generation result: %w", err)
		}
	}
	return requestJSON, resultJSON, nil
}
