// Package store defines the persistence interfaces consumed by the
// application core, keeping services decoupled from the concrete
// database implementation in internal/platform/postgres.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/museworks/muse-api/internal/domain"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrGenerationNotFound indicates that the requested generation does
	// not exist in the store.
	ErrGenerationNotFound = fmt.Errorf("%w: generation", ErrNotFound)
)

// IsNotFoundError checks if the error is any kind of "not found" error,
// including the entity-specific variants.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// DBTX abstracts the database access layer. It is implemented by both
// *sql.DB and *sql.Tx, allowing store code to run inside or outside a
// transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// GenerationStore defines the interface for generation record persistence.
type GenerationStore interface {
	// Create saves a new generation record.
	// Returns validation errors from the domain Generation if data is invalid.
	Create(ctx context.Context, generation *domain.Generation) error

	// GetByID retrieves a generation by its unique ID.
	// Returns ErrGenerationNotFound if the generation does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Generation, error)

	// Update saves changes to an existing generation.
	// Returns ErrGenerationNotFound if the generation does not exist.
	Update(ctx context.Context, generation *domain.Generation) error

	// FindByStatus retrieves generations with the given status, newest
	// first, bounded by limit.
	FindByStatus(ctx context.Context, status domain.GenerationStatus, limit int) ([]*domain.Generation, error)

	// FailStaleProcessing marks generations stuck in the processing state
	// longer than the given age as failed. Used at startup recovery after
	// an unclean shutdown. Returns the number of records updated.
	FailStaleProcessing(ctx context.Context, age time.Duration, message string) (int64, error)
}
