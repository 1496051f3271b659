// Package task provides background processing of generation requests:
// an in-memory queue drained by a fixed worker pool, so the API can
// accept a request and return immediately while dispatch runs behind it.
package task

import (
	"context"

	"github.com/google/uuid"
)

// Task is a unit of background work.
type Task interface {
	// ID returns the unique identifier of the task.
	ID() uuid.UUID

	// Type returns a short name for the kind of work, used in logs.
	Type() string

	// Execute performs the work. The context carries cancellation from
	// the runner's shutdown.
	Execute(ctx context.Context) error
}
