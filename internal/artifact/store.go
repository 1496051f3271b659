// Package artifact stores generated media blobs and hands out
// caller-addressable references for them. A reference is the stable
// handle the orchestration core places into generation results; the API
// layer resolves it back to bytes on download.
package artifact

import (
	"context"
	"errors"

	"github.com/museworks/muse-api/internal/domain"
)

// RefScheme prefixes every artifact reference.
const RefScheme = "artifact://"

// ErrNotFound is returned when no artifact exists for a reference.
var ErrNotFound = errors.New("artifact not found")

// Store persists media blobs addressed by opaque references.
type Store interface {
	// Save stores the blob and returns its reference.
	Save(ctx context.Context, blob *domain.Blob) (string, error)

	// Get resolves a reference back to the stored blob.
	// Returns ErrNotFound if no artifact exists for the reference.
	Get(ctx context.Context, ref string) (*domain.Blob, error)
}
