package repo

import (
	"context"

	"github.com/thezakman/tapik/internal/domain"
)

// RunStore keeps completed validation runs for the API to serve. Historical
// persistence is out of scope; adapters may keep just the most recent run.
type RunStore interface {
	Put(ctx context.Context, m *domain.Matrix) error
	// Latest returns nil, nil when no run has completed yet.
	Latest(ctx context.Context) (*domain.Matrix, error)
}
