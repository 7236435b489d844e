package driven

import (
	"context"

	"github.com/logship/logsh/internal/core/domain"
)

// ConfigStore persists the connection set.
// Implementations provide no cross-process locking; concurrent
// load-then-save cycles are last-write-wins.
type ConfigStore interface {
	// Path returns the file backing the store.
	Path() string

	// Load returns the stored configuration, or an empty one when none exists.
	Load(ctx context.Context) (*domain.Configuration, error)

	// Save overwrites the stored configuration.
	Save(ctx context.Context, cfg *domain.Configuration) error
}
