package store

import (
	"context"
	"time"

	"github.com/me/flowplan/pkg/model"
)

// Store defines the persistence layer for saved plans. Lookups for missing
// ids return (nil, nil).
type Store interface {
	CreatePlan(ctx context.Context, p *model.SavedPlan) error
	GetPlan(ctx context.Context, id string) (*model.SavedPlan, error)
	ListPlans(ctx context.Context, opts model.ListOptions) ([]*model.SavedPlan, int, error)
	DeletePlan(ctx context.Context, id string) error

	// PrunePlans deletes plans created before the cutoff and reports how
	// many rows were removed.
	PrunePlans(ctx context.Context, before time.Time) (int, error)

	// Lifecycle
	Close() error
	Migrate(ctx context.Context) error
}
