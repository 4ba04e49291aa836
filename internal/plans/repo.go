package plans

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("business plan not found")

type Repo interface {
	Create(ctx context.Context, plan BusinessPlan) (BusinessPlan, error)
	GetByID(ctx context.Context, id string) (BusinessPlan, error)
	List(ctx context.Context, filter ListFilter) ([]BusinessPlan, error)
	// Recent returns the newest plans first with owner names resolved.
	Recent(ctx context.Context, limit int) ([]RecentPlan, error)
	Count(ctx context.Context) (int, error)
	Delete(ctx context.Context, id string) error
}
