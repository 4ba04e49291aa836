package plans

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// OwnerLookup resolves a user id to a display name for Recent.
type OwnerLookup func(ctx context.Context, userID string) (string, error)

type MemoryRepo struct {
	mu    sync.RWMutex
	plans map[string]BusinessPlan
	owner OwnerLookup
	now   func() time.Time
}

func NewMemoryRepo(owner OwnerLookup) *MemoryRepo {
	return &MemoryRepo{
		plans: make(map[string]BusinessPlan),
		owner: owner,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (r *MemoryRepo) Create(ctx context.Context, plan BusinessPlan) (BusinessPlan, error) {
	if err := ctx.Err(); err != nil {
		return BusinessPlan{}, err
	}
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	if len(plan.Content) == 0 {
		plan.Content = json.RawMessage(`{}`)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = r.now()
	}
	r.plans[plan.ID] = plan
	return plan, nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (BusinessPlan, error) {
	if err := ctx.Err(); err != nil {
		return BusinessPlan{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	plan, ok := r.plans[id]
	if !ok {
		return BusinessPlan{}, ErrNotFound
	}
	return plan, nil
}

func (r *MemoryRepo) List(ctx context.Context, filter ListFilter) ([]BusinessPlan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := r.newestFirst(filter.UserID)
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *MemoryRepo) Recent(ctx context.Context, limit int) ([]RecentPlan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	all := r.newestFirst("")
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	out := make([]RecentPlan, 0, len(all))
	for _, p := range all {
		name := p.UserID
		if r.owner != nil {
			n, err := r.owner(ctx, p.UserID)
			if err != nil {
				return nil, err
			}
			name = n
		}
		out = append(out, RecentPlan{
			ID:           p.ID,
			Title:        p.Title,
			BusinessIdea: p.BusinessIdea,
			CreatedAt:    p.CreatedAt,
			User:         name,
		})
	}
	return out, nil
}

func (r *MemoryRepo) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plans), nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.plans[id]; !ok {
		return ErrNotFound
	}
	delete(r.plans, id)
	return nil
}

func (r *MemoryRepo) newestFirst(userID string) []BusinessPlan {
	r.mu.RLock()
	out := make([]BusinessPlan, 0, len(r.plans))
	for _, p := range r.plans {
		if userID != "" && p.UserID != userID {
			continue
		}
		out = append(out, p)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
