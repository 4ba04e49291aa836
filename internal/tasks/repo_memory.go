package tasks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type MemoryRepo struct {
	mu    sync.RWMutex
	tasks map[string]Task
	seq   map[string]int
	next  int
	now   func() time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		tasks: make(map[string]Task),
		seq:   make(map[string]int),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (r *MemoryRepo) Create(ctx context.Context, task Task) (Task, error) {
	out, err := r.CreateMany(ctx, []Task{task})
	if err != nil {
		return Task{}, err
	}
	return out[0], nil
}

func (r *MemoryRepo) CreateMany(ctx context.Context, tasks []Task) ([]Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		prepared := prepare(t, now)
		r.tasks[prepared.ID] = prepared
		r.seq[prepared.ID] = r.next
		r.next++
		out = append(out, prepared)
	}
	return out, nil
}

// List returns tasks in insertion order, at most DefaultListLimit unless the filter sets a limit.
func (r *MemoryRepo) List(ctx context.Context, filter ListFilter) ([]Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := []Task{}
	for _, t := range r.tasks {
		if filter.matches(t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return r.seq[out[i].ID] < r.seq[out[j].ID] })
	r.mu.RUnlock()
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepo) SetCompleted(ctx context.Context, userID, id string, completed bool) (Task, error) {
	if err := ctx.Err(); err != nil {
		return Task{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok || t.UserID != userID {
		return Task{}, ErrNotFound
	}
	t.Completed = completed
	r.tasks[id] = t
	return t, nil
}

func (r *MemoryRepo) Count(ctx context.Context, filter CountFilter) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, t := range r.tasks {
		if filter.matches(t) {
			n++
		}
	}
	return n, nil
}

func prepare(t Task, now time.Time) Task {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.EstimatedDuration == "" {
		t.EstimatedDuration = DefaultEstimatedDuration
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	return t
}
