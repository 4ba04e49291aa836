package tasks

import (
	"context"
	"errors"
)

// DefaultListLimit caps List when the filter sets no limit.
const DefaultListLimit = 500

var (
	ErrNotFound   = errors.New("task not found")
	ErrValidation = errors.New("invalid task")
)

type Repo interface {
	Create(ctx context.Context, task Task) (Task, error)
	CreateMany(ctx context.Context, tasks []Task) ([]Task, error)
	List(ctx context.Context, filter ListFilter) ([]Task, error)
	// SetCompleted updates a task owned by userID.
	SetCompleted(ctx context.Context, userID, id string, completed bool) (Task, error)
	Count(ctx context.Context, filter CountFilter) (int, error)
}
