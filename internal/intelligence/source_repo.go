package intelligence

import (
	"context"
	"fmt"

	"business-navigator/internal/plans"
	"business-navigator/internal/tasks"
)

// Counter is satisfied by the users and plans repositories.
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// TaskCounter is satisfied by the tasks repositories.
type TaskCounter interface {
	Count(ctx context.Context, filter tasks.CountFilter) (int, error)
}

// RepoSource answers counts from the feature repositories, used with the in-memory store.
type RepoSource struct {
	Users Counter
	Plans Counter
	Tasks TaskCounter
}

func (s RepoSource) Count(ctx context.Context, kind EntityKind, filter Filter) (int, error) {
	switch kind {
	case KindUser:
		if filter != (Filter{}) {
			return 0, fmt.Errorf("filter not supported for %s", kind)
		}
		return s.Users.Count(ctx)
	case KindBusinessPlan:
		if filter != (Filter{}) {
			return 0, fmt.Errorf("filter not supported for %s", kind)
		}
		return s.Plans.Count(ctx)
	case KindTask:
		var tf tasks.CountFilter
		if filter.Priority != nil {
			p := tasks.Priority(*filter.Priority)
			tf.Priority = &p
		}
		tf.Completed = filter.Completed
		return s.Tasks.Count(ctx, tf)
	default:
		return 0, fmt.Errorf("unknown entity kind %q", kind)
	}
}

// PlanActivity adapts a plans repository to ActivitySource.
type PlanActivity struct {
	Plans plans.Repo
}

func (a PlanActivity) RecentPlans(ctx context.Context, limit int) ([]Activity, error) {
	recent, err := a.Plans.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]Activity, 0, len(recent))
	for _, p := range recent {
		out = append(out, Activity{
			ID:           p.ID,
			Title:        p.Title,
			BusinessIdea: p.BusinessIdea,
			CreatedAt:    p.CreatedAt,
			User:         p.User,
		})
	}
	return out, nil
}
