package intelligence

import (
	"context"
	"errors"
	"fmt"
)

// ErrDataAccess matches every *DataAccessError via errors.Is.
var ErrDataAccess = errors.New("data access failed")

// DataSource counts rows of one entity kind. Implementations must not write.
type DataSource interface {
	Count(ctx context.Context, kind EntityKind, filter Filter) (int, error)
}

// DataAccessError reports which count failed.
type DataAccessError struct {
	Kind   EntityKind
	Filter Filter
	Err    error
}

func (e *DataAccessError) Error() string {
	return fmt.Sprintf("count %s%s: %v", e.Kind, describeFilter(e.Filter), e.Err)
}

func (e *DataAccessError) Unwrap() error { return e.Err }

func (e *DataAccessError) Is(target error) bool { return target == ErrDataAccess }

func describeFilter(f Filter) string {
	out := ""
	if f.Priority != nil {
		out += fmt.Sprintf(" priority=%s", *f.Priority)
	}
	if f.Completed != nil {
		out += fmt.Sprintf(" completed=%t", *f.Completed)
	}
	return out
}

// MetricCounter reads the ten raw counts of a report.
type MetricCounter struct {
	Source DataSource
}

type countStep struct {
	kind   EntityKind
	filter Filter
	dst    func(*Counts) *int
}

func countSteps() []countStep {
	yes := true
	high, medium, low := PriorityHigh, PriorityMedium, PriorityLow
	return []countStep{
		{KindUser, Filter{}, func(c *Counts) *int { return &c.UserCount }},
		{KindBusinessPlan, Filter{}, func(c *Counts) *int { return &c.PlanCount }},
		{KindTask, Filter{}, func(c *Counts) *int { return &c.TaskCount }},
		{KindTask, Filter{Completed: &yes}, func(c *Counts) *int { return &c.CompletedTasks }},
		{KindTask, Filter{Priority: &high}, func(c *Counts) *int { return &c.HighPriorityTasks }},
		{KindTask, Filter{Priority: &medium}, func(c *Counts) *int { return &c.MediumPriorityTasks }},
		{KindTask, Filter{Priority: &low}, func(c *Counts) *int { return &c.LowPriorityTasks }},
		{KindTask, Filter{Priority: &high, Completed: &yes}, func(c *Counts) *int { return &c.HighPriorityCompleted }},
		{KindTask, Filter{Priority: &medium, Completed: &yes}, func(c *Counts) *int { return &c.MediumPriorityCompleted }},
		{KindTask, Filter{Priority: &low, Completed: &yes}, func(c *Counts) *int { return &c.LowPriorityCompleted }},
	}
}

// Fetch issues every count in order and stops at the first failure.
func (m MetricCounter) Fetch(ctx context.Context) (Counts, error) {
	if m.Source == nil {
		return Counts{}, &DataAccessError{Err: errors.New("no data source configured")}
	}
	var counts Counts
	for _, step := range countSteps() {
		n, err := m.Source.Count(ctx, step.kind, step.filter)
		if err == nil && n < 0 {
			err = fmt.Errorf("negative count %d", n)
		}
		if err != nil {
			return Counts{}, &DataAccessError{Kind: step.kind, Filter: step.filter, Err: err}
		}
		*step.dst(&counts) = n
	}
	return counts, nil
}
