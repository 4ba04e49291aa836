package intelligence

import (
	"context"
	"fmt"
	"math"
	"time"
)

// RecentActivityLimit is how many recent plans a report lists.
const RecentActivityLimit = 5

// ActivitySource lists the newest business plans.
type ActivitySource interface {
	RecentPlans(ctx context.Context, limit int) ([]Activity, error)
}

// Builder runs count, derive, recommend and assemble for one report.
type Builder struct {
	Counter    MetricCounter
	Activity   ActivitySource
	Thresholds Thresholds
	Now        func() time.Time
}

func NewBuilder(source DataSource, activity ActivitySource, thresholds Thresholds) *Builder {
	return &Builder{
		Counter:    MetricCounter{Source: source},
		Activity:   activity,
		Thresholds: thresholds,
	}
}

// Build returns a complete report or an error; it never returns a partial report.
func (b *Builder) Build(ctx context.Context) (AggregateReport, error) {
	counts, err := b.Counter.Fetch(ctx)
	if err != nil {
		return AggregateReport{}, err
	}
	derived := Derive(counts, b.Thresholds)
	recs := Evaluate(derived, counts, b.Thresholds)

	activity := []Activity{}
	if b.Activity != nil {
		items, err := b.Activity.RecentPlans(ctx, RecentActivityLimit)
		if err != nil {
			return AggregateReport{}, &DataAccessError{Kind: KindBusinessPlan, Err: fmt.Errorf("recent plans: %w", err)}
		}
		if items != nil {
			activity = items
		}
	}

	return AggregateReport{
		Counts:          counts,
		Derived:         derived,
		Insights:        viewOf(counts, derived),
		Recommendations: recs,
		Overview: Overview{
			TotalUsers:            counts.UserCount,
			TotalBusinessPlans:    counts.PlanCount,
			TotalTasks:            counts.TaskCount,
			CompletedTasks:        counts.CompletedTasks,
			OverallCompletionRate: roundPercent(derived.CompletionRate),
		},
		TaskAnalytics: TaskAnalytics{
			HighPriority:   TierStats{counts.HighPriorityTasks, counts.HighPriorityCompleted, roundPercent(derived.HighPriorityCompletionRate)},
			MediumPriority: TierStats{counts.MediumPriorityTasks, counts.MediumPriorityCompleted, roundPercent(derived.MediumPriorityCompletionRate)},
			LowPriority:    TierStats{counts.LowPriorityTasks, counts.LowPriorityCompleted, roundPercent(derived.LowPriorityCompletionRate)},
		},
		RecentActivity: activity,
		Timestamp:      b.now(),
	}, nil
}

func (b *Builder) now() time.Time {
	if b.Now != nil {
		return b.Now().UTC()
	}
	return time.Now().UTC()
}

func viewOf(c Counts, d DerivedInsights) InsightsView {
	var v InsightsView
	v.UserEngagement.ActiveUsers = c.UserCount
	v.UserEngagement.EngagementRate = d.EngagementRate
	v.UserEngagement.AveragePlansPerUser = d.AveragePlansPerUser
	v.Productivity.TotalTasksGenerated = c.TaskCount
	v.Productivity.CompletionRate = d.CompletionRate
	v.Productivity.HighPriorityFocus = d.HighPriorityFocus
	v.Productivity.Efficiency = d.Efficiency
	v.BusinessHealth.PlanningActivity = c.PlanCount
	v.BusinessHealth.TaskGenerationRate = d.TaskGenerationRate
	v.BusinessHealth.ExecutionMomentum = d.ExecutionMomentum
	return v
}

// roundPercent rounds half away from zero.
func roundPercent(v float64) int {
	return int(math.Round(v))
}
