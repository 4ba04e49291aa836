package intelligence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource answers counts from a table keyed by kind and filter.
type fakeSource struct {
	counts map[string]int
	failOn string
	calls  []string
}

func filterKey(kind EntityKind, f Filter) string {
	return fmt.Sprintf("%s%s", kind, describeFilter(f))
}

func (s *fakeSource) Count(ctx context.Context, kind EntityKind, f Filter) (int, error) {
	key := filterKey(kind, f)
	s.calls = append(s.calls, key)
	if key == s.failOn {
		return 0, errors.New("connection reset")
	}
	return s.counts[key], nil
}

func sourceFor(c Counts) *fakeSource {
	return &fakeSource{counts: map[string]int{
		"User":                                c.UserCount,
		"BusinessPlan":                        c.PlanCount,
		"Task":                                c.TaskCount,
		"Task completed=true":                 c.CompletedTasks,
		"Task priority=High":                  c.HighPriorityTasks,
		"Task priority=Medium":                c.MediumPriorityTasks,
		"Task priority=Low":                   c.LowPriorityTasks,
		"Task priority=High completed=true":   c.HighPriorityCompleted,
		"Task priority=Medium completed=true": c.MediumPriorityCompleted,
		"Task priority=Low completed=true":    c.LowPriorityCompleted,
	}}
}

type fakeActivity struct {
	items []Activity
	err   error
	limit int
}

func (a *fakeActivity) RecentPlans(ctx context.Context, limit int) ([]Activity, error) {
	a.limit = limit
	return a.items, a.err
}

var scenarioA = Counts{
	UserCount: 1, PlanCount: 2, TaskCount: 10, CompletedTasks: 3,
	HighPriorityTasks: 5, MediumPriorityTasks: 3, LowPriorityTasks: 2,
	HighPriorityCompleted: 1, MediumPriorityCompleted: 1, LowPriorityCompleted: 1,
}

func TestFetchIssuesTenCountsInOrder(t *testing.T) {
	src := sourceFor(scenarioA)
	counts, err := MetricCounter{Source: src}.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, scenarioA, counts)
	assert.Equal(t, []string{
		"User", "BusinessPlan", "Task", "Task completed=true",
		"Task priority=High", "Task priority=Medium", "Task priority=Low",
		"Task priority=High completed=true", "Task priority=Medium completed=true", "Task priority=Low completed=true",
	}, src.calls)
}

func TestFetchWrapsFailure(t *testing.T) {
	src := sourceFor(scenarioA)
	src.failOn = "Task priority=Medium"
	counts, err := MetricCounter{Source: src}.Fetch(context.Background())
	require.Error(t, err)
	assert.Equal(t, Counts{}, counts)
	assert.ErrorIs(t, err, ErrDataAccess)

	var dae *DataAccessError
	require.ErrorAs(t, err, &dae)
	assert.Equal(t, KindTask, dae.Kind)
	require.NotNil(t, dae.Filter.Priority)
	assert.Equal(t, PriorityMedium, *dae.Filter.Priority)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Len(t, src.calls, 6)
}

func TestFetchRejectsNegativeCounts(t *testing.T) {
	src := sourceFor(scenarioA)
	src.counts["Task"] = -1
	_, err := MetricCounter{Source: src}.Fetch(context.Background())
	assert.ErrorIs(t, err, ErrDataAccess)
}

func TestFetchWithoutSource(t *testing.T) {
	_, err := MetricCounter{}.Fetch(context.Background())
	assert.ErrorIs(t, err, ErrDataAccess)
}

func TestBuildAssemblesReport(t *testing.T) {
	at := time.Date(2026, time.May, 4, 10, 30, 0, 0, time.UTC)
	activity := &fakeActivity{items: []Activity{{ID: "p1", Title: "Coffee", User: "Founder"}}}
	b := NewBuilder(sourceFor(scenarioA), activity, DefaultThresholds())
	b.Now = func() time.Time { return at }

	report, err := b.Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, scenarioA, report.Counts)
	assert.Equal(t, at, report.Timestamp)
	assert.Equal(t, RecentActivityLimit, activity.limit)
	assert.Equal(t, []RecommendationType{TypeProductivity, TypeStrategy}, types(report.Recommendations))
	assert.Equal(t, 30, report.Overview.OverallCompletionRate)
	assert.Equal(t, TierStats{Total: 5, Completed: 1, CompletionRate: 20}, report.TaskAnalytics.HighPriority)
	assert.Equal(t, TierStats{Total: 3, Completed: 1, CompletionRate: 33}, report.TaskAnalytics.MediumPriority)
	assert.Equal(t, TierStats{Total: 2, Completed: 1, CompletionRate: 50}, report.TaskAnalytics.LowPriority)
	assert.Equal(t, MomentumLow, report.Insights.BusinessHealth.ExecutionMomentum)
	assert.InDelta(t, 50, report.Insights.Productivity.HighPriorityFocus, 1e-9)
	require.Len(t, report.RecentActivity, 1)

	raw, err := json.Marshal(report)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	for _, key := range []string{"counts", "insights", "recommendations", "overview", "taskAnalytics", "recentActivity", "timestamp"} {
		assert.Contains(t, decoded, key)
	}
	assert.Equal(t, "2026-05-04T10:30:00Z", decoded["timestamp"])
}

func TestBuildIsIdempotent(t *testing.T) {
	b := NewBuilder(sourceFor(scenarioA), nil, DefaultThresholds())
	first, err := b.Build(context.Background())
	require.NoError(t, err)
	second, err := b.Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.Counts, second.Counts)
	assert.Equal(t, first.Derived, second.Derived)
	assert.Equal(t, first.Insights, second.Insights)
	assert.Equal(t, first.Recommendations, second.Recommendations)
	assert.NotNil(t, first.RecentActivity)
}

func TestBuildAbortsOnSourceFailure(t *testing.T) {
	src := sourceFor(scenarioA)
	src.failOn = "Task priority=Low completed=true"
	report, err := NewBuilder(src, nil, DefaultThresholds()).Build(context.Background())
	assert.ErrorIs(t, err, ErrDataAccess)
	assert.Equal(t, AggregateReport{}, zeroComparable(report))
}

func TestBuildAbortsOnActivityFailure(t *testing.T) {
	activity := &fakeActivity{err: errors.New("timeout")}
	report, err := NewBuilder(sourceFor(scenarioA), activity, DefaultThresholds()).Build(context.Background())
	assert.ErrorIs(t, err, ErrDataAccess)
	assert.Nil(t, report.Recommendations)
	assert.True(t, report.Timestamp.IsZero())
}

// zeroComparable drops slices so reports can be compared with ==-style equality.
func zeroComparable(r AggregateReport) AggregateReport {
	if len(r.Recommendations) == 0 {
		r.Recommendations = nil
	}
	if len(r.RecentActivity) == 0 {
		r.RecentActivity = nil
	}
	return r
}
