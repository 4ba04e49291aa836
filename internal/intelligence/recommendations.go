package intelligence

var (
	recImproveCompletion = Recommendation{
		Type:        TypeProductivity,
		Priority:    PriorityHigh,
		Title:       "Improve Task Completion",
		Description: "Focus on completing high-priority tasks to maintain momentum",
		Action:      "Review and prioritize pending tasks",
	}
	recHighPriority = Recommendation{
		Type:        TypeStrategy,
		Priority:    PriorityHigh,
		Title:       "Address High-Priority Items",
		Description: "High-priority tasks need immediate attention",
		Action:      "Allocate resources to critical tasks",
	}
	recTaskPlanning = Recommendation{
		Type:        TypePlanning,
		Priority:    PriorityMedium,
		Title:       "Enhance Task Planning",
		Description: "Consider breaking down plans into more actionable tasks",
		Action:      "Review and expand task lists for each plan",
	}
	recScaleOperations = Recommendation{
		Type:        TypeGrowth,
		Priority:    PriorityMedium,
		Title:       "Scale Operations",
		Description: "High completion rates indicate readiness for expansion",
		Action:      "Consider new business initiatives or scaling existing ones",
	}
)

// Evaluate applies the recommendation rules in fixed order. Each rule adds at most one entry.
func Evaluate(d DerivedInsights, c Counts, t Thresholds) []Recommendation {
	out := []Recommendation{}
	if d.CompletionRate < t.CompletionLow {
		out = append(out, recImproveCompletion)
	}
	if d.HighPriorityCompletionRate < t.HighPriorityLow {
		out = append(out, recHighPriority)
	}
	if c.PlanCount > 0 && ratio(c.TaskCount, c.PlanCount) < t.TasksPerPlanMin {
		out = append(out, recTaskPlanning)
	}
	if d.CompletionRate > t.CompletionScale {
		out = append(out, recScaleOperations)
	}
	return out
}
