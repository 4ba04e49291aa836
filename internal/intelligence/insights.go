package intelligence

// ratio returns num/den, or 0 when den is zero.
func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

func percent(num, den int) float64 {
	return ratio(num, den) * 100
}

// Derive computes insights from counts. It is pure.
func Derive(c Counts, t Thresholds) DerivedInsights {
	completion := percent(c.CompletedTasks, c.TaskCount)
	return DerivedInsights{
		CompletionRate:               completion,
		HighPriorityCompletionRate:   percent(c.HighPriorityCompleted, c.HighPriorityTasks),
		MediumPriorityCompletionRate: percent(c.MediumPriorityCompleted, c.MediumPriorityTasks),
		LowPriorityCompletionRate:    percent(c.LowPriorityCompleted, c.LowPriorityTasks),
		EngagementRate:               percent(c.PlanCount, c.UserCount),
		AveragePlansPerUser:          ratio(c.PlanCount, c.UserCount),
		TaskGenerationRate:           ratio(c.TaskCount, c.PlanCount),
		HighPriorityFocus:            percent(c.HighPriorityTasks, c.TaskCount),
		Efficiency:                   ratio(c.TaskCount, c.CompletedTasks),
		ExecutionMomentum:            momentum(completion, t),
	}
}

func momentum(completionRate float64, t Thresholds) Momentum {
	switch {
	case completionRate > t.MomentumHigh:
		return MomentumHigh
	case completionRate > t.MomentumMedium:
		return MomentumMedium
	default:
		return MomentumLow
	}
}
