package intelligence

// Thresholds are the cut-offs used by momentum classification and the recommendation rules.
// Fields are applied as given: a zero TasksPerPlanMin never fires the planning rule.
type Thresholds struct {
	MomentumHigh    float64 // completionRate above this is High momentum
	MomentumMedium  float64 // completionRate above this is Medium momentum
	TasksPerPlanMin float64 // tasks per plan below this triggers the planning rule
	CompletionLow   float64 // completionRate below this triggers the productivity rule
	HighPriorityLow float64 // high-priority completion below this triggers the strategy rule
	CompletionScale float64 // completionRate above this triggers the growth rule
}

// DefaultThresholds returns the stock cut-offs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MomentumHigh:    70,
		MomentumMedium:  40,
		TasksPerPlanMin: 5,
		CompletionLow:   50,
		HighPriorityLow: 60,
		CompletionScale: 80,
	}
}
