package intelligence

import "time"

// EntityKind names a countable table.
type EntityKind string

const (
	KindUser         EntityKind = "User"
	KindBusinessPlan EntityKind = "BusinessPlan"
	KindTask         EntityKind = "Task"
)

type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Filter is a conjunction of optional equality predicates. The zero Filter counts every row.
type Filter struct {
	Priority  *Priority
	Completed *bool
}

// Counts is the raw input of a report. All values are non-negative.
type Counts struct {
	UserCount               int `json:"userCount"`
	PlanCount               int `json:"planCount"`
	TaskCount               int `json:"taskCount"`
	CompletedTasks          int `json:"completedTasks"`
	HighPriorityTasks       int `json:"highPriorityTasks"`
	MediumPriorityTasks     int `json:"mediumPriorityTasks"`
	LowPriorityTasks        int `json:"lowPriorityTasks"`
	HighPriorityCompleted   int `json:"highPriorityCompleted"`
	MediumPriorityCompleted int `json:"mediumPriorityCompleted"`
	LowPriorityCompleted    int `json:"lowPriorityCompleted"`
}

type Momentum string

const (
	MomentumLow    Momentum = "Low"
	MomentumMedium Momentum = "Medium"
	MomentumHigh   Momentum = "High"
)

// DerivedInsights holds ratios computed from Counts. Rates are percentages in [0, 100].
type DerivedInsights struct {
	CompletionRate               float64  `json:"completionRate"`
	HighPriorityCompletionRate   float64  `json:"highPriorityCompletionRate"`
	MediumPriorityCompletionRate float64  `json:"mediumPriorityCompletionRate"`
	LowPriorityCompletionRate    float64  `json:"lowPriorityCompletionRate"`
	EngagementRate               float64  `json:"engagementRate"`
	AveragePlansPerUser          float64  `json:"averagePlansPerUser"`
	TaskGenerationRate           float64  `json:"taskGenerationRate"`
	HighPriorityFocus            float64  `json:"highPriorityFocus"`
	Efficiency                   float64  `json:"efficiency"`
	ExecutionMomentum            Momentum `json:"executionMomentum"`
}

type RecommendationType string

const (
	TypeProductivity RecommendationType = "productivity"
	TypeStrategy     RecommendationType = "strategy"
	TypePlanning     RecommendationType = "planning"
	TypeGrowth       RecommendationType = "growth"
)

type Recommendation struct {
	Type        RecommendationType `json:"type"`
	Priority    Priority           `json:"priority"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Action      string             `json:"action"`
}

// Activity is one recently created business plan.
type Activity struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	BusinessIdea string    `json:"businessIdea"`
	CreatedAt    time.Time `json:"createdAt"`
	User         string    `json:"user"`
}

// AggregateReport is the response root of a single build.
type AggregateReport struct {
	Counts          Counts           `json:"counts"`
	Derived         DerivedInsights  `json:"-"`
	Insights        InsightsView     `json:"insights"`
	Recommendations []Recommendation `json:"recommendations"`
	Overview        Overview         `json:"overview"`
	TaskAnalytics   TaskAnalytics    `json:"taskAnalytics"`
	RecentActivity  []Activity       `json:"recentActivity"`
	Timestamp       time.Time        `json:"timestamp"`
}

// InsightsView groups DerivedInsights the way the dashboard renders them.
type InsightsView struct {
	UserEngagement struct {
		ActiveUsers         int     `json:"activeUsers"`
		EngagementRate      float64 `json:"engagementRate"`
		AveragePlansPerUser float64 `json:"averagePlansPerUser"`
	} `json:"userEngagement"`
	Productivity struct {
		TotalTasksGenerated int     `json:"totalTasksGenerated"`
		CompletionRate      float64 `json:"completionRate"`
		HighPriorityFocus   float64 `json:"highPriorityFocus"`
		Efficiency          float64 `json:"efficiency"`
	} `json:"productivity"`
	BusinessHealth struct {
		PlanningActivity   int      `json:"planningActivity"`
		TaskGenerationRate float64  `json:"taskGenerationRate"`
		ExecutionMomentum  Momentum `json:"executionMomentum"`
	} `json:"businessHealth"`
}

type Overview struct {
	TotalUsers            int `json:"totalUsers"`
	TotalBusinessPlans    int `json:"totalBusinessPlans"`
	TotalTasks            int `json:"totalTasks"`
	CompletedTasks        int `json:"completedTasks"`
	OverallCompletionRate int `json:"overallCompletionRate"`
}

type TierStats struct {
	Total          int `json:"total"`
	Completed      int `json:"completed"`
	CompletionRate int `json:"completionRate"`
}

type TaskAnalytics struct {
	HighPriority   TierStats `json:"highPriority"`
	MediumPriority TierStats `json:"mediumPriority"`
	LowPriority    TierStats `json:"lowPriority"`
}
