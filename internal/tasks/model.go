package tasks

import (
	"strings"
	"time"
)

type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Priorities lists the tiers in display order.
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

const DefaultEstimatedDuration = "1 week"

// ParsePriority accepts the tier names case-insensitively.
func ParsePriority(raw string) (Priority, bool) {
	for _, p := range Priorities {
		if strings.EqualFold(strings.TrimSpace(raw), string(p)) {
			return p, true
		}
	}
	return "", false
}

// Task is an actionable item, optionally attached to a business plan.
type Task struct {
	ID                string    `json:"id"`
	UserID            string    `json:"userId"`
	BusinessPlanID    string    `json:"businessPlanId,omitempty"`
	Title             string    `json:"task"`
	Priority          Priority  `json:"priority"`
	Phase             string    `json:"phase"`
	EstimatedDuration string    `json:"estimatedDuration"`
	Completed         bool      `json:"completed"`
	CreatedAt         time.Time `json:"createdAt"`
}

// ListFilter narrows List. Zero fields do not filter.
type ListFilter struct {
	UserID         string
	BusinessPlanID string
	Phase          string
	Priority       Priority
	Completed      *bool
	Limit          int
}

// CountFilter is a conjunction of optional equality predicates over all users' tasks.
type CountFilter struct {
	Priority  *Priority
	Completed *bool
}

func (f ListFilter) matches(t Task) bool {
	if f.UserID != "" && t.UserID != f.UserID {
		return false
	}
	if f.BusinessPlanID != "" && t.BusinessPlanID != f.BusinessPlanID {
		return false
	}
	if f.Phase != "" && t.Phase != f.Phase {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.Completed != nil && t.Completed != *f.Completed {
		return false
	}
	return true
}

func (f CountFilter) matches(t Task) bool {
	if f.Priority != nil && t.Priority != *f.Priority {
		return false
	}
	if f.Completed != nil && t.Completed != *f.Completed {
		return false
	}
	return true
}
