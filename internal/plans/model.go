package plans

import (
	"encoding/json"
	"time"
)

// BusinessPlan is a generated plan owned by one user. Content holds the
// structured document returned by the model.
type BusinessPlan struct {
	ID           string          `json:"id"`
	UserID       string          `json:"userId"`
	Title        string          `json:"title"`
	BusinessIdea string          `json:"businessIdea"`
	TargetMarket string          `json:"targetMarket"`
	UniqueValue  string          `json:"uniqueValue"`
	Content      json.RawMessage `json:"content"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// RecentPlan is a plan joined with its owner's display name.
type RecentPlan struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	BusinessIdea string    `json:"businessIdea"`
	CreatedAt    time.Time `json:"createdAt"`
	User         string    `json:"user"`
}

// ListFilter narrows List; an empty UserID lists every plan.
type ListFilter struct {
	UserID string
	Limit  int
}
