package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"

	"business-navigator/internal/plans"
)

// OwnerEnsurer makes sure a principal has a users row before it owns tasks.
type OwnerEnsurer func(ctx context.Context, userID string) error

// PlanLookup resolves a plan owned by userID; plans.ErrNotFound covers plans owned by someone else.
type PlanLookup interface {
	Get(ctx context.Context, userID, id string) (plans.BusinessPlan, error)
}

type Service struct {
	Repo        Repo
	EnsureOwner OwnerEnsurer
	Plans       PlanLookup
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// CreateInput is the body of a task creation request.
type CreateInput struct {
	Task              string `json:"task"`
	Priority          string `json:"priority"`
	Phase             string `json:"phase"`
	EstimatedDuration string `json:"estimatedDuration"`
	BusinessPlanID    string `json:"businessPlanId"`
}

// MissingFields lists the required fields left blank.
func (in CreateInput) MissingFields() []string {
	var missing []string
	if strings.TrimSpace(in.Task) == "" {
		missing = append(missing, "task")
	}
	if strings.TrimSpace(in.Priority) == "" {
		missing = append(missing, "priority")
	}
	if strings.TrimSpace(in.Phase) == "" {
		missing = append(missing, "phase")
	}
	return missing
}

func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (Task, error) {
	if missing := in.MissingFields(); len(missing) > 0 {
		return Task{}, fmt.Errorf("%w: missing %s", ErrValidation, strings.Join(missing, ", "))
	}
	priority, ok := ParsePriority(in.Priority)
	if !ok {
		return Task{}, fmt.Errorf("%w: priority must be High, Medium or Low", ErrValidation)
	}
	planID := strings.TrimSpace(in.BusinessPlanID)
	if err := s.checkPlan(ctx, userID, planID); err != nil {
		return Task{}, err
	}
	if err := s.ensureOwner(ctx, userID); err != nil {
		return Task{}, err
	}
	return s.Repo.Create(ctx, Task{
		UserID:            userID,
		BusinessPlanID:    planID,
		Title:             strings.TrimSpace(in.Task),
		Priority:          priority,
		Phase:             strings.TrimSpace(in.Phase),
		EstimatedDuration: strings.TrimSpace(in.EstimatedDuration),
	})
}

// CreateMany stores generated tasks for a plan. Unknown priorities fall back to Medium.
func (s *Service) CreateMany(ctx context.Context, userID, planID string, items []Task) ([]Task, error) {
	if len(items) == 0 {
		return []Task{}, nil
	}
	if err := s.ensureOwner(ctx, userID); err != nil {
		return nil, err
	}
	prepared := make([]Task, 0, len(items))
	for _, t := range items {
		if strings.TrimSpace(t.Title) == "" {
			continue
		}
		p, ok := ParsePriority(string(t.Priority))
		if !ok {
			p = PriorityMedium
		}
		t.Priority = p
		t.UserID = userID
		t.BusinessPlanID = planID
		if strings.TrimSpace(t.Phase) == "" {
			t.Phase = "General"
		}
		prepared = append(prepared, t)
	}
	return s.Repo.CreateMany(ctx, prepared)
}

// Search lists the caller's tasks; a non-empty query ranks titles by fuzzy match.
func (s *Service) Search(ctx context.Context, filter ListFilter, query string) ([]Task, error) {
	items, err := s.Repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return items, nil
	}
	titles := make([]string, len(items))
	for i, t := range items {
		titles[i] = t.Title
	}
	matches := fuzzy.Find(query, titles)
	out := make([]Task, 0, len(matches))
	for _, m := range matches {
		out = append(out, items[m.Index])
	}
	return out, nil
}

func (s *Service) SetCompleted(ctx context.Context, userID, id string, completed bool) (Task, error) {
	return s.Repo.SetCompleted(ctx, userID, id, completed)
}

func (s *Service) ensureOwner(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return errors.New("task owner is required")
	}
	if s.EnsureOwner == nil {
		return nil
	}
	return s.EnsureOwner(ctx, userID)
}

func (s *Service) checkPlan(ctx context.Context, userID, planID string) error {
	if planID == "" || s.Plans == nil {
		return nil
	}
	if _, err := s.Plans.Get(ctx, userID, planID); err != nil {
		if errors.Is(err, plans.ErrNotFound) {
			return fmt.Errorf("%w: businessPlanId %s not found", ErrValidation, planID)
		}
		return err
	}
	return nil
}
