package plans

import (
	"context"
	"errors"
	"strings"
)

type Service struct {
	Repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

func (s *Service) Create(ctx context.Context, plan BusinessPlan) (BusinessPlan, error) {
	if s == nil || s.Repo == nil {
		return BusinessPlan{}, errors.New("plans service not configured")
	}
	if strings.TrimSpace(plan.UserID) == "" {
		return BusinessPlan{}, errors.New("plan owner is required")
	}
	if strings.TrimSpace(plan.Title) == "" {
		plan.Title = "Generated Business Plan"
	}
	return s.Repo.Create(ctx, plan)
}

// Get returns the plan only when userID owns it.
func (s *Service) Get(ctx context.Context, userID, id string) (BusinessPlan, error) {
	if s == nil || s.Repo == nil {
		return BusinessPlan{}, errors.New("plans service not configured")
	}
	plan, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return BusinessPlan{}, err
	}
	if plan.UserID != userID {
		return BusinessPlan{}, ErrNotFound
	}
	return plan, nil
}

// Delete removes a plan owned by userID.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	return s.Repo.Delete(ctx, id)
}

func (s *Service) ListForUser(ctx context.Context, userID string, limit int) ([]BusinessPlan, error) {
	if s == nil || s.Repo == nil {
		return nil, errors.New("plans service not configured")
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.Repo.List(ctx, ListFilter{UserID: userID, Limit: limit})
}
