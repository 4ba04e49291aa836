package seed

import (
	"context"
	"encoding/json"
	"fmt"

	"business-navigator/internal/plans"
	"business-navigator/internal/shared/telemetry"
	"business-navigator/internal/tasks"
	"business-navigator/internal/users"
)

const (
	SampleEmail = "test@example.com"
	SampleName  = "Test User"
)

// Seeder fills empty tables with a small sample workspace.
type Seeder struct {
	Users users.Repo
	Plans plans.Repo
	Tasks tasks.Repo
}

func New(u users.Repo, p plans.Repo, t tasks.Repo) *Seeder {
	return &Seeder{Users: u, Plans: p, Tasks: t}
}

type Counts struct {
	Users         int `json:"users"`
	BusinessPlans int `json:"businessPlans"`
	Tasks         int `json:"tasks"`
}

type Samples struct {
	Users []users.User         `json:"users"`
	Tasks []tasks.Task         `json:"tasks"`
	Plans []plans.BusinessPlan `json:"plans"`
}

type Result struct {
	Created    Counts  `json:"created"`
	Counts     Counts  `json:"counts"`
	SampleData Samples `json:"sampleData"`
}

// Run seeds each table only when it is empty, so repeated runs change nothing.
func (s *Seeder) Run(ctx context.Context) (Result, error) {
	var res Result
	before, err := s.counts(ctx)
	if err != nil {
		return Result{}, err
	}

	if before.Users == 0 {
		if _, err := s.Users.Upsert(ctx, users.User{Email: SampleEmail, Name: SampleName}); err != nil {
			return Result{}, fmt.Errorf("seed user: %w", err)
		}
		res.Created.Users = 1
	}
	owner, err := s.firstUser(ctx)
	if err != nil {
		return Result{}, err
	}

	if before.BusinessPlans == 0 {
		if _, err := s.Plans.Create(ctx, samplePlan(owner.ID)); err != nil {
			return Result{}, fmt.Errorf("seed business plan: %w", err)
		}
		res.Created.BusinessPlans = 1
	}

	if before.Tasks == 0 {
		planID := ""
		if latest, err := s.Plans.List(ctx, plans.ListFilter{UserID: owner.ID, Limit: 1}); err != nil {
			return Result{}, fmt.Errorf("seed tasks: %w", err)
		} else if len(latest) > 0 {
			planID = latest[0].ID
		}
		created, err := s.Tasks.CreateMany(ctx, sampleTasks(owner.ID, planID))
		if err != nil {
			return Result{}, fmt.Errorf("seed tasks: %w", err)
		}
		res.Created.Tasks = len(created)
	}

	if res.Counts, err = s.counts(ctx); err != nil {
		return Result{}, err
	}
	if res.SampleData, err = s.samples(ctx); err != nil {
		return Result{}, err
	}
	telemetry.Info("seed.completed", map[string]any{
		"created_users": res.Created.Users,
		"created_plans": res.Created.BusinessPlans,
		"created_tasks": res.Created.Tasks,
	})
	return res, nil
}

func (s *Seeder) counts(ctx context.Context) (Counts, error) {
	var c Counts
	var err error
	if c.Users, err = s.Users.Count(ctx); err != nil {
		return Counts{}, fmt.Errorf("count users: %w", err)
	}
	if c.BusinessPlans, err = s.Plans.Count(ctx); err != nil {
		return Counts{}, fmt.Errorf("count business plans: %w", err)
	}
	if c.Tasks, err = s.Tasks.Count(ctx, tasks.CountFilter{}); err != nil {
		return Counts{}, fmt.Errorf("count tasks: %w", err)
	}
	return c, nil
}

func (s *Seeder) firstUser(ctx context.Context) (users.User, error) {
	list, err := s.Users.List(ctx, 1)
	if err != nil {
		return users.User{}, fmt.Errorf("load first user: %w", err)
	}
	if len(list) == 0 {
		return users.User{}, users.ErrNotFound
	}
	return list[0], nil
}

func (s *Seeder) samples(ctx context.Context) (Samples, error) {
	var out Samples
	var err error
	if out.Users, err = s.Users.List(ctx, 3); err != nil {
		return Samples{}, err
	}
	if out.Tasks, err = s.Tasks.List(ctx, tasks.ListFilter{Limit: 5}); err != nil {
		return Samples{}, err
	}
	if out.Plans, err = s.Plans.List(ctx, plans.ListFilter{Limit: 2}); err != nil {
		return Samples{}, err
	}
	return out, nil
}

func samplePlan(ownerID string) plans.BusinessPlan {
	content, _ := json.Marshal(map[string]any{
		"executiveSummary": map[string]any{
			"title":   "AI Business Navigator",
			"mission": "Democratizing strategic business expertise",
			"goals":   []string{"Make planning accessible", "Reduce failure rates", "Empower entrepreneurs"},
		},
		"marketAnalysis": map[string]any{
			"tam":    "$15.7B",
			"sam":    "$4.2B",
			"som":    "$120M",
			"growth": "8.2% CAGR",
		},
	})
	return plans.BusinessPlan{
		UserID:       ownerID,
		Title:        "Test Business Plan",
		BusinessIdea: "AI Business Navigator",
		TargetMarket: "Entrepreneurs and Business Teams",
		UniqueValue:  "AI-powered business planning and task management",
		Content:      content,
	}
}

func sampleTasks(ownerID, planID string) []tasks.Task {
	t := func(title string, p tasks.Priority, phase, duration string, done bool) tasks.Task {
		return tasks.Task{
			UserID:            ownerID,
			BusinessPlanID:    planID,
			Title:             title,
			Priority:          p,
			Phase:             phase,
			EstimatedDuration: duration,
			Completed:         done,
		}
	}
	return []tasks.Task{
		t("Define core AI reasoning engine requirements", tasks.PriorityHigh, "MVP Development", "2 weeks", false),
		t("Design user interface wireframes", tasks.PriorityHigh, "MVP Development", "1 week", false),
		t("Set up development environment", tasks.PriorityMedium, "MVP Development", "3 days", true),
		t("Develop marketing strategy", tasks.PriorityMedium, "Market Launch", "2 weeks", false),
	}
}
