package strategy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"business-navigator/internal/llm"
	"business-navigator/internal/plans"
	"business-navigator/internal/shared/storage/object"
	"business-navigator/internal/shared/telemetry"
	"business-navigator/internal/tasks"
)

// Generation kinds, also used as archive folders.
const (
	KindBusinessPlan = "business-plan"
	KindRoadmap      = "roadmap"
	KindCompetitor   = "competitor-analysis"
	KindProtocol     = "protocol"
)

// Service turns sanitized user input into prompts and model replies into documents.
type Service struct {
	LLM         llm.Client
	Plans       *plans.Service
	Tasks       *tasks.Service
	EnsureOwner func(ctx context.Context, userID string) error
	Archiver    *object.Archiver
	Now         func() time.Time
	NewID       func() string
}

func NewService(client llm.Client, planSvc *plans.Service, taskSvc *tasks.Service, archiver *object.Archiver) *Service {
	return &Service{
		LLM:      client,
		Plans:    planSvc,
		Tasks:    taskSvc,
		Archiver: archiver,
		Now:      func() time.Time { return time.Now().UTC() },
		NewID:    uuid.NewString,
	}
}

// GeneratePlan drafts a business plan and stores it with its action tasks for userID.
func (s *Service) GeneratePlan(ctx context.Context, userID string, in PlanInput) (PlanResult, error) {
	in = in.normalize()
	if err := in.validate(); err != nil {
		return PlanResult{}, err
	}
	prompt, err := renderPrompt("business_plan", in)
	if err != nil {
		return PlanResult{}, err
	}
	reply, err := s.complete(ctx, llm.Request{
		System:      planSystemPrompt,
		Prompt:      prompt,
		Temperature: 0.7,
		MaxTokens:   2000,
		JSON:        true,
	})
	if err != nil {
		return PlanResult{}, err
	}

	result := PlanResult{}
	doc, ok := parseObject(reply)
	if !ok {
		doc = planFallback(reply)
		result.Fallback = true
	}
	result.Document = doc

	if err := s.persistPlan(ctx, userID, in, &result); err != nil {
		return PlanResult{}, err
	}
	id := result.PlanID
	if id == "" {
		id = s.NewID()
	}
	s.archive(ctx, KindBusinessPlan, id, doc)
	telemetry.Info("strategy.generated", map[string]any{
		"kind":     KindBusinessPlan,
		"plan_id":  result.PlanID,
		"tasks":    len(result.TaskIDs),
		"fallback": result.Fallback,
	})
	return result, nil
}

func (s *Service) persistPlan(ctx context.Context, userID string, in PlanInput, result *PlanResult) error {
	if s.Plans == nil || strings.TrimSpace(userID) == "" {
		return nil
	}
	if s.EnsureOwner != nil {
		if err := s.EnsureOwner(ctx, userID); err != nil {
			return fmt.Errorf("ensure plan owner: %w", err)
		}
	}
	content, err := json.Marshal(result.Document)
	if err != nil {
		return fmt.Errorf("marshal plan: %w", err)
	}
	plan, err := s.Plans.Create(ctx, plans.BusinessPlan{
		UserID:       userID,
		Title:        clean(planTitle(result.Document)),
		BusinessIdea: in.BusinessIdea,
		TargetMarket: in.TargetMarket,
		UniqueValue:  in.UniqueValue,
		Content:      content,
	})
	if err != nil {
		return fmt.Errorf("store plan: %w", err)
	}
	result.PlanID = plan.ID

	if s.Tasks == nil {
		return nil
	}
	generated := actionTasks(result.Document)
	items := make([]tasks.Task, 0, len(generated))
	for _, t := range generated {
		items = append(items, tasks.Task{
			Title:             clean(t.Task),
			Priority:          tasks.Priority(clean(t.Priority)),
			Phase:             clean(t.Phase),
			EstimatedDuration: clean(t.EstimatedDuration),
		})
	}
	stored, err := s.Tasks.CreateMany(ctx, userID, plan.ID, items)
	if err != nil {
		result.PlanID = ""
		if derr := s.Plans.Delete(ctx, userID, plan.ID); derr != nil {
			telemetry.Error("strategy.plan_rollback_failed", map[string]any{"plan_id": plan.ID, "error": derr.Error()})
		}
		return fmt.Errorf("store plan tasks: %w", err)
	}
	for _, t := range stored {
		result.TaskIDs = append(result.TaskIDs, t.ID)
	}
	return nil
}

// Roadmap drafts a four-phase strategic roadmap for a business plan.
func (s *Service) Roadmap(ctx context.Context, in RoadmapInput) (RoadmapResult, error) {
	in = in.normalize()
	if err := in.validate(); err != nil {
		return RoadmapResult{}, err
	}
	prompt, err := renderPrompt("roadmap", in.withDefaults())
	if err != nil {
		return RoadmapResult{}, err
	}
	reply, err := s.complete(ctx, llm.Request{Prompt: prompt, Temperature: 0.7, MaxTokens: 4096, JSON: true})
	if err != nil {
		return RoadmapResult{}, err
	}
	now := s.Now()
	roadmap, ok := parseObject(reply)
	if !ok {
		roadmap = roadmapFallback(reply, now)
	}
	result := RoadmapResult{Success: true, Roadmap: roadmap, Input: in, GeneratedAt: now}
	s.archive(ctx, KindRoadmap, s.NewID(), result)
	return result, nil
}

// CompetitorAnalysis drafts a competitive landscape review.
func (s *Service) CompetitorAnalysis(ctx context.Context, in CompetitorInput) (CompetitorResult, error) {
	in = in.normalize()
	if err := in.validate(); err != nil {
		return CompetitorResult{}, err
	}
	prompt, err := renderPrompt("competitor_analysis", in.withDefaults())
	if err != nil {
		return CompetitorResult{}, err
	}
	reply, err := s.complete(ctx, llm.Request{Prompt: prompt, Temperature: 0.7, MaxTokens: 4096})
	if err != nil {
		return CompetitorResult{}, err
	}
	now := s.Now()
	analysis, ok := parseObject(reply)
	if !ok {
		analysis = competitorFallback(reply, now)
	}
	result := CompetitorResult{Success: true, Analysis: analysis, Input: in, GeneratedAt: now}
	s.archive(ctx, KindCompetitor, s.NewID(), result)
	return result, nil
}

// Protocol runs one of the advanced strategy protocols and returns the model's text.
func (s *Service) Protocol(ctx context.Context, in ProtocolInput) (ProtocolResult, error) {
	in = in.normalize()
	def, err := in.definition()
	if err != nil {
		return ProtocolResult{}, err
	}
	prompt, err := renderPrompt(def.template, in)
	if err != nil {
		return ProtocolResult{}, err
	}
	reply, err := s.complete(ctx, llm.Request{Prompt: prompt, Temperature: 0.7, MaxTokens: 4096})
	if err != nil {
		return ProtocolResult{}, err
	}
	result := ProtocolResult{Success: true, ProtocolType: in.ProtocolType, Result: reply, Timestamp: s.Now()}
	s.archive(ctx, KindProtocol, s.NewID(), result)
	return result, nil
}

func (s *Service) complete(ctx context.Context, req llm.Request) (string, error) {
	if s.LLM == nil {
		return "", llm.ErrNotConfigured
	}
	reply, err := s.LLM.Complete(ctx, req)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(reply) == "" {
		return "", errors.New("no response from model")
	}
	return reply, nil
}

func (s *Service) archive(ctx context.Context, kind, id string, doc any) {
	if s.Archiver == nil {
		return
	}
	if _, err := s.Archiver.Archive(ctx, kind, id, doc); err != nil {
		telemetry.Warn("strategy.archive_failed", map[string]any{
			"kind":  kind,
			"id":    id,
			"error": err.Error(),
		})
	}
}
