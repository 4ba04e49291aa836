package strategy

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"business-navigator/internal/llm"
	"business-navigator/internal/plans"
	"business-navigator/internal/shared/storage/object"
	"business-navigator/internal/shared/storage/object/local"
	"business-navigator/internal/tasks"
)

type fakeLLM struct {
	reply    string
	err      error
	requests []llm.Request
}

func (f *fakeLLM) Complete(_ context.Context, req llm.Request) (string, error) {
	f.requests = append(f.requests, req)
	return f.reply, f.err
}

const planReply = `{
  "executiveSummary": {"title": "Bean There", "mission": "Great coffee", "goals": ["Launch"]},
  "marketAnalysis": {"tam": "$1B", "sam": "$100M", "som": "$5M", "growth": "6%"},
  "actionTasks": [
    {"task": "Secure permit", "priority": "High", "phase": "Foundation", "estimatedDuration": "2 weeks"},
    {"task": "Pick supplier", "priority": "urgent", "phase": "", "estimatedDuration": ""},
    {"task": "", "priority": "Low", "phase": "Launch"}
  ]
}`

type fixture struct {
	svc     *Service
	llm     *fakeLLM
	plans   *plans.Service
	tasks   *tasks.Service
	baseDir string
	owners  []string
}

func newFixture(t *testing.T, reply string) *fixture {
	t.Helper()
	f := &fixture{llm: &fakeLLM{reply: reply}, baseDir: t.TempDir()}
	f.plans = plans.NewService(plans.NewMemoryRepo(nil))
	f.tasks = tasks.NewService(tasks.NewMemoryRepo())
	f.svc = NewService(f.llm, f.plans, f.tasks, object.NewArchiver(local.New(f.baseDir)))
	f.svc.Now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	f.svc.NewID = func() string { return "doc-1" }
	f.svc.EnsureOwner = func(_ context.Context, userID string) error {
		f.owners = append(f.owners, userID)
		return nil
	}
	return f
}

func TestGeneratePlanStoresPlanAndTasks(t *testing.T) {
	f := newFixture(t, planReply)
	ctx := context.Background()

	result, err := f.svc.GeneratePlan(ctx, "guest:g1", PlanInput{
		BusinessIdea: "<b>Mobile</b> coffee cart",
		TargetMarket: "Office workers",
		UniqueValue:  "Delivered to your desk",
	})
	require.NoError(t, err)
	assert.False(t, result.Fallback)
	require.NotEmpty(t, result.PlanID)
	assert.Len(t, result.TaskIDs, 2)
	assert.Equal(t, []string{"guest:g1"}, f.owners)

	require.Len(t, f.llm.requests, 1)
	req := f.llm.requests[0]
	assert.Equal(t, planSystemPrompt, req.System)
	assert.True(t, req.JSON)
	assert.Equal(t, 2000, req.MaxTokens)
	assert.Contains(t, req.Prompt, "Business Idea: Mobile coffee cart")
	assert.NotContains(t, req.Prompt, "<b>")

	plan, err := f.plans.Get(ctx, "guest:g1", result.PlanID)
	require.NoError(t, err)
	assert.Equal(t, "Bean There", plan.Title)
	assert.Equal(t, "Mobile coffee cart", plan.BusinessIdea)

	stored, err := f.tasks.Search(ctx, tasks.ListFilter{UserID: "guest:g1", BusinessPlanID: result.PlanID}, "")
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, tasks.PriorityHigh, stored[0].Priority)
	assert.Equal(t, tasks.PriorityMedium, stored[1].Priority)
	assert.Equal(t, "General", stored[1].Phase)

	_, err = os.Stat(filepath.Join(f.baseDir, "generations", KindBusinessPlan, result.PlanID+".json"))
	assert.NoError(t, err)
}

func TestGeneratePlanFallbackOnNonJSON(t *testing.T) {
	f := newFixture(t, "Here is a plan in prose.")

	result, err := f.svc.GeneratePlan(context.Background(), "guest:g1", PlanInput{
		BusinessIdea: "Idea", TargetMarket: "Market", UniqueValue: "Value",
	})
	require.NoError(t, err)
	assert.True(t, result.Fallback)
	assert.Equal(t, "Here is a plan in prose.", result.Document["rawResponse"])
	assert.Empty(t, result.TaskIDs)

	raw, err := json.Marshal(result)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, result.PlanID, body["id"])
	summary := body["executiveSummary"].(map[string]any)
	assert.Equal(t, "Generated Business Plan", summary["title"])
}

func TestGeneratePlanAcceptsFencedJSON(t *testing.T) {
	f := newFixture(t, "```json\n"+planReply+"\n```")
	result, err := f.svc.GeneratePlan(context.Background(), "guest:g1", PlanInput{
		BusinessIdea: "Idea", TargetMarket: "Market", UniqueValue: "Value",
	})
	require.NoError(t, err)
	assert.False(t, result.Fallback)
}

func TestGeneratePlanValidation(t *testing.T) {
	f := newFixture(t, planReply)
	_, err := f.svc.GeneratePlan(context.Background(), "guest:g1", PlanInput{
		BusinessIdea: "<script>x</script>", TargetMarket: "Market",
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Missing required fields", verr.Message)
	assert.Equal(t, []string{"businessIdea", "uniqueValue"}, verr.Fields)
	assert.Empty(t, f.llm.requests)
}

func TestGeneratePlanLLMFailure(t *testing.T) {
	f := newFixture(t, "")
	f.llm.err = errors.New("openai http status 500: boom")
	_, err := f.svc.GeneratePlan(context.Background(), "guest:g1", PlanInput{
		BusinessIdea: "Idea", TargetMarket: "Market", UniqueValue: "Value",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

type failingTaskRepo struct {
	tasks.Repo
}

func (failingTaskRepo) CreateMany(context.Context, []tasks.Task) ([]tasks.Task, error) {
	return nil, errors.New("insert failed")
}

func TestGeneratePlanRemovesPlanWhenTasksFail(t *testing.T) {
	f := newFixture(t, planReply)
	f.tasks.Repo = failingTaskRepo{Repo: tasks.NewMemoryRepo()}
	ctx := context.Background()

	_, err := f.svc.GeneratePlan(ctx, "guest:g1", PlanInput{
		BusinessIdea: "Coffee cart",
		TargetMarket: "Office workers",
		UniqueValue:  "Delivered to your desk",
	})
	require.ErrorContains(t, err, "store plan tasks: insert failed")

	n, err := f.plans.Repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	stored, err := f.plans.ListForUser(ctx, "guest:g1", 0)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestGeneratePlanEmptyReply(t *testing.T) {
	f := newFixture(t, "   ")
	_, err := f.svc.GeneratePlan(context.Background(), "guest:g1", PlanInput{
		BusinessIdea: "Idea", TargetMarket: "Market", UniqueValue: "Value",
	})
	assert.EqualError(t, err, "no response from model")
}

func TestRoadmapDefaultsAndFallback(t *testing.T) {
	f := newFixture(t, "Phase one: plan things.")
	result, err := f.svc.Roadmap(context.Background(), RoadmapInput{BusinessPlan: "Coffee cart plan", Industry: "Food"})
	require.NoError(t, err)

	prompt := f.llm.requests[0].Prompt
	assert.Contains(t, prompt, "Timeline: 12 months")
	assert.Contains(t, prompt, "Available Resources: Standard startup resources")
	assert.Contains(t, prompt, "Budget: Startup budget")
	assert.Contains(t, prompt, "Team Size: Small team (3-10 people)")
	assert.Contains(t, prompt, "Industry: Food")
	assert.Contains(t, prompt, "Business Stage: Early Stage")

	assert.True(t, result.Success)
	assert.Equal(t, "text-based", result.Roadmap["structure"])
	assert.Equal(t, "Phase one: plan things.", result.Roadmap["rawResponse"])
	phases := result.Roadmap["phases"].([]roadmapPhase)
	require.Len(t, phases, 4)
	assert.Equal(t, "Phase 4: Scale", phases[3].Name)
	assert.Equal(t, "", result.Input.Timeline)
	assert.Equal(t, f.svc.Now(), result.GeneratedAt)

	_, err = os.Stat(filepath.Join(f.baseDir, "generations", KindRoadmap, "doc-1.json"))
	assert.NoError(t, err)
}

func TestRoadmapRequiresPlan(t *testing.T) {
	f := newFixture(t, "{}")
	_, err := f.svc.Roadmap(context.Background(), RoadmapInput{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Business plan is required", verr.Message)
}

func TestCompetitorAnalysis(t *testing.T) {
	f := newFixture(t, `{"landscape":"crowded"}`)
	result, err := f.svc.CompetitorAnalysis(context.Background(), CompetitorInput{BusinessIdea: "Cart", Industry: "Food"})
	require.NoError(t, err)
	assert.Equal(t, "crowded", result.Analysis["landscape"])

	prompt := f.llm.requests[0].Prompt
	assert.Contains(t, prompt, "Target Market: General market")
	assert.Contains(t, prompt, "Business Model: To be determined")
	assert.Contains(t, prompt, "Geographic Scope: Global")
	assert.False(t, f.llm.requests[0].JSON)
}

func TestCompetitorAnalysisFallback(t *testing.T) {
	f := newFixture(t, "Competitors are many.")
	result, err := f.svc.CompetitorAnalysis(context.Background(), CompetitorInput{BusinessIdea: "Cart", Industry: "Food"})
	require.NoError(t, err)
	assert.Equal(t, "comprehensive-text-analysis", result.Analysis["structure"])
	assert.Len(t, result.Analysis["keyInsights"], 3)

	_, err = f.svc.CompetitorAnalysis(context.Background(), CompetitorInput{BusinessIdea: "Cart"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Business idea and industry are required", verr.Message)
}

func TestProtocolRouting(t *testing.T) {
	tests := []struct {
		name    string
		in      ProtocolInput
		snippet string
	}{
		{name: "strategic", in: ProtocolInput{ProtocolType: ProtocolStrategicSolution, BusinessContext: "Bakery", Challenge: "Churn"}, snippet: "Challenge: Churn"},
		{name: "market", in: ProtocolInput{ProtocolType: ProtocolMarketInsights, Industry: "Retail", TargetMarket: "Teens"}, snippet: "Target Market: Teens"},
		{name: "innovation", in: ProtocolInput{ProtocolType: ProtocolInnovationStrategy, BusinessIdea: "Drone tea", UniqueValue: "Fast"}, snippet: "Business Idea: Drone tea"},
		{name: "operations", in: ProtocolInput{ProtocolType: ProtocolOperationalExcellence, BusinessType: "Factory", Scale: "Regional"}, snippet: "Scale: Regional"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, "1. Analysis")
			result, err := f.svc.Protocol(context.Background(), tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.in.ProtocolType, result.ProtocolType)
			assert.Equal(t, "1. Analysis", result.Result)
			assert.Contains(t, f.llm.requests[0].Prompt, tt.snippet)
		})
	}
}

func TestProtocolValidation(t *testing.T) {
	f := newFixture(t, "x")
	tests := []struct {
		in      ProtocolInput
		message string
	}{
		{in: ProtocolInput{}, message: "Protocol type is required"},
		{in: ProtocolInput{ProtocolType: "moonshot"}, message: "Invalid protocol type"},
		{in: ProtocolInput{ProtocolType: ProtocolStrategicSolution, BusinessContext: "x"}, message: "Business context and challenge are required for strategic solution"},
		{in: ProtocolInput{ProtocolType: ProtocolOperationalExcellence}, message: "Business type and scale are required for operational excellence plan"},
	}
	for _, tt := range tests {
		_, err := f.svc.Protocol(context.Background(), tt.in)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, tt.message, verr.Message)
	}
	assert.Empty(t, f.llm.requests)
}

func TestArchiveFailureDoesNotFailRequest(t *testing.T) {
	f := newFixture(t, "text")
	f.svc.NewID = func() string { return "../escape" }
	_, err := f.svc.Protocol(context.Background(), ProtocolInput{ProtocolType: ProtocolMarketInsights, Industry: "a", TargetMarket: "b"})
	require.NoError(t, err)
}

func TestPromptsRender(t *testing.T) {
	inputs := map[string]any{
		"business_plan":          PlanInput{},
		"roadmap":                RoadmapInput{}.withDefaults(),
		"competitor_analysis":    CompetitorInput{}.withDefaults(),
		"strategic_solution":     ProtocolInput{},
		"market_insights":        ProtocolInput{},
		"innovation_strategy":    ProtocolInput{},
		"operational_excellence": ProtocolInput{},
	}
	for name, data := range inputs {
		out, err := renderPrompt(name, data)
		require.NoError(t, err, name)
		assert.NotEmpty(t, out, name)
		assert.False(t, strings.Contains(out, "{{"), name)
	}
}
