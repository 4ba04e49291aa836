package strategy

import (
	"encoding/json"
	"strings"
	"time"
)

// parseObject decodes a model reply as a JSON object, tolerating a markdown code fence.
func parseObject(raw string) (map[string]any, bool) {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(s), &out); err != nil || out == nil {
		return nil, false
	}
	return out, true
}

func planFallback(raw string) map[string]any {
	return map[string]any{
		"rawResponse": raw,
		"executiveSummary": map[string]any{
			"title":   "Generated Business Plan",
			"mission": "AI-generated business mission",
			"goals":   []string{"Goal 1", "Goal 2", "Goal 3"},
		},
		"marketAnalysis": map[string]any{
			"tam":    "Estimated market size",
			"sam":    "Serviceable market",
			"som":    "Obtainable market",
			"growth": "Growth rate",
		},
		"keyFeatures": []string{"Feature 1", "Feature 2", "Feature 3", "Feature 4"},
		"timeline": []map[string]any{
			{"phase": "Phase 1", "duration": "3 months", "progress": 0},
		},
	}
}

type roadmapPhase struct {
	Name        string   `json:"name"`
	Duration    string   `json:"duration"`
	Focus       string   `json:"focus"`
	Initiatives []string `json:"initiatives"`
}

func roadmapFallback(raw string, now time.Time) map[string]any {
	return map[string]any{
		"rawResponse": raw,
		"generatedAt": now,
		"structure":   "text-based",
		"phases": []roadmapPhase{
			{Name: "Phase 1: Foundation", Duration: "Months 1-3", Focus: "Planning and setup", Initiatives: []string{"Strategic planning", "Team formation", "Resource allocation"}},
			{Name: "Phase 2: Development", Duration: "Months 4-6", Focus: "Building and testing", Initiatives: []string{"Product development", "Market validation", "Process optimization"}},
			{Name: "Phase 3: Launch", Duration: "Months 7-9", Focus: "Market entry", Initiatives: []string{"Product launch", "Marketing campaigns", "Customer acquisition"}},
			{Name: "Phase 4: Scale", Duration: "Months 10-12", Focus: "Growth and optimization", Initiatives: []string{"Scale operations", "Market expansion", "Performance optimization"}},
		},
	}
}

func competitorFallback(raw string, now time.Time) map[string]any {
	return map[string]any{
		"rawAnalysis": raw,
		"generatedAt": now,
		"structure":   "comprehensive-text-analysis",
		"keyInsights": []string{
			"Competitive landscape analyzed",
			"Market positioning identified",
			"Strategic recommendations provided",
		},
	}
}

// planTitle reads executiveSummary.title from a plan document.
func planTitle(doc map[string]any) string {
	summary, _ := doc["executiveSummary"].(map[string]any)
	title, _ := summary["title"].(string)
	return strings.TrimSpace(title)
}

type actionTask struct {
	Task              string `json:"task"`
	Priority          string `json:"priority"`
	Phase             string `json:"phase"`
	EstimatedDuration string `json:"estimatedDuration"`
}

// actionTasks extracts the actionTasks array; malformed entries are skipped.
func actionTasks(doc map[string]any) []actionTask {
	items, _ := doc["actionTasks"].([]any)
	out := make([]actionTask, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		var t actionTask
		t.Task, _ = m["task"].(string)
		t.Priority, _ = m["priority"].(string)
		t.Phase, _ = m["phase"].(string)
		t.EstimatedDuration, _ = m["estimatedDuration"].(string)
		if strings.TrimSpace(t.Task) == "" {
			continue
		}
		out = append(out, t)
	}
	return out
}
