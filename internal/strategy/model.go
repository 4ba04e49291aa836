package strategy

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	"business-navigator/internal/shared/util"
)

// ValidationError carries the client-facing reason an input was rejected.
type ValidationError struct {
	Message string
	Fields  []string
}

func (e *ValidationError) Error() string { return e.Message }

const maxInputRunes = 4000

func clean(s string) string {
	return util.Truncate(util.SanitizeText(s), maxInputRunes)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// PlanInput is the body of a business plan generation request.
type PlanInput struct {
	BusinessIdea string `json:"businessIdea"`
	TargetMarket string `json:"targetMarket"`
	UniqueValue  string `json:"uniqueValue"`
}

func (in PlanInput) normalize() PlanInput {
	return PlanInput{
		BusinessIdea: clean(in.BusinessIdea),
		TargetMarket: clean(in.TargetMarket),
		UniqueValue:  clean(in.UniqueValue),
	}
}

func (in PlanInput) validate() error {
	var missing []string
	if in.BusinessIdea == "" {
		missing = append(missing, "businessIdea")
	}
	if in.TargetMarket == "" {
		missing = append(missing, "targetMarket")
	}
	if in.UniqueValue == "" {
		missing = append(missing, "uniqueValue")
	}
	if len(missing) > 0 {
		return &ValidationError{Message: "Missing required fields", Fields: missing}
	}
	return nil
}

// PlanResult is a generated plan document and the records persisted for it.
type PlanResult struct {
	PlanID   string
	Document map[string]any
	TaskIDs  []string
	Fallback bool
}

// MarshalJSON renders the document with the stored plan id merged in.
func (r PlanResult) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Document)+1)
	for k, v := range r.Document {
		out[k] = v
	}
	if r.PlanID != "" {
		out["id"] = r.PlanID
	}
	return json.Marshal(out)
}

// RoadmapInput is the body of a roadmap generation request.
type RoadmapInput struct {
	BusinessPlan  string `json:"businessPlan"`
	Timeline      string `json:"timeline,omitempty"`
	Resources     string `json:"resources,omitempty"`
	Budget        string `json:"budget,omitempty"`
	TeamSize      string `json:"teamSize,omitempty"`
	Industry      string `json:"industry,omitempty"`
	BusinessStage string `json:"businessStage,omitempty"`
}

func (in RoadmapInput) normalize() RoadmapInput {
	return RoadmapInput{
		BusinessPlan:  clean(in.BusinessPlan),
		Timeline:      clean(in.Timeline),
		Resources:     clean(in.Resources),
		Budget:        clean(in.Budget),
		TeamSize:      clean(in.TeamSize),
		Industry:      clean(in.Industry),
		BusinessStage: clean(in.BusinessStage),
	}
}

func (in RoadmapInput) withDefaults() RoadmapInput {
	in.Timeline = orDefault(in.Timeline, "12 months")
	in.Resources = orDefault(in.Resources, "Standard startup resources")
	in.Budget = orDefault(in.Budget, "Startup budget")
	in.TeamSize = orDefault(in.TeamSize, "Small team (3-10 people)")
	in.Industry = orDefault(in.Industry, "Technology")
	in.BusinessStage = orDefault(in.BusinessStage, "Early Stage")
	return in
}

func (in RoadmapInput) validate() error {
	if in.BusinessPlan == "" {
		return &ValidationError{Message: "Business plan is required", Fields: []string{"businessPlan"}}
	}
	return nil
}

type RoadmapResult struct {
	Success     bool           `json:"success"`
	Roadmap     map[string]any `json:"roadmap"`
	Input       RoadmapInput   `json:"input"`
	GeneratedAt time.Time      `json:"generatedAt"`
}

// CompetitorInput is the body of a competitor analysis request.
type CompetitorInput struct {
	BusinessIdea    string `json:"businessIdea"`
	Industry        string `json:"industry"`
	TargetMarket    string `json:"targetMarket,omitempty"`
	UniqueValue     string `json:"uniqueValue,omitempty"`
	BusinessModel   string `json:"businessModel,omitempty"`
	GeographicScope string `json:"geographicScope,omitempty"`
}

func (in CompetitorInput) normalize() CompetitorInput {
	return CompetitorInput{
		BusinessIdea:    clean(in.BusinessIdea),
		Industry:        clean(in.Industry),
		TargetMarket:    clean(in.TargetMarket),
		UniqueValue:     clean(in.UniqueValue),
		BusinessModel:   clean(in.BusinessModel),
		GeographicScope: clean(in.GeographicScope),
	}
}

func (in CompetitorInput) withDefaults() CompetitorInput {
	in.TargetMarket = orDefault(in.TargetMarket, "General market")
	in.UniqueValue = orDefault(in.UniqueValue, "To be determined")
	in.BusinessModel = orDefault(in.BusinessModel, "To be determined")
	in.GeographicScope = orDefault(in.GeographicScope, "Global")
	return in
}

func (in CompetitorInput) validate() error {
	var missing []string
	if in.BusinessIdea == "" {
		missing = append(missing, "businessIdea")
	}
	if in.Industry == "" {
		missing = append(missing, "industry")
	}
	if len(missing) > 0 {
		return &ValidationError{Message: "Business idea and industry are required", Fields: missing}
	}
	return nil
}

type CompetitorResult struct {
	Success     bool            `json:"success"`
	Analysis    map[string]any  `json:"analysis"`
	Input       CompetitorInput `json:"input"`
	GeneratedAt time.Time       `json:"generatedAt"`
}

// ProtocolType selects one of the advanced strategy protocols.
type ProtocolType string

const (
	ProtocolStrategicSolution     ProtocolType = "strategic-solution"
	ProtocolMarketInsights        ProtocolType = "market-insights"
	ProtocolInnovationStrategy    ProtocolType = "innovation-strategy"
	ProtocolOperationalExcellence ProtocolType = "operational-excellence"
)

// ProtocolInput is the body of an advanced protocol request; the fields read depend on ProtocolType.
type ProtocolInput struct {
	ProtocolType    ProtocolType `json:"protocolType"`
	BusinessContext string       `json:"businessContext,omitempty"`
	Challenge       string       `json:"challenge,omitempty"`
	Industry        string       `json:"industry,omitempty"`
	TargetMarket    string       `json:"targetMarket,omitempty"`
	BusinessIdea    string       `json:"businessIdea,omitempty"`
	UniqueValue     string       `json:"uniqueValue,omitempty"`
	BusinessType    string       `json:"businessType,omitempty"`
	Scale           string       `json:"scale,omitempty"`
}

func (in ProtocolInput) normalize() ProtocolInput {
	return ProtocolInput{
		ProtocolType:    ProtocolType(strings.TrimSpace(string(in.ProtocolType))),
		BusinessContext: clean(in.BusinessContext),
		Challenge:       clean(in.Challenge),
		Industry:        clean(in.Industry),
		TargetMarket:    clean(in.TargetMarket),
		BusinessIdea:    clean(in.BusinessIdea),
		UniqueValue:     clean(in.UniqueValue),
		BusinessType:    clean(in.BusinessType),
		Scale:           clean(in.Scale),
	}
}

type protocolDef struct {
	template string
	message  string
	fields   func(ProtocolInput) map[string]string
}

var protocols = map[ProtocolType]protocolDef{
	ProtocolStrategicSolution: {
		template: "strategic_solution",
		message:  "Business context and challenge are required for strategic solution",
		fields: func(in ProtocolInput) map[string]string {
			return map[string]string{"businessContext": in.BusinessContext, "challenge": in.Challenge}
		},
	},
	ProtocolMarketInsights: {
		template: "market_insights",
		message:  "Industry and target market are required for market insights",
		fields: func(in ProtocolInput) map[string]string {
			return map[string]string{"industry": in.Industry, "targetMarket": in.TargetMarket}
		},
	},
	ProtocolInnovationStrategy: {
		template: "innovation_strategy",
		message:  "Business idea and unique value are required for innovation strategy",
		fields: func(in ProtocolInput) map[string]string {
			return map[string]string{"businessIdea": in.BusinessIdea, "uniqueValue": in.UniqueValue}
		},
	},
	ProtocolOperationalExcellence: {
		template: "operational_excellence",
		message:  "Business type and scale are required for operational excellence plan",
		fields: func(in ProtocolInput) map[string]string {
			return map[string]string{"businessType": in.BusinessType, "scale": in.Scale}
		},
	},
}

func (in ProtocolInput) definition() (protocolDef, error) {
	if in.ProtocolType == "" {
		return protocolDef{}, &ValidationError{Message: "Protocol type is required", Fields: []string{"protocolType"}}
	}
	def, ok := protocols[in.ProtocolType]
	if !ok {
		return protocolDef{}, &ValidationError{Message: "Invalid protocol type", Fields: []string{"protocolType"}}
	}
	var missing []string
	for name, v := range def.fields(in) {
		if v == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return protocolDef{}, &ValidationError{Message: def.message, Fields: missing}
	}
	return def, nil
}

type ProtocolResult struct {
	Success      bool         `json:"success"`
	ProtocolType ProtocolType `json:"protocolType"`
	Result       string       `json:"result"`
	Timestamp    time.Time    `json:"timestamp"`
}
