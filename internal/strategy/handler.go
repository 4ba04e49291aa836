package strategy

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"business-navigator/internal/shared/server/middleware"
	"business-navigator/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// GenerationPaths are the routes that call the model, relative to the API group.
var GenerationPaths = []string{"/generate-plan", "/roadmap-generator", "/competitor-analysis", "/advanced-protocol"}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/generate-plan", h.generatePlan)
	rg.POST("/roadmap-generator", h.roadmap)
	rg.POST("/competitor-analysis", h.competitorAnalysis)
	rg.POST("/advanced-protocol", h.protocol)
}

func (h *Handler) generatePlan(c *gin.Context) {
	c.Set("generationKind", KindBusinessPlan)
	var in PlanInput
	if !bind(c, &in) {
		return
	}
	result, err := h.Svc.GeneratePlan(c.Request.Context(), middleware.UserIDFromContext(c), in)
	if err != nil {
		fail(c, err, "Failed to generate business plan")
		return
	}
	c.Set("planId", result.PlanID)
	respond.OK(c, result)
}

func (h *Handler) roadmap(c *gin.Context) {
	c.Set("generationKind", KindRoadmap)
	var in RoadmapInput
	if !bind(c, &in) {
		return
	}
	result, err := h.Svc.Roadmap(c.Request.Context(), in)
	if err != nil {
		fail(c, err, "Failed to generate roadmap")
		return
	}
	respond.OK(c, result)
}

func (h *Handler) competitorAnalysis(c *gin.Context) {
	c.Set("generationKind", KindCompetitor)
	var in CompetitorInput
	if !bind(c, &in) {
		return
	}
	result, err := h.Svc.CompetitorAnalysis(c.Request.Context(), in)
	if err != nil {
		fail(c, err, "Failed to generate competitor analysis")
		return
	}
	respond.OK(c, result)
}

func (h *Handler) protocol(c *gin.Context) {
	c.Set("generationKind", KindProtocol)
	var in ProtocolInput
	if !bind(c, &in) {
		return
	}
	result, err := h.Svc.Protocol(c.Request.Context(), in)
	if err != nil {
		fail(c, err, "Failed to generate advanced protocol")
		return
	}
	respond.OK(c, result)
}

func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respond.Validation(c, "Invalid request body")
		return false
	}
	return true
}

func fail(c *gin.Context, err error, message string) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		issue := "required"
		if verr.Message == "Invalid protocol type" {
			issue = "invalid"
		}
		issues := make([]respond.FieldIssue, 0, len(verr.Fields))
		for _, f := range verr.Fields {
			issues = append(issues, respond.FieldIssue{Field: f, Issue: issue})
		}
		respond.Validation(c, verr.Message, issues...)
		return
	}
	respond.Error(c, http.StatusInternalServerError, "generation_failed", message, err.Error())
}
