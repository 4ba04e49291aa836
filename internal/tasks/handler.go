package tasks

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

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

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/tasks", h.list)
	rg.POST("/tasks", h.create)
	rg.PATCH("/tasks/:id", h.update)
}

func (h *Handler) list(c *gin.Context) {
	filter := ListFilter{
		UserID:         middleware.UserIDFromContext(c),
		BusinessPlanID: strings.TrimSpace(c.Query("planId")),
		Phase:          strings.TrimSpace(c.Query("phase")),
	}
	if raw := strings.TrimSpace(c.Query("priority")); raw != "" {
		p, ok := ParsePriority(raw)
		if !ok {
			respond.Validation(c, "Invalid priority", respond.FieldIssue{Field: "priority", Issue: "must be High, Medium or Low"})
			return
		}
		filter.Priority = p
	}
	if raw := strings.TrimSpace(c.Query("completed")); raw != "" {
		completed, err := strconv.ParseBool(raw)
		if err != nil {
			respond.Validation(c, "Invalid completed flag", respond.FieldIssue{Field: "completed", Issue: "must be true or false"})
			return
		}
		filter.Completed = &completed
	}
	items, err := h.Svc.Search(c.Request.Context(), filter, c.Query("q"))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Failed to fetch tasks", nil)
		return
	}
	respond.OK(c, items)
}

func (h *Handler) create(c *gin.Context) {
	var in CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.Validation(c, "Invalid request body")
		return
	}
	if missing := in.MissingFields(); len(missing) > 0 {
		issues := make([]respond.FieldIssue, 0, len(missing))
		for _, f := range missing {
			issues = append(issues, respond.FieldIssue{Field: f, Issue: "required"})
		}
		respond.Validation(c, "Missing required fields", issues...)
		return
	}
	if _, ok := ParsePriority(in.Priority); !ok {
		respond.Validation(c, "Invalid priority", respond.FieldIssue{Field: "priority", Issue: "must be High, Medium or Low"})
		return
	}
	task, err := h.Svc.Create(c.Request.Context(), middleware.UserIDFromContext(c), in)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			respond.Validation(c, err.Error())
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Failed to create task", nil)
		return
	}
	respond.Created(c, task)
}

type updateRequest struct {
	Completed *bool `json:"completed"`
}

func (h *Handler) update(c *gin.Context) {
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Completed == nil {
		respond.Validation(c, "Missing required fields", respond.FieldIssue{Field: "completed", Issue: "required"})
		return
	}
	task, err := h.Svc.SetCompleted(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"), *req.Completed)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "task not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Failed to update task", nil)
		return
	}
	respond.OK(c, task)
}
