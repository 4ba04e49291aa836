package intelligence

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"business-navigator/internal/shared/metrics"
	"business-navigator/internal/shared/server/respond"
	"business-navigator/internal/shared/telemetry"
)

// ReportBuilder is the single operation the handler exposes.
type ReportBuilder interface {
	Build(ctx context.Context) (AggregateReport, error)
}

type Handler struct {
	Builder ReportBuilder
}

func NewHandler(builder ReportBuilder) *Handler {
	return &Handler{Builder: builder}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/business-intelligence", h.report)
}

func (h *Handler) report(c *gin.Context) {
	start := time.Now()
	report, err := h.Builder.Build(c.Request.Context())
	metrics.ObserveReportDurationMs(float64(time.Since(start).Microseconds()) / 1000.0)
	if err != nil {
		metrics.IncReportFailed()
		telemetry.Error("intelligence.build_failed", map[string]any{
			"request_id": c.GetString("requestId"),
			"error":      err.Error(),
		})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Failed to generate business intelligence", nil)
		return
	}
	metrics.IncReportBuilt()
	respond.OK(c, report)
}
