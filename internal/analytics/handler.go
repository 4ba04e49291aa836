package analytics

import (
	"github.com/gin-gonic/gin"

	"business-navigator/internal/shared/server/respond"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/analytics", h.get)
}

func (h *Handler) get(c *gin.Context) {
	respond.OK(c, SampleDashboard())
}
