package seed

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"business-navigator/internal/shared/server/respond"
)

type Handler struct {
	Seeder  *Seeder
	Backend string
}

func NewHandler(seeder *Seeder, backend string) *Handler {
	return &Handler{Seeder: seeder, Backend: backend}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/dev/db-test", h.dbTest)
}

func (h *Handler) dbTest(c *gin.Context) {
	res, err := h.Seeder.Run(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Database connection failed", err.Error())
		return
	}
	respond.OK(c, gin.H{
		"status":     "Database connected successfully",
		"created":    res.Created,
		"counts":     res.Counts,
		"sampleData": res.SampleData,
		"databaseInfo": gin.H{
			"type":   h.Backend,
			"tables": []string{"users", "business_plans", "tasks"},
		},
	})
}
