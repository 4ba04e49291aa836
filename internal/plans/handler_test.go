package plans

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := NewService(NewMemoryRepo(nil))
	plan, err := svc.Create(context.Background(), BusinessPlan{UserID: "user-1", Title: "Coffee"})
	require.NoError(t, err)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userId", c.GetHeader("X-Test-User"))
		c.Next()
	})
	NewHandler(svc).RegisterRoutes(router.Group("/api/v1"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/plans", nil)
	req.Header.Set("X-Test-User", "user-1")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "Coffee")

	req = httptest.NewRequest(http.MethodGet, "/api/v1/plans/"+plan.ID, nil)
	req.Header.Set("X-Test-User", "user-2")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/plans/"+plan.ID, nil)
	req.Header.Set("X-Test-User", "user-1")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusOK, resp.Code)
}
