package users

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newMeRouter(svc *Service, userID string, guest bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userId", userID)
		c.Set("isGuest", guest)
		c.Next()
	})
	NewHandler(svc).RegisterRoutes(router.Group("/api/v1"))
	return router
}

func TestMeReturnsUser(t *testing.T) {
	repo := NewMemoryRepo()
	user, err := repo.Upsert(context.Background(), User{Email: "ceo@example.com", Name: "CEO"})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	router := newMeRouter(NewService(repo), user.ID, false)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/me", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var got User
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Email != "ceo@example.com" {
		t.Fatalf("unexpected email %q", got.Email)
	}
}

func TestMeRejectsGuest(t *testing.T) {
	router := newMeRouter(NewService(NewMemoryRepo()), "guest:g1", true)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/me", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestMeUnknownUser(t *testing.T) {
	router := newMeRouter(NewService(NewMemoryRepo()), "nobody", false)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/me", nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}
