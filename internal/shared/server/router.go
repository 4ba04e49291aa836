package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"business-navigator/internal/services/health"
	"business-navigator/internal/shared/config"
	"business-navigator/internal/shared/metrics"
	"business-navigator/internal/shared/server/middleware"
	"business-navigator/internal/shared/server/respond"
)

const apiPrefix = "/api/v1"

// RouteRegistrar is implemented by every feature handler.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// RouterDeps carries what NewRouter needs. Nil handlers are skipped.
type RouterDeps struct {
	Config          config.Config
	Verifier        middleware.Verifier
	Health          *health.Service
	Handlers        []RouteRegistrar
	PublicHandlers  []RouteRegistrar
	DevHandlers     []RouteRegistrar
	GenerationPaths []string
	RateLimiter     *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(deps.Verifier, apiPrefix+"/health", apiPrefix+"/auth/", "/metrics"),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				middleware.GenerationGroup: middleware.PerMinute(deps.Config.LLMRatePerMinute),
			},
			GroupFor: generationGroup(deps.GenerationPaths),
			Limiter:  deps.RateLimiter,
		}),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group(apiPrefix)
	api.GET("/health", func(c *gin.Context) {
		status := deps.Health.Status(c.Request.Context())
		code := http.StatusOK
		if !status.OK {
			code = http.StatusServiceUnavailable
		}
		respond.JSON(c, code, status)
	})

	for _, h := range deps.PublicHandlers {
		if h != nil {
			h.RegisterRoutes(api)
		}
	}
	for _, h := range deps.Handlers {
		if h != nil {
			h.RegisterRoutes(api)
		}
	}
	if deps.Config.IsDevLike() {
		for _, h := range deps.DevHandlers {
			if h != nil {
				h.RegisterRoutes(api)
			}
		}
	}

	return r
}

// generationGroup puts the model-backed routes into their own rate-limit bucket.
func generationGroup(paths []string) func(*gin.Context) string {
	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		set[apiPrefix+"/"+strings.TrimPrefix(p, "/")] = struct{}{}
	}
	return func(c *gin.Context) string {
		if _, ok := set[c.FullPath()]; ok {
			return middleware.GenerationGroup
		}
		return ""
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
