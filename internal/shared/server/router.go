package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-converter/internal/conversions"
	"resume-converter/internal/services/health"
	"resume-converter/internal/shared/config"
	"resume-converter/internal/shared/metrics"
	"resume-converter/internal/shared/server/middleware"
	"resume-converter/internal/shared/server/respond"
)

// RouterDeps carries the wired handlers the router mounts.
type RouterDeps struct {
	Config             config.Config
	ConversionsHandler *conversions.Handler
	Health             *health.Service
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env != "dev" && deps.Config.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				"DEFAULT": {Rate: 2, Burst: 10},
				"POLLING": {Rate: 10, Burst: 30},
			},
			GroupFor: func(c *gin.Context) string {
				if c.Request.Method == http.MethodGet && c.FullPath() == "/api/conversions/:id" {
					return "POLLING"
				}
				return "DEFAULT"
			},
		}),
	)

	r.GET("/metrics", metrics.Handler())

	healthHandler := func(c *gin.Context) {
		report := deps.Health.Status(c.Request.Context())
		status := http.StatusOK
		if !report.OK {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, report)
	}
	r.GET("/healthz", healthHandler)

	api := r.Group("/api")
	api.GET("/health", healthHandler)
	deps.ConversionsHandler.RegisterRoutes(api)

	return r
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
