package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"legalaid-backend/internal/ai"
	"legalaid-backend/internal/documents"
	"legalaid-backend/internal/shared/auth"
	"legalaid-backend/internal/shared/config"
	"legalaid-backend/internal/shared/metrics"
	"legalaid-backend/internal/shared/server/middleware"
	"legalaid-backend/internal/shared/server/respond"
	"legalaid-backend/internal/users"
)

// RouterDeps carries everything the router needs; bootstrap fills it in.
type RouterDeps struct {
	Config           config.Config
	Tokens           *auth.TokenService
	LoadIdentity     middleware.IdentityLoader
	UsersHandler     *users.Handler
	DocumentsHandler *documents.Handler
	AIHandler        *ai.Handler
	// ReadyCheck reports whether downstream dependencies are reachable.
	// Nil means always ready.
	ReadyCheck func(context.Context) error
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
	)

	r.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		if deps.ReadyCheck != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := deps.ReadyCheck(ctx); err != nil {
				respond.Error(c, http.StatusServiceUnavailable, "not_ready", "dependency check failed", nil)
				return
			}
		}
		respond.JSON(c, http.StatusOK, gin.H{"ready": true})
	})
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	deps.UsersHandler.RegisterPublicRoutes(api)

	protected := api.Group("")
	protected.Use(
		middleware.Auth(deps.Tokens, deps.LoadIdentity),
		middleware.RateLimit(middleware.RateLimitConfig{
			GroupFor: func(c *gin.Context) string {
				if strings.HasPrefix(c.FullPath(), "/api/v1/ai/") {
					return "AI"
				}
				return ""
			},
			Rules: map[string]middleware.RateLimitRule{
				"DEFAULT": {Rate: 20, Burst: 40},
				"AI":      {Rate: 2, Burst: 5},
			},
		}),
	)
	deps.UsersHandler.RegisterRoutes(protected)
	deps.DocumentsHandler.RegisterRoutes(protected)
	deps.AIHandler.RegisterRoutes(protected)

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
