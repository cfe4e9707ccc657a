// Package server assembles the HTTP router.
package server

import (
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/hireme-ai/internal/apperr"
	"github.com/justsurfingit/hireme-ai/internal/auth"
	"github.com/justsurfingit/hireme-ai/internal/config"
	"github.com/justsurfingit/hireme-ai/internal/handlers"
	"github.com/justsurfingit/hireme-ai/internal/metrics"
	"github.com/justsurfingit/hireme-ai/internal/ratelimit"
	"github.com/justsurfingit/hireme-ai/internal/services"
	"github.com/justsurfingit/hireme-ai/internal/validation"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"gorm.io/gorm"
)

// Deps are the long-lived collaborators built in main.
type Deps struct {
	Config   config.Config
	Log      *zap.Logger
	DB       *gorm.DB
	LLM      *services.LLMService
	Limiter  *ratelimit.Limiter
	Sessions *auth.Sessions
	OAuth    *oauth2.Config
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
}

// New builds the router. Protected routes run the session check, then the
// rate limiter, then the handler.
func New(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(ginzap.Ginzap(d.Log, time.RFC3339, true))
	r.Use(ginzap.CustomRecoveryWithZap(d.Log, true, apperr.Recover))
	r.Use(cors.New(corsConfig(d.Config.Server.AllowedOrigins)))
	r.Use(d.Metrics.Middleware())
	r.Use(apperr.Middleware(d.Log))

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))

	v := validation.New()
	applicationService := services.NewApplicationService(d.DB)
	userService := services.NewUserService(d.DB)

	aiHandler := handlers.NewAIHandler(d.LLM, v)
	jobHandler := handlers.NewJobHandler(d.LLM, v)
	applicationHandler := handlers.NewApplicationHandler(applicationService, v)
	authHandler := auth.NewHandler(d.OAuth, d.Config.Auth.FrontendURL, userService, d.Sessions, d.Log)

	requireSession := auth.RequireSession(d.Sessions)
	limit := func(l config.Limit) gin.HandlerFunc {
		return ratelimit.Middleware(d.Limiter, ratelimit.Policy{Window: l.Window, Max: l.Max}, d.Metrics)
	}
	limits := d.Config.RateLimit

	api := r.Group("/api/v1")
	{
		api.GET("/health", handlers.HealthCheck)

		authRoutes := api.Group("/auth")
		authRoutes.GET("/github/login", authHandler.Login)
		authRoutes.GET("/github/callback", authHandler.Callback)
		authRoutes.GET("/session", requireSession, authHandler.Session)
		authRoutes.POST("/logout", authHandler.Logout)

		// AI routes
		api.POST("/analyze", requireSession, limit(limits.Analyze), aiHandler.Analyze)
		api.POST("/cover-letter", requireSession, limit(limits.CoverLetter), aiHandler.CoverLetter)
		api.POST("/jobs/extract", requireSession, limit(limits.Extract), jobHandler.ParseJob)

		apps := api.Group("/applications", requireSession)
		apps.POST("", applicationHandler.Create)
		apps.GET("", applicationHandler.List)
		apps.GET("/stats", applicationHandler.Stats)
		apps.GET("/export", applicationHandler.Export)
		apps.PATCH("/:id/status", applicationHandler.UpdateStatus)
		apps.GET("/:id/events", applicationHandler.Events)
		apps.DELETE("/:id", applicationHandler.Delete)
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowOrigins = origins
	cfg.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	cfg.ExposeHeaders = []string{"Retry-After", "Content-Disposition"}
	cfg.AllowCredentials = true
	cfg.MaxAge = 12 * time.Hour
	return cfg
}
