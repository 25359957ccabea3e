package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/chalodk/lims-sub002/internal/handlers"
	"github.com/chalodk/lims-sub002/internal/middleware"
)

type RouterConfig struct {
	AuthHandler    *handlers.AuthHandler
	SampleHandler  *handlers.SampleHandler
	SLAHandler     *handlers.SLAHandler
	RuleHandler    *handlers.RuleHandler
	AuthMiddleware *middleware.AuthMiddleware
	CronMiddleware *middleware.CronMiddleware
	AllowOrigins   []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()
	router.Use(otelgin.Middleware("lims-backend"))

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With", "X-Cron-Secret"},
		AllowCredentials: true,
	}))

	// Public
	router.GET("/healthcheck", handlers.HealthCheck)
	router.POST("/register", cfg.AuthHandler.Register)
	router.POST("/login", cfg.AuthHandler.Login)

	// Scheduled triggers, shared-secret authenticated
	cron := router.Group("/cron")
	cron.Use(cfg.CronMiddleware.RequireCronSecret())
	cron.POST("/sla/sweep", cfg.SLAHandler.CronSweep)

	// Protected
	api := router.Group("/api")
	api.Use(cfg.AuthMiddleware.RequireAuth())
	// Samples
	api.GET("/samples", cfg.SampleHandler.ListSamples)
	api.POST("/samples", cfg.SampleHandler.CreateSample)
	api.GET("/samples/:id", cfg.SampleHandler.GetSample)
	api.PATCH("/samples/:id", cfg.SampleHandler.UpdateSample)
	api.GET("/samples/:id/results", cfg.SampleHandler.ListResults)
	api.POST("/samples/:id/sla/refresh", cfg.SampleHandler.RefreshSLA)
	// SLA dashboards
	api.GET("/sla/stats", cfg.SLAHandler.GetStats)
	api.GET("/sla/attention", cfg.SLAHandler.GetAttention)
	// Interpretation rules
	api.GET("/interpretation-rules", cfg.RuleHandler.ListRules)
	api.POST("/interpretation-rules", cfg.RuleHandler.CreateRule)
	api.POST("/samples/:id/interpretations/evaluate", cfg.RuleHandler.EvaluateSample)
	api.GET("/samples/:id/interpretations", cfg.RuleHandler.ListInterpretations)

	return router
}
