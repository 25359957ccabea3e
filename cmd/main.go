package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/chalodk/lims-sub002/internal/clients/redis"
	"github.com/chalodk/lims-sub002/internal/db"
	"github.com/chalodk/lims-sub002/internal/handlers"
	"github.com/chalodk/lims-sub002/internal/logger"
	"github.com/chalodk/lims-sub002/internal/middleware"
	"github.com/chalodk/lims-sub002/internal/observability"
	"github.com/chalodk/lims-sub002/internal/repos"
	"github.com/chalodk/lims-sub002/internal/server"
	"github.com/chalodk/lims-sub002/internal/services"
	"github.com/chalodk/lims-sub002/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	cronSecret := utils.GetEnv("CRON_SECRET", "", log)
	slaCfg := services.SLAConfig{
		StandardDays:      utils.GetEnvAsInt("SLA_STANDARD_DAYS", 10, log),
		ExpressDays:       utils.GetEnvAsInt("SLA_EXPRESS_DAYS", 5, log),
		AttentionFraction: utils.GetEnvAsFloat("SLA_ATTENTION_FRACTION", 0.2, log),
	}

	// Tracing
	otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "lims-backend",
		Environment: utils.GetEnv("DEPLOY_ENV", "development", log),
		Version:     utils.GetEnv("SERVICE_VERSION", "dev", log),
	})
	if otelShutdown != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(ctx)
		}()
	}

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Fatal("Postgres init failed", "error", err)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Fatal("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	companyRepo := repos.NewCompanyRepo(thePG, log)
	userRepo := repos.NewUserRepo(thePG, log)
	sampleRepo := repos.NewSampleRepo(thePG, log)
	resultRepo := repos.NewResultRepo(thePG, log)
	ruleRepo := repos.NewInterpretationRuleRepo(thePG, log)
	appliedRepo := repos.NewAppliedInterpretationRepo(thePG, log)

	// Optional stats cache
	var statsCache services.SLAStatsCache
	if redisAddr := utils.GetEnv("REDIS_ADDR", "", log); redisAddr != "" {
		cache, err := redis.NewStatsCache(log, redisAddr, 30*time.Second)
		if err != nil {
			log.Warn("Redis stats cache unavailable, continuing without it", "error", err)
		} else {
			statsCache = cache
			defer cache.Close()
		}
	}

	// Services
	log.Info("Setting up Services from main...")
	authService := services.NewAuthService(thePG, log, userRepo, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second)
	slaService := services.NewSLAService(thePG, log, sampleRepo, slaCfg, statsCache, nil)
	sampleService := services.NewSampleService(thePG, log, sampleRepo, resultRepo, slaCfg)
	interpretationService := services.NewInterpretationService(thePG, log, sampleRepo, resultRepo, ruleRepo, appliedRepo)

	// Handlers
	log.Info("Setting up Handlers from main...")
	authHandler := handlers.NewAuthHandler(log, authService)
	sampleHandler := handlers.NewSampleHandler(log, sampleService, slaService)
	slaHandler := handlers.NewSLAHandler(log, slaService, companyRepo)
	ruleHandler := handlers.NewRuleHandler(log, interpretationService, appliedRepo)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(log, authService)
	cronMiddleware := middleware.NewCronMiddleware(log, cronSecret)

	// Router
	router := server.NewRouter(server.RouterConfig{
		AuthHandler:    authHandler,
		SampleHandler:  sampleHandler,
		SLAHandler:     slaHandler,
		RuleHandler:    ruleHandler,
		AuthMiddleware: authMiddleware,
		CronMiddleware: cronMiddleware,
	})

	port := utils.GetEnv("PORT", "8080", log)
	log.Info("Starting HTTP server...", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("HTTP server exited", "error", err)
	}
}
