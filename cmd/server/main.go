package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/talkgenius/interview-engine/internal/cache"
	"github.com/talkgenius/interview-engine/internal/config"
	"github.com/talkgenius/interview-engine/internal/engine"
	"github.com/talkgenius/interview-engine/internal/handlers"
	"github.com/talkgenius/interview-engine/internal/orchestrator"
	"github.com/talkgenius/interview-engine/internal/repositories/postgres"
	"github.com/talkgenius/interview-engine/internal/services"
	"github.com/talkgenius/interview-engine/internal/utils"
	"github.com/talkgenius/interview-engine/internal/validator"
	"github.com/talkgenius/interview-engine/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		logger = utils.NewDefaultLogger()
	} else {
		logger = utils.NewDevelopmentLogger()
	}
	slogger := utils.ToSlogLogger(logger)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	publisher, err := cfg.Events.CreateEventPublisher(slogger)
	if err != nil {
		log.Fatalf("Failed to create event publisher: %v", err)
	}
	defer publisher.Close()

	// Remote collaborator endpoints for evaluation, generation and responses
	client := engine.NewClient(engine.ClientOptions{
		BaseURL:         cfg.Collaborator.BaseURL,
		EvaluateTimeout: cfg.Collaborator.EvaluateTimeout,
		GenerateTimeout: cfg.Collaborator.GenerateTimeout,
	}, slogger)

	interviewRepo := postgres.NewInterviewPostgreSQL(db)
	cacheService := cache.NewRedisCache(redisClient, slogger)
	interviewService := services.NewInterviewService(interviewRepo, cacheService, publisher, slogger)
	reportService := services.NewReportService(interviewService, slogger)

	orch := orchestrator.New(
		engine.NewEvaluator(client, engine.NewFollowUpPolicy(), slogger),
		engine.NewSequencer(client, slogger),
		engine.NewResponder(client, slogger),
		orchestrator.NewNarrator(),
		interviewService,
		orchestrator.Config{ReviewPause: time.Duration(cfg.ReviewPauseSeconds) * time.Second},
		slogger,
	)

	sessionService := services.NewSessionService(orch, validator.New(), publisher, slogger)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))

	handlerManager := handlers.NewHandlerManager(sessionService, interviewService, reportService, logger)
	handlerManager.SetupRoutes(router)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("Starting interview engine", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Forced shutdown", "error", err)
	}
}
