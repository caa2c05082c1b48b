package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/opencourse/coursework-service/internal/cache"
	"github.com/opencourse/coursework-service/internal/config"
	"github.com/opencourse/coursework-service/internal/events"
	"github.com/opencourse/coursework-service/internal/handlers"
	"github.com/opencourse/coursework-service/internal/models"
	"github.com/opencourse/coursework-service/internal/repositories/postgres"
	"github.com/opencourse/coursework-service/internal/services"
	"github.com/opencourse/coursework-service/internal/utils"
	"github.com/opencourse/coursework-service/internal/validator"
	"github.com/opencourse/coursework-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := utils.NewLogger(cfg.Environment)
	handlerLogger := utils.NewSlogLogger(logger)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.CourseInstance{},
		&models.CourseModule{},
		&models.LearningObjectCategory{},
		&models.Exercise{},
		&models.Submission{},
		&models.SubmittedFile{},
		&models.DeadlineRuleDeviation{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	cacheService := cache.NewRedisCache(redisClient, logger)

	publisher, err := events.NewKafkaEventPublisher(events.PublisherConfig{
		KafkaBrokers: cfg.KafkaBrokers,
		TopicName:    cfg.GradingEventsTopic,
		Logger:       logger,
	})
	if err != nil {
		log.Fatalf("failed to create event publisher: %v", err)
	}
	defer publisher.Close()

	repo := postgres.NewRepository(db)
	validate := validator.New()

	serviceManager := services.NewServiceManager(services.ManagerConfig{
		Repo:      repo,
		Cache:     cacheService,
		Publisher: publisher,
		Logger:    logger,
		Validator: validate,
		BaseURL:   cfg.BaseURL,
	})

	handlers.InitCasdoor(cfg)
	auth := handlers.NewAuthMiddleware(repo.User(), handlerLogger)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(handlerLogger))
	router.Use(utils.ContextLogger(handlerLogger))

	handlerManager := handlers.NewHandlerManager(serviceManager, auth, validate, handlerLogger)
	handlerManager.SetupRoutes(router)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(server, repo)
}

func waitForShutdown(server *http.Server, repo interface{ Close() error }) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
	if err := repo.Close(); err != nil {
		log.Printf("failed to close database: %v", err)
	}

	log.Println("server stopped")
	os.Exit(0)
}
