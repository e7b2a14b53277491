package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/skilltrack/rubric-api/internal/config"
	"github.com/skilltrack/rubric-api/internal/database"
	"github.com/skilltrack/rubric-api/internal/extract"
	"github.com/skilltrack/rubric-api/internal/handler"
	"github.com/skilltrack/rubric-api/internal/middleware"
	"github.com/skilltrack/rubric-api/internal/models"
	"github.com/skilltrack/rubric-api/internal/observability"
	"github.com/skilltrack/rubric-api/internal/repository"
	"github.com/skilltrack/rubric-api/internal/router"
	"github.com/skilltrack/rubric-api/internal/service"
	"github.com/skilltrack/rubric-api/pkg/ai"
	cloud "github.com/skilltrack/rubric-api/pkg/cloudinary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	observability.RegisterMetrics()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.Assignment{}, &models.Submission{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Redis is optional; without it the roster listing simply skips caching.
	var roster *service.RosterCache
	if cfg.RedisURL != "" {
		redisClient, err := database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
		roster = service.NewRosterCache(redisClient, cfg.RosterCacheTTL, logger)
	}

	// NATS is optional as well; a nil connection makes publishing a no-op.
	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Drain()
	}
	events := service.NewNATSPublisher(natsConn, cfg.EventSubjectBase, logger)

	uploader, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create cloudinary client: %v", err)
	}

	grader, err := ai.NewOpenAIGrader(ai.OpenAIConfig{
		APIKey:         cfg.GradingAPIKey,
		BaseURL:        cfg.GradingBaseURL,
		Model:          cfg.GradingModel,
		RequestTimeout: cfg.GradingTimeout,
		Logger:         logger,
	})
	if err != nil {
		log.Fatalf("failed to create grading client: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	extractor := extract.NewDocumentExtractor(logger)

	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)

	gradingService := service.NewGradingService(assignmentRepo, submissionRepo, extractor, grader, uploader, events, roster, validate, logger)
	policyService := service.NewPolicyService(assignmentRepo, validate, logger)

	gradingHandler := handler.NewGradingHandler(gradingService, validate, logger)
	policyHandler := handler.NewPolicyHandler(policyService, validate, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    cfg.MaxUploadMB * 1024 * 1024,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		PolicyHandler:  policyHandler,
		GradingHandler: gradingHandler,
		JWTMiddleware:  middleware.JWTProtected(cfg.JWTSecret),
		SubmitLimiter:  middleware.RateLimit("submit", cfg.SubmitRateLimit, cfg.SubmitRateWindow),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
