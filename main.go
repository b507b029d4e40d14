package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tubebrief/config"
	"tubebrief/handlers"
	"tubebrief/logger"
	"tubebrief/repository/sqlite"
	"tubebrief/scripts"
	"tubebrief/services/distribution"
	"tubebrief/services/pipeline"
	"tubebrief/services/video"
	"tubebrief/summarizer"
	"tubebrief/telegram"
	"tubebrief/validation"

	"github.com/gofiber/fiber/v2"
	fiberLogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	appLog, logWriter, err := logger.Init(cfg.LogDir, cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// Initialize database
	db, err := sqlite.InitDB(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()
	sqlite.ConfigureDB(db, sqlite.DBConfig{
		MaxConnections:     cfg.Database.MaxConnections,
		MaxIdleConnections: cfg.Database.MaxIdleConnections,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
	})

	// Initialize repositories
	videoRepo := sqlite.NewVideoRepository(db)
	transcriptionRepo := sqlite.NewTranscriptionRepository(db)
	summaryRepo := sqlite.NewSummaryRepository(db)
	sourceRepo := sqlite.NewSourceRepository(db)
	recipientRepo := sqlite.NewRecipientRepository(db)

	// Initialize stage adapters
	scriptRunner, err := scripts.NewScriptRunner(scripts.Config{
		PythonPath:  cfg.Scripts.PythonPath,
		ScriptsPath: cfg.Scripts.ScriptsPath,
		Timeout:     cfg.Pipeline.ProcessTimeout,
		AudioDir:    cfg.AudioDir,
		Model:       cfg.Pipeline.WhisperModel,
	})
	if err != nil {
		log.Fatalf("Failed to initialize script runner: %v", err)
	}

	openAI := summarizer.NewOpenAI(cfg.OpenAI.APIKey, summarizer.Config{
		Model: cfg.OpenAI.Model,
	})

	telegramClient, err := telegram.NewClient(telegram.Config{
		BotToken: cfg.Telegram.BotToken,
		APIBase:  cfg.Telegram.APIBase,
		Timeout:  cfg.Distribution.SendTimeout,
	})
	if err != nil {
		log.Fatalf("Failed to initialize telegram client: %v", err)
	}

	// Initialize validator
	validator := validation.NewValidator()

	// Initialize services
	videoService := video.NewService(videoRepo, sourceRepo, validator)

	pipelineService := pipeline.NewService(
		videoRepo,
		transcriptionRepo,
		summaryRepo,
		scriptRunner,
		scriptRunner,
		openAI,
		pipeline.Config{
			MaxDuration:    cfg.Pipeline.MaxDuration,
			ProcessTimeout: cfg.Pipeline.ProcessTimeout,
		},
	)

	distributionService := distribution.NewService(
		summaryRepo,
		transcriptionRepo,
		videoRepo,
		sourceRepo,
		recipientRepo,
		telegramClient,
		distribution.Config{
			SendDelay: cfg.Distribution.SendDelay,
		},
	)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		IdleTimeout:           cfg.IdleTimeout,
		ErrorHandler:          handlers.ErrorHandler,
		DisableStartupMessage: !cfg.Debug,
		StrictRouting:         true,
		CaseSensitive:         true,
		AppName:               "tubebrief " + cfg.Version,
	})

	// Setup middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberLogger.New(fiberLogger.Config{
		Output:     logWriter,
		Format:     "${time} | ${status} | ${latency} | ${method} | ${path} | ${error}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	if cfg.RateLimit.Enabled {
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.RateLimit.RequestsPerMinute,
			Expiration: time.Minute,
		}))
	}

	// Setup routes
	videoHandler := handlers.NewVideoHandler(videoService, pipelineService)
	distributionHandler := handlers.NewDistributionHandler(distributionService, summaryRepo)
	sourceHandler := handlers.NewSourceHandler(sourceRepo)
	recipientHandler := handlers.NewRecipientHandler(recipientRepo)

	api := app.Group("/api")
	api.Post("/videos", videoHandler.Create)
	api.Get("/videos/:id", videoHandler.Get)
	api.Patch("/videos/:id", videoHandler.Update)
	api.Delete("/videos/:id", videoHandler.Delete)
	api.Post("/videos/:id/process", videoHandler.Process)
	api.Post("/videos/:id/retry", videoHandler.Retry)

	api.Get("/summaries/:id", distributionHandler.GetSummary)
	api.Post("/summaries/:id/distribute", distributionHandler.Distribute)

	api.Post("/sources", sourceHandler.Create)
	api.Get("/sources/:id", sourceHandler.Get)

	api.Post("/recipients", recipientHandler.Create)
	api.Post("/recipients/:id/subscribe", recipientHandler.Subscribe)

	// Health check
	app.Get("/health", handlers.HealthCheck)

	// Graceful shutdown setup
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-shutdownChan
		appLog.Info("Shutting down server...")
		if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
			appLog.WithError(err).Error("Server shutdown failed")
		}
	}()

	appLog.WithField("port", cfg.ServerPort).Info("Starting server")
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
