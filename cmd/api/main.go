package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"jobfit/resume-matcher/internal/config"
	"jobfit/resume-matcher/internal/handlers"
	"jobfit/resume-matcher/internal/repositories"
	"jobfit/resume-matcher/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Println("✅ Config loaded successfully")

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	// Initialize repositories
	jobRepo := repositories.NewJobRequirementRepository(db)
	candidateRepo := repositories.NewCandidateRepository(db)
	matchRepo := repositories.NewMatchResultRepository(db)
	log.Println("✅ Repositories initialized successfully")

	// Initialize services
	storageService := services.NewStorageService(cfg.Storage.UploadPath)
	if err := storageService.EnsureUploadDir(); err != nil {
		log.Fatalf("❌ Failed to create upload directory: %v", err)
	}

	pdfParser := services.NewPDFParserService()
	log.Println("✅ Services initialized successfully")

	// Initialize Gemini AI
	reasoningService, err := services.NewGeminiService(cfg.Gemini.APIKey, cfg.Gemini.Model)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini AI: %v", err)
	}
	log.Println("✅ Gemini AI initialized successfully")

	// Initialize matching services
	extractor := services.NewRequirementExtractor(reasoningService, cfg.Matching.RetryMaxAttempts)
	judge := services.NewQualitativeJudge(reasoningService, cfg.Matching.JudgeTimeout)
	resumeParser := services.NewResumeParserService(reasoningService, cfg.Matching.RetryMaxAttempts)

	pipeline := services.NewMatchPipeline(
		candidateRepo,
		matchRepo,
		judge,
		cfg.Matching.JudgeConcurrency,
		cfg.Matching.MinViableCandidates,
		cfg.Matching.RelaxedTopK,
	)
	log.Println("✅ Match pipeline initialized")

	// Initialize Handlers
	jobHandler := handlers.NewJobHandler(jobRepo, extractor)
	analyzeHandler := handlers.NewAnalyzeHandler(jobRepo, pipeline, cfg.Matching)
	resultHandler := handlers.NewResultHandler(jobRepo, matchRepo)
	uploadHandler := handlers.NewUploadHandler(
		candidateRepo,
		storageService,
		pdfParser,
		resumeParser,
		cfg.Storage.MaxFileSize,
	)
	log.Println("✅ Handlers initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Resume Matcher API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize),
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Routes
	api := app.Group("/api/v1")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	// API endpoints
	api.Post("/jobs", jobHandler.HandleSubmitJob)
	api.Post("/jobs/:id/analyze", analyzeHandler.HandleAnalyze)
	api.Get("/jobs/:id/results", resultHandler.HandleGetResults)
	api.Post("/candidates", uploadHandler.HandleUploadResume)

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Resume Matcher API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/jobs",
				"POST /api/v1/jobs/:id/analyze",
				"GET /api/v1/jobs/:id/results",
				"POST /api/v1/candidates",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
