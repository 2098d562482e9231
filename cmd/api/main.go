// @title StudyDesk API
// @version 1.0
// @description API for the StudyDesk study assistant: turns lecture files and video links into study guides.
// @host localhost:8090
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description Type 'Bearer YOUR_JWT_TOKEN' to authorize.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"studydesk/internal/adapter/gemini"
	"studydesk/internal/adapter/transcript"
	"studydesk/internal/config"
	"studydesk/internal/handler"
	"studydesk/internal/logger"
	"studydesk/internal/middleware"
	"studydesk/internal/repository/memory"
	"studydesk/internal/service"
	"studydesk/internal/validation"

	_ "studydesk/cmd/api/docs"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/tmc/langchaingo/llms/googleai"
	"go.uber.org/zap"
)

// requestLogger is a middleware that logs HTTP requests
func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		path := c.Path()
		method := c.Method()

		err := c.Next()

		duration := time.Since(start)
		status := c.Response().StatusCode()

		logger.Get().Info("HTTP Request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("duration", duration),
			zap.String("ip", c.IP()),
			zap.String("user_agent", c.Get("User-Agent")),
		)

		return err
	}
}

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	// Initialize Gemini client
	ctx := context.Background()
	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(cfg.Gemini.APIKey),
		googleai.WithDefaultModel(cfg.Gemini.Model),
	)
	if err != nil {
		appLogger.Fatal("Failed to create Gemini client", zap.Error(err))
	}
	appLogger.Info("Gemini client initialized", zap.String("model", cfg.Gemini.Model))

	// Initialize repositories. State is process-local and lost on restart.
	store := memory.NewStore()
	userRepository := memory.NewUserRepository()

	// Initialize adapters
	analyzer, err := gemini.NewAnalyzer(llm, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to create analyzer", zap.Error(err))
	}
	transcriptFetcher := transcript.NewFetcher(cfg.Analysis.RequestTimeout, appLogger)

	// Initialize services
	studyService := service.NewStudyService(store, store, analyzer, transcriptFetcher, cfg)
	chatService := service.NewChatService(store, store, analyzer)

	authService, err := service.NewAuthService(userRepository, cfg)
	if err != nil {
		appLogger.Fatal("Failed to create AuthService", zap.Error(err))
	}
	appLogger.Info("AuthService initialized")

	userService := service.NewUserService(userRepository)

	// Initialize handlers
	validator := validation.NewValidator(cfg.Analysis.MaxContentBytes)
	studyHandler := handler.NewStudyHandler(studyService, validator)
	chatHandler := handler.NewChatHandler(chatService, validator)
	authHandler := handler.NewAuthHandler(authService, cfg)
	userHandler := handler.NewUserHandler(userService)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  20 * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(requestLogger())
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.CORS.AllowOrigins, AllowMethods: "GET,POST,PUT,DELETE,OPTIONS", AllowHeaders: "Origin,Content-Type,Accept,Authorization", MaxAge: 300}))
	app.Use(recover.New())

	// Swagger handler
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API group
	apiGroup := app.Group("/api")

	// Auth routes
	authGroup := apiGroup.Group("/auth")
	authGroup.Get("/google/login", authHandler.GoogleLogin)
	authGroup.Get("/google/callback", authHandler.GoogleCallback)
	authGroup.Post("/refresh", authHandler.RefreshToken)
	authGroup.Post("/logout", middleware.Protected(authService), authHandler.Logout)

	// User routes
	userGroup := apiGroup.Group("/users", middleware.Protected(authService))
	userGroup.Get("/me", userHandler.GetMyProfile)

	// Analysis routes: analysis itself needs no account, saving results does
	apiGroup.Post("/analyze", middleware.OptionalAuth(authService), studyHandler.AnalyzeText)
	apiGroup.Post("/analyze/url", middleware.OptionalAuth(authService), studyHandler.AnalyzeURL)

	// Subject and material routes (all protected)
	subjectGroup := apiGroup.Group("/subjects", middleware.Protected(authService))
	subjectGroup.Post("/", studyHandler.CreateSubject)
	subjectGroup.Get("/", studyHandler.ListSubjects)
	subjectGroup.Put("/:id", studyHandler.RenameSubject)
	subjectGroup.Delete("/:id", studyHandler.DeleteSubject)
	subjectGroup.Get("/:id/materials", studyHandler.ListMaterials)

	materialGroup := apiGroup.Group("/materials", middleware.Protected(authService))
	materialGroup.Post("/", studyHandler.SaveMaterial)
	materialGroup.Get("/:id", studyHandler.GetMaterial)
	materialGroup.Delete("/:id", studyHandler.DeleteMaterial)
	materialGroup.Post("/:id/move", studyHandler.MoveMaterial)
	materialGroup.Post("/:id/chat", chatHandler.Chat)

	// Start server
	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", cfg.Logger.Env))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		appLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
