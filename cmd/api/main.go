package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/kinderhub/backend/internal/auth"
	"github.com/kinderhub/backend/internal/config"
	"github.com/kinderhub/backend/internal/database"
	"github.com/kinderhub/backend/internal/handler"
	"github.com/kinderhub/backend/internal/logging"
	"github.com/kinderhub/backend/internal/middleware"
	"github.com/kinderhub/backend/internal/repository"
	"github.com/kinderhub/backend/internal/service"
	"github.com/kinderhub/backend/internal/storage"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logging.Setup(cfg.App.Env, os.Stderr)

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	// Document storage is optional; uploads answer 503 without it.
	var documents handler.DocumentStore
	if cfg.MinIO.SecretKey != "" {
		minioClient, err := storage.NewMinIOClient(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to MinIO")
		}
		documents = minioClient
	} else {
		log.Warn().Msg("MINIO_SECRET_KEY not set, student document upload disabled")
	}

	// News assistant is optional too.
	var assistant service.NewsAssistant
	gemini, err := service.NewGeminiAssistant(context.Background(), cfg)
	switch {
	case err == nil:
		assistant = gemini
		defer gemini.Close()
	case errors.Is(err, service.ErrAssistantUnavailable):
		log.Warn().Msg("GEMINI_API_KEY not set, news assistant disabled")
	default:
		log.Fatal().Err(err).Msg("failed to initialize news assistant")
	}

	// Initialize JWT service
	jwtService := auth.NewJWTService(cfg)

	// Initialize repositories
	semesterRepo := repository.NewSemesterRepository(db)
	classRepo := repository.NewClassRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	newsRepo := repository.NewNewsRepository(db)
	accountRepo := repository.NewUserAccountRepository(db)

	importService := service.NewImportService(semesterRepo, teacherRepo, classRepo)

	// Initialize handlers
	wsHandler := handler.NewWebSocketHandler()
	defer wsHandler.Hub.Stop()

	handlers := &handler.Handlers{
		Auth:        handler.NewAuthHandler(accountRepo, jwtService),
		Semester:    handler.NewSemesterHandler(semesterRepo, importService, wsHandler.Hub),
		Class:       handler.NewClassHandler(classRepo, semesterRepo, teacherRepo, importService, wsHandler.Hub),
		Teacher:     handler.NewTeacherHandler(teacherRepo, importService, wsHandler.Hub),
		Student:     handler.NewStudentHandler(studentRepo, classRepo, documents, wsHandler.Hub),
		News:        handler.NewNewsHandler(newsRepo, assistant, wsHandler.Hub),
		UserAccount: handler.NewUserAccountHandler(accountRepo, wsHandler.Hub),
		WebSocket:   wsHandler,
	}

	// Initialize auth middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: handler.ErrorHandler,
		BodyLimit:    12 * 1024 * 1024,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.CORS.Origins, ","),
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization",
		AllowCredentials: true,
	}))

	handler.RegisterRoutes(app.Group("/api"), handlers, authMiddleware)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info().Msg("gracefully shutting down")
		_ = app.Shutdown()
	}()

	// Start server
	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}
	log.Info().Str("port", port).Str("db", cfg.Database.Driver).Msg("server starting")
	if err := app.Listen(":" + port); err != nil {
		log.Error().Err(err).Msg("server stopped")
	}
}
