package main

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/websocket/v2"
	"github.com/greenkeep/greenkeep-backend/internal/cache"
	"github.com/greenkeep/greenkeep-backend/internal/handlers"
	wsc "github.com/greenkeep/greenkeep-backend/internal/handlers/ws"
	"github.com/greenkeep/greenkeep-backend/internal/middleware"
	"github.com/greenkeep/greenkeep-backend/internal/notify"
	"github.com/greenkeep/greenkeep-backend/internal/obs"
	"github.com/greenkeep/greenkeep-backend/internal/repository"
	"github.com/greenkeep/greenkeep-backend/internal/service"
	"github.com/greenkeep/greenkeep-backend/internal/storage"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using system environment variables")
	}

	log := obs.NewLogger(os.Getenv("APP_ENV"))
	slog.SetDefault(log)

	if os.Getenv("JWT_SECRET") == "" {
		slog.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	app := fiber.New(fiber.Config{
		AppName: "GreenKeep Backend",
		// Photo uploads up to 5MB plus multipart overhead.
		BodyLimit: 8 * 1024 * 1024,
	})

	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     os.Getenv("ALLOWED_ORIGINS"),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		AllowCredentials: true,
	}))

	db, err := repository.InitDB()
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	// Redis is optional; every cache is a no-op without it.
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisDB := 0
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if parsedDB, err := strconv.Atoi(dbStr); err == nil {
			redisDB = parsedDB
		}
	}
	redisCache := cache.NewRedisCache(redisAddr, os.Getenv("REDIS_PASSWORD"), redisDB)
	if err := redisCache.Ping(); err != nil {
		slog.Warn("redis connection failed, running without cache", "error", err)
		redisCache = nil
	} else {
		slog.Info("redis cache connected")
	}
	presenceCache := cache.NewPresenceCache(redisCache)
	unreadCache := cache.NewUnreadCache(redisCache)

	userRepo := repository.NewUserRepository(db)
	conversationRepo := repository.NewConversationRepository(db)
	presenceRepo := repository.NewPresenceRepository(db)
	careRepo := repository.NewCareRepository(db)
	plantRepo := repository.NewPlantRepository(db)
	adviceRepo := repository.NewAdviceRepository(db)

	authService := service.NewAuthService(userRepo)
	userService := service.NewUserService(userRepo)
	conversationService := service.NewConversationService(conversationRepo, userRepo, careRepo)
	presenceService := service.NewPresenceService(presenceRepo, presenceCache)
	plantService := service.NewPlantService(plantRepo)
	careService := service.NewCareService(careRepo, plantRepo, conversationService)
	adviceService := service.NewAdviceService(adviceRepo, plantRepo, userRepo)

	// Email notifications are best effort; without SMTP config the mailer is
	// nil and notification calls are no-ops.
	var mailer *notify.Mailer
	if cfg, err := notify.LoadSMTPFromEnv(); err != nil {
		slog.Warn("email notifications not configured", "error", err)
	} else {
		mailer = notify.NewMailer(notify.NewSMTPSender(cfg))
		slog.Info("email notifications enabled", "host", cfg.Host)
	}

	var photoStorage *storage.PhotoStorage
	if cfg, err := storage.LoadS3ConfigFromEnv(); err != nil {
		slog.Warn("photo storage not configured", "error", err)
	} else if st, err := storage.NewPhotoStorage(cfg); err != nil {
		slog.Warn("failed to initialize photo storage", "error", err)
	} else {
		photoStorage = st
		slog.Info("photo storage initialized", "bucket", cfg.Bucket)
	}

	hub := wsc.NewHub()
	router := wsc.NewRouter(hub, conversationService, presenceService, userService, mailer, unreadCache)

	wsHandler := handlers.NewWebSocketHandler(hub, router, presenceService)
	authHandler := handlers.NewAuthHandler(authService, userService)
	conversationHandler := handlers.NewConversationHandler(conversationService, presenceService, userService, mailer, unreadCache)
	careHandler := handlers.NewCareHandler(careService, photoStorage)
	plantHandler := handlers.NewPlantHandler(plantService, photoStorage)
	adviceHandler := handlers.NewAdviceHandler(adviceService)

	api := app.Group("/api")
	auth := api.Group("/auth", limiter.New(limiter.Config{
		Max:        20,
		Expiration: time.Minute,
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)

	protected := api.Group("/", middleware.AuthRequired())
	protected.Get("/users/me", authHandler.GetCurrentUser)

	protected.Get("/conversations", conversationHandler.ListConversations)
	protected.Post("/conversations", conversationHandler.CreateConversation)
	protected.Get("/messages/unread-count", conversationHandler.UnreadCount)
	protected.Get("/messages/unread-count/total", conversationHandler.UnreadCountTotal)
	protected.Get("/conversations/:id", conversationHandler.GetConversation)
	protected.Get("/conversations/:id/messages", conversationHandler.ListMessages)
	protected.Post("/conversations/:id/messages", conversationHandler.SendMessage)
	protected.Post("/conversations/:id/read", conversationHandler.MarkRead)
	protected.Get("/conversations/:id/participants", conversationHandler.ListParticipants)
	protected.Get("/conversations/:id/typing", conversationHandler.ListTypingUsers)

	protected.Post("/cares", careHandler.CreateCare)
	protected.Get("/cares", careHandler.ListCares)
	protected.Get("/cares/:id", careHandler.GetCare)
	protected.Put("/cares/:id/status", careHandler.UpdateCareStatus)
	protected.Post("/cares/:id/photos", careHandler.UploadCarePhoto)

	protected.Post("/advices", adviceHandler.CreateAdvice)
	protected.Get("/advices/plant/:plant_id", adviceHandler.ListPlantAdvices)
	protected.Get("/advices/botanist/:botanist_id", adviceHandler.ListBotanistAdvices)
	protected.Get("/advices/:id", adviceHandler.GetAdvice)
	protected.Put("/advices/:id", adviceHandler.UpdateAdvice)
	protected.Put("/advices/:id/validate", adviceHandler.ValidateAdvice)
	protected.Delete("/advices/:id", adviceHandler.DeleteAdvice)

	protected.Post("/plants", plantHandler.CreatePlant)
	protected.Get("/plants", plantHandler.ListPlants)
	protected.Get("/plants/:id", plantHandler.GetPlant)
	protected.Post("/plants/:id/photo", plantHandler.UploadPlantPhoto)

	// WebSocket upgrade needs the token from the query string since browsers
	// cannot set headers on the upgrade request.
	app.Use(
		"/ws",
		middleware.AuthRequired(),
		func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		},
	)
	app.Get("/ws/:conversation_id", websocket.New(wsHandler.HandleConnection(conversationService)))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	slog.Info("starting server", "port", port)
	if err := app.Listen(":" + port); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
