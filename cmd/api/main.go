package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/devotionalai/api/internal/auth"
	"github.com/devotionalai/api/internal/config"
	"github.com/devotionalai/api/internal/handler"
	"github.com/devotionalai/api/internal/middleware"
	"github.com/devotionalai/api/internal/notify"
	"github.com/devotionalai/api/internal/service"
	"github.com/devotionalai/api/internal/store"
	ws "github.com/devotionalai/api/internal/websocket"
	"github.com/devotionalai/api/pkg/response"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogging(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Durable record store
	st, err := store.NewPostgresStore(ctx, cfg.Postgres.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer st.Close()

	// Redis: queue transport, rate limiting, status events
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Msg("redis not available")
	}

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer asynqClient.Close()

	validate := validator.New()

	hub := ws.NewHub()
	go hub.Run()
	go notify.Subscribe(ctx, redisClient, hub.BroadcastEvent)

	issuer := auth.NewTokenIssuer(cfg.JWT.Secret,
		time.Duration(cfg.JWT.AccessExpiryHours)*time.Hour,
		time.Duration(cfg.JWT.RefreshExpiryHours)*time.Hour,
	)

	var verifier *auth.JWKSVerifier
	if cfg.OIDC.Issuer != "" {
		verifier, err = auth.NewJWKSVerifier(&cfg.OIDC)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize OIDC verifier")
		}
	}

	// Services
	authService := service.NewAuthService(st, issuer, cfg.Quota)
	generationService := service.NewGenerationService(st, service.NewAsynqEnqueuer(asynqClient))
	catalogService := service.NewCatalogService()

	// Handlers
	authHandler := handler.NewAuthHandler(authService, validate)
	generationHandler := handler.NewGenerationHandler(generationService, validate)
	catalogHandler := handler.NewCatalogHandler(catalogService)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret, verifier)
	rateLimiter := middleware.NewRateLimiter(redisClient)

	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    5 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Auth routes
	authGroup := app.Group("/api/auth", rateLimiter.AuthLimit(cfg.RateLimit.AuthPerMin))
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Authenticated API routes
	api := app.Group("/api", authMiddleware.Authenticate())
	api.Post("/generations", rateLimiter.SubmitLimit(cfg.RateLimit.SubmitPerHour), generationHandler.Submit)
	api.Get("/generations", generationHandler.List)
	api.Get("/generations/:id", generationHandler.Get)
	api.Get("/voices", catalogHandler.Voices)
	api.Get("/templates", catalogHandler.Templates)

	// WebSocket status push
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/generations/:id", websocket.New(func(c *websocket.Conn) {
		hub.HandleConnection(c, c.Params("id"))
	}))

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		log.Info().Msg("shutting down server")
		cancel()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error().Err(err).Msg("server shutdown error")
		}
	}()

	addr := ":" + cfg.Server.Port
	log.Info().Str("addr", addr).Msg("server starting")
	if err := app.Listen(addr); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}

func setupLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.Server.Env == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return response.Error(c, code, response.CodeServiceError, message, nil)
}
