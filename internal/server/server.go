// Package server exposes the stores and the coordinator over HTTP and
// WebSocket endpoints.
package server

import (
	"context"
	"log"
	"sync"
	"time"

	"quantum/internal/app"
	"quantum/internal/cache"
	"quantum/internal/config"
	"quantum/internal/conversation"
	"quantum/internal/feed"
	"quantum/internal/identity"
	"quantum/internal/middleware"
	"quantum/internal/models"
	"quantum/internal/notifications"
	"quantum/internal/seedclient"
	"quantum/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
)

// pinger is implemented by stores backed by a real database.
type pinger interface {
	Ping(ctx context.Context) error
}

// The prometheus middleware registers collectors in the default registry,
// which tolerates only one registration per process.
var (
	promOnce sync.Once
	promMw   *fiberprometheus.FiberPrometheus
)

func promMiddleware() *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		promMw = fiberprometheus.New("quantum-api")
	})
	return promMw
}

// Server holds all dependencies and provides handlers.
type Server struct {
	config         *config.Config
	store          storage.Store
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	notifier      *notifications.Publisher
	hub           *notifications.Hub
	identity      *identity.Store
	feed          *feed.Store
	conversations *conversation.Store
	coordinator   *app.Coordinator
}

// NewServer creates a server instance, establishing storage and Redis from
// the configuration.
func NewServer(cfg *config.Config) (*Server, error) {
	dbStore, err := storage.Open(cfg)
	if err != nil {
		return nil, err
	}

	redisClient := cache.Connect(cfg.RedisURL)

	var store storage.Store = dbStore
	if redisClient != nil {
		store = cache.Wrap(dbStore, redisClient)
	}

	return NewServerWithDeps(cfg, store, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Used by tests and by bootstrap layers that establish storage themselves.
func NewServerWithDeps(cfg *config.Config, store storage.Store, redisClient *redis.Client) (*Server, error) {
	prom := promMiddleware()

	notifier := notifications.NewPublisher(redisClient)
	seeds := seedclient.New(cfg.SeedURL)

	var provider identity.Provider
	if cfg.ProviderToken != "" && cfg.ProviderSecret != "" {
		provider = identity.NewTokenProvider(cfg.ProviderToken, cfg.ProviderSecret, cfg.CreatorHandle)
	}

	ids := identity.New(store, seeds, notifier, provider)
	posts := feed.New(store, ids, notifier)
	chats := conversation.New(store, seeds, notifier)
	coordinator := app.NewCoordinator(ids, posts, chats, store, notifier, app.Options{
		SearchDebounce: time.Duration(cfg.SearchDebounceMS) * time.Millisecond,
	})

	server := &Server{
		config:         cfg,
		store:          store,
		redis:          redisClient,
		promMiddleware: prom,
		notifier:       notifier,
		identity:       ids,
		feed:           posts,
		conversations:  chats,
		coordinator:    coordinator,
	}
	if redisClient != nil {
		server.hub = notifications.NewHub(redisClient)
	}
	return server, nil
}

// Bootstrap loads or seeds every store.
func (s *Server) Bootstrap(ctx context.Context) error {
	return s.coordinator.Bootstrap(ctx)
}

// SetupMiddleware configures middleware for the Fiber app.
func (s *Server) SetupMiddleware(fa *fiber.App) {
	fa.Use(recover.New())
	fa.Use(requestid.New())
	fa.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		fa.Use(s.promMiddleware.Middleware)
	}

	fa.Use(helmet.New())
	fa.Use(middleware.StructuredLogger())

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	fa.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	fa.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application.
func (s *Server) SetupRoutes(fa *fiber.App) {
	api := fa.Group("/api")

	fa.Get("/health/live", s.LivenessCheck)
	fa.Get("/health/ready", s.ReadinessCheck)
	fa.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(fa, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Quantum Metrics Dashboard",
	}))

	// Session routes
	session := api.Group("/session")
	session.Get("/", s.GetCurrentUser)
	session.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	session.Post("/logout", s.Logout)

	// User routes
	users := api.Group("/users")
	users.Get("/", s.SearchUsers)
	users.Put("/me", s.UpdateProfile)
	users.Get("/:username", s.GetUserProfile)

	// Feed routes
	posts := api.Group("/posts")
	posts.Get("/", s.GetFeed)
	posts.Post("/", middleware.RateLimit(
		s.redis, 15, time.Minute, "create_post"), s.CreatePost)
	// Specific /:id/:resource routes before the generic /:id route
	posts.Post("/:id/like", s.ToggleLike)
	posts.Post("/:id/comments", middleware.RateLimit(
		s.redis, 15, time.Minute, "create_comment"), s.AddComment)
	posts.Delete("/:id", s.DeletePost)

	// Chat routes
	chats := api.Group("/chats")
	chats.Get("/", s.GetChats)
	chats.Get("/active", s.GetActiveChat)
	chats.Post("/active/messages", middleware.RateLimit(
		s.redis, 30, time.Minute, "send_chat"), s.SendMessage)
	chats.Post("/:id/open", s.OpenChat)

	// View state routes
	tabs := api.Group("/tabs")
	tabs.Get("/active", s.GetActiveTab)
	tabs.Post("/:tab", s.SwitchTab)

	settings := api.Group("/settings")
	settings.Get("/theme", s.GetTheme)
	settings.Post("/theme/toggle", s.ToggleTheme)

	// Event stream for toast and render signals
	api.Get("/ws/events", s.WebSocketEventsHandler())
}

// LivenessCheck handles liveness probe requests.
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	storageStatus := "healthy"
	if p, ok := s.store.(pinger); ok {
		if err := p.Ping(ctx); err != nil {
			storageStatus = "unhealthy"
		}
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		// The app runs without Redis; readiness only degrades, not fails.
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if storageStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"storage": storageStatus,
			"redis":   redisStatus,
		},
		"time": time.Now(),
	})
}

// Start starts the server.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	fa := fiber.New(fiber.Config{
		AppName: "Quantum API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = fa

	s.SetupMiddleware(fa)
	s.SetupRoutes(fa)

	if s.hub != nil {
		go func() {
			if err := s.hub.StartWiring(s.shutdownCtx); err != nil {
				log.Printf("failed to start event hub wiring: %v", err)
			}
		}()
	}

	if err := s.Bootstrap(s.shutdownCtx); err != nil {
		return err
	}

	log.Printf("Server starting on port %s...", s.config.Port)
	return fa.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if s.hub != nil {
		if err := s.hub.Shutdown(ctx); err != nil {
			log.Printf("error shutting down event hub: %v", err)
		}
	}

	s.coordinator.Close()

	if closer, ok := s.store.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			log.Printf("error closing storage: %v", err)
		}
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			log.Printf("error closing redis: %v", err)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
