// Package gateway exposes voice sessions over HTTP and WebSocket.
//
// Routes:
//
//	GET    /health                   liveness and session count
//	GET    /metrics                  Prometheus text exposition
//	GET    /api/rooms                session snapshots
//	GET    /api/rooms/:room          one session
//	DELETE /api/rooms/:room          end a session
//	POST   /api/rooms/:room/turns    answer a host-supplied history
//	POST   /api/rooms/:room/messages append a user utterance and answer it
//	GET    /ws/rooms/:room           live session socket
//	GET    /ws/events                session activity feed
package gateway

import (
	"context"
	"log/slog"
	"net"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/teslashibe/go-voicebridge/pkg/chatbase"
	"github.com/teslashibe/go-voicebridge/pkg/events"
	"github.com/teslashibe/go-voicebridge/pkg/session"
)

// Config holds gateway configuration.
type Config struct {
	Version string
	Debug   bool
	Logger  *slog.Logger

	// BackendStats, when set, adds backend request counters to /metrics.
	BackendStats func() chatbase.Stats
}

// Option configures the gateway.
type Option func(*Config)

// WithVersion sets the version reported by /health.
func WithVersion(v string) Option {
	return func(c *Config) {
		c.Version = v
	}
}

// WithDebug enables request logging.
func WithDebug(debug bool) Option {
	return func(c *Config) {
		c.Debug = debug
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithBackendStats exports backend counters on /metrics.
func WithBackendStats(fn func() chatbase.Stats) Option {
	return func(c *Config) {
		c.BackendStats = fn
	}
}

// Server is the HTTP front of a session manager.
type Server struct {
	app      *fiber.App
	sessions *session.Manager
	events   *events.Hub
	config   *Config
	logger   *slog.Logger

	// base context for socket turns, cancelled on Shutdown
	baseCtx context.Context
	cancel  context.CancelFunc
}

// New creates a Server and registers its routes.
func New(sessions *session.Manager, opts ...Option) *Server {
	cfg := &Config{Version: "dev", Logger: slog.Default()}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	app := fiber.New(fiber.Config{
		AppName:               "voicebridge",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Content-Type,Authorization",
	}))
	if cfg.Debug {
		app.Use(logger.New())
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		app:      app,
		sessions: sessions,
		events:   events.NewHub(cfg.Logger),
		config:   cfg,
		logger:   cfg.Logger.With("component", "gateway"),
		baseCtx:  ctx,
		cancel:   cancel,
	}
	go s.events.Run(ctx)
	s.publishSessions()
	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Get("/health", s.handleHealth)
	s.app.Get("/metrics", s.metricsHandler())

	api := s.app.Group("/api")
	api.Get("/rooms", s.handleListRooms)
	api.Get("/rooms/:room", s.handleGetRoom)
	api.Delete("/rooms/:room", s.handleEndRoom)
	api.Post("/rooms/:room/turns", s.handleTurn)
	api.Post("/rooms/:room/messages", s.handleMessage)

	s.registerSocket()
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until Shutdown.
func (s *Server) Listen(addr string) error {
	s.logger.Info("listening", "addr", addr, "speech", s.sessions.CanSpeak())
	return s.app.Listen(addr)
}

// Serve accepts connections on ln until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("listening", "addr", ln.Addr().String(), "speech", s.sessions.CanSpeak())
	return s.app.Listener(ln)
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	s.cancel()
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) ctx() context.Context {
	return s.baseCtx
}
