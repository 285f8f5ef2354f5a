// Package handler exposes the report pipeline over HTTP.
package handler

import (
	"encoding/json"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"teamie/internal/llm"
	"teamie/internal/metrics"
	"teamie/internal/modelcfg"
	"teamie/internal/store"
)

// ClientFactory builds a model client for the given catalog model id. The
// selection can change at runtime, so clients are constructed per analysis.
type ClientFactory func(model string) llm.Client

// Deps carries everything the HTTP layer needs.
type Deps struct {
	Store        *store.Store
	Models       *modelcfg.Provider
	Clients      ClientFactory
	SystemPrompt string
	Metrics      *metrics.Metrics
	Logger       zerolog.Logger
	CORSOrigins  string
}

// Server is the API Fiber application.
type Server struct {
	app      *fiber.App
	handlers *Handlers
	logger   zerolog.Logger
}

// NewServer creates and configures the API server.
func NewServer(deps Deps) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          customErrorHandler(deps.Logger),
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		BodyLimit:             32 << 20,
	})

	s := &Server{
		app:      app,
		handlers: NewHandlers(deps),
		logger:   deps.Logger.With().Str("component", "server").Logger(),
	}

	s.setupMiddleware(deps)
	s.setupRoutes(deps.Metrics)

	return s
}

func (s *Server) setupMiddleware(deps Deps) {
	s.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))

	if deps.CORSOrigins != "" {
		s.app.Use(cors.New(cors.Config{
			AllowOrigins: deps.CORSOrigins,
			AllowHeaders: "Origin, Content-Type, Accept",
			AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
		}))
	}

	s.app.Use(func(c *fiber.Ctx) error {
		path := c.Path()
		err := c.Next()
		// Probes are too noisy to log or count.
		if path == "/healthz" || path == "/metrics" {
			return err
		}
		status := c.Response().StatusCode()
		if deps.Metrics != nil {
			deps.Metrics.RecordRequest(c.Route().Path, strconv.Itoa(status))
		}
		s.logger.Info().
			Str("method", c.Method()).
			Str("path", path).
			Int("status", status).
			Msg("request")
		return err
	})
}

func (s *Server) setupRoutes(m *metrics.Metrics) {
	s.app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	if m != nil {
		s.app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))
	}

	api := s.app.Group("/api")
	h := s.handlers

	api.Get("/", h.Root)
	api.Post("/upload", h.Upload)

	api.Get("/projects", h.ListProjects)
	api.Get("/projects/:id", h.GetProject)
	api.Delete("/projects/:id", h.DeleteProject)
	api.Put("/projects/:id/status", h.UpdateStatus)

	api.Get("/projects/:id/week/:week", h.GetWeek)
	api.Put("/projects/:id/week/:week", h.UpdateWeek)
	api.Delete("/projects/:id/week/:week", h.DeleteWeek)
	api.Post("/projects/:id/week/:week/update-plan", h.UpdatePlan)
	api.Get("/projects/:id/week/:week/documents", h.ListDocuments)

	api.Post("/projects/:id/analyze-next-week", h.AnalyzeNextWeek)

	api.Get("/config/model", h.GetModelConfig)
	api.Put("/config/model", h.SetModelConfig)
}

// Start starts the server on addr. Blocks until stopped.
func (s *Server) Start(addr string) error {
	s.logger.Info().Str("addr", addr).Msg("api server starting")
	return s.app.Listen(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	s.logger.Info().Msg("api server shutting down")
	return s.app.Shutdown()
}

// App returns the underlying Fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func customErrorHandler(logger zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
		}
		logger.Error().
			Err(err).
			Int("status", code).
			Str("path", c.Path()).
			Str("method", c.Method()).
			Msg("unhandled error")
		return c.Status(code).JSON(fiber.Map{
			"success": false,
			"detail":  err.Error(),
		})
	}
}
