// Package web exposes the conversation service over HTTP.
package web

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/MarceloCamachh/chapi/internal/log"
	"github.com/MarceloCamachh/chapi/internal/observability"
	"github.com/MarceloCamachh/chapi/pkg/hub"
	"github.com/MarceloCamachh/chapi/pkg/voice"
)

// Server is the HTTP front of the conversation pipeline.
type Server struct {
	app      *fiber.App
	addr     string
	pipeline *voice.Pipeline
	hub      *hub.Hub
	metrics  *observability.Metrics
}

// NewServer wires the routes. The hub may be nil when no observers are
// expected; metrics may be nil in tests.
func NewServer(addr string, pipeline *voice.Pipeline, conversationHub *hub.Hub, metrics *observability.Metrics) *Server {
	s := &Server{
		addr:     addr,
		pipeline: pipeline,
		hub:      conversationHub,
		metrics:  metrics,
	}

	app := fiber.New(fiber.Config{
		AppName:               "Chapi",
		DisableStartupMessage: true,
		BodyLimit:             16 * 1024 * 1024, // voice uploads
	})

	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(requestID)

	app.Get("/health", s.handleHealth)
	app.Get("/metrics", adaptor.HTTPHandler(observability.MetricsHandler()))

	api := app.Group("/api")
	api.Post("/text", s.handleText)
	api.Post("/voice", s.handleVoice)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/conversation", websocket.New(s.handleConversationWS))

	s.app = app
	return s
}

// requestID tags every request for log correlation.
func requestID(c *fiber.Ctx) error {
	id := c.Get("X-Request-ID")
	if id == "" {
		id = uuid.NewString()
	}
	c.Locals("request_id", id)
	c.Set("X-Request-ID", id)
	return c.Next()
}

// Start runs the hub loop and blocks serving HTTP.
func (s *Server) Start() error {
	if s.hub != nil {
		go s.hub.Run()
	}
	log.Info("http server listening", "addr", s.addr)
	return s.app.Listen(s.addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// Test exposes fiber's test hook for handler tests.
func (s *Server) Test(req *http.Request, timeoutMs ...int) (*http.Response, error) {
	return s.app.Test(req, timeoutMs...)
}
