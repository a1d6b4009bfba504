package handler

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	mdwerror "github.com/msto63/sexpr/foundation/core/error"
	"github.com/msto63/sexpr/internal/service"
	"github.com/msto63/sexpr/pkg/core/health"
	"github.com/msto63/sexpr/pkg/core/logging"
)

// Config holds HTTP server configuration
type Config struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns default server configuration
func DefaultConfig() Config {
	return Config{
		Host:         "0.0.0.0",
		Port:         8310,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// Server serves the HTTP API and the websocket endpoint
type Server struct {
	httpServer *http.Server
	logger     *logging.Logger
	config     Config
}

// NewServer creates the HTTP server
func NewServer(cfg Config, converter *service.Converter, registry *health.Registry) *Server {
	logger := logging.New("http-server")

	mux := http.NewServeMux()
	mux.Handle("/ws", NewWebSocketHandler(converter))
	mux.Handle("/", NewHandler(converter, registry))

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      loggingMiddleware(logger, mux),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		logger: logger,
		config: cfg,
	}
}

// Handler returns the root handler including middleware
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// loggingMiddleware adds request logging
func loggingMiddleware(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		logger.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapper.statusCode,
			"duration_ms", float64(time.Since(start).Microseconds())/1000,
		)
	})
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWrapper) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// Hijack lets the websocket upgrader take over the connection
func (w *responseWrapper) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	w.statusCode = http.StatusSwitchingProtocols
	return hijacker.Hijack()
}

// Start serves until the server is stopped
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", "address", s.Address())
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return mdwerror.Wrap(err, "HTTP server failed").
			WithCode(mdwerror.CodeServiceInitialization).
			WithOperation("handler.Start").
			WithDetail("address", s.Address())
	}
	return nil
}

// StartAsync starts the server asynchronously
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			s.logger.Error("HTTP server error", "error", err)
		}
	}()
}

// Stop gracefully stops the server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// Address returns the server address
func (s *Server) Address() string {
	return s.httpServer.Addr
}
