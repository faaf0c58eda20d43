// Package server provides the HTTP server implementation.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/items-api/internal/config"
	"github.com/vyrodovalexey/items-api/internal/handler"
	"github.com/vyrodovalexey/items-api/internal/middleware"
	"github.com/vyrodovalexey/items-api/internal/store"
)

// Server represents the HTTP server.
type Server struct {
	httpServer  *http.Server
	probeServer *http.Server
	router      *mux.Router
	handler     http.Handler
	config      *config.Config
	logger      *zap.Logger
	eventHub    *handler.EventHub
	restHandler *handler.RESTHandler
}

// New creates a new Server instance serving itemStore.
func New(cfg *config.Config, logger *zap.Logger, itemStore store.Store) *Server {
	s := &Server{
		router: mux.NewRouter(),
		config: cfg,
		logger: logger,
	}

	s.setupRoutes(itemStore)
	s.setupMiddleware()
	s.setupHTTPServers()

	return s
}

// setupMiddleware wraps the router. Everything except metrics runs outside
// the router so unmatched routes and CORS preflights are covered too.
func (s *Server) setupMiddleware() {
	allowedMethods := []string{
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodDelete,
		http.MethodOptions,
	}
	allowedHeaders := []string{
		"Content-Type",
		middleware.RequestIDHeader,
	}

	// Route templates are only known inside the router.
	if s.config.MetricsEnabled {
		s.router.Use(mux.MiddlewareFunc(middleware.Metrics()))
	}

	s.handler = middleware.Chain(
		middleware.Recovery(s.logger),
		middleware.RequestID(),
		middleware.Logging(s.logger),
		middleware.CORS(s.config.CORSOrigins, allowedMethods, allowedHeaders),
		middleware.MaxBodySize(s.config.MaxBodyBytes),
	)(s.router)
}

// setupRoutes configures the API routes.
func (s *Server) setupRoutes(itemStore store.Store) {
	var notifier handler.Notifier
	if s.config.EventsEnabled {
		s.eventHub = handler.NewEventHub(s.logger)
		s.eventHub.RegisterRoutes(s.router)
		notifier = s.eventHub
	}

	s.restHandler = handler.NewRESTHandler(itemStore, notifier, s.logger)
	s.restHandler.RegisterRoutes(s.router)

	if s.config.MetricsEnabled {
		s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	}

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		handler.WriteError(w, http.StatusNotFound, "not found", s.logger)
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		handler.WriteError(w, http.StatusMethodNotAllowed, "method not allowed", s.logger)
	})
}

// probeRouter serves health, readiness and metrics on the probe port.
func (s *Server) probeRouter() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/health", s.restHandler.HealthCheck).Methods(http.MethodGet)
	router.HandleFunc("/ready", s.restHandler.ReadyCheck).Methods(http.MethodGet)
	if s.config.MetricsEnabled {
		router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	}
	return router
}

// setupHTTPServers configures the API server and, when enabled, the probe server.
func (s *Server) setupHTTPServers() {
	s.httpServer = &http.Server{
		Addr:              s.config.Address(),
		Handler:           s.handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1 MB
	}

	if s.config.ProbeEnabled() {
		s.probeServer = &http.Server{
			Addr:              s.config.ProbeAddress(),
			Handler:           s.probeRouter(),
			ReadHeaderTimeout: 5 * time.Second,
		}
	}
}

// Start starts the HTTP servers and blocks until one of them fails or both stop.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("server listen: %w", err)
	}
	return s.Serve(ln)
}

// Serve serves the API on ln. The probe server, if enabled, listens on its own port.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("starting server",
		zap.String("address", ln.Addr().String()),
		zap.Bool("metrics_enabled", s.config.MetricsEnabled),
		zap.Bool("events_enabled", s.config.EventsEnabled),
	)

	probeErrors := make(chan error, 1)
	if s.probeServer != nil {
		s.logger.Info("starting probe server", zap.String("address", s.probeServer.Addr))
		go func() {
			if err := s.probeServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				probeErrors <- fmt.Errorf("probe server listen and serve: %w", err)
			}
		}()
	}

	apiErrors := make(chan error, 1)
	go func() {
		apiErrors <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-probeErrors:
		_ = s.httpServer.Close()
		<-apiErrors
		return err
	case err := <-apiErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server serve: %w", err)
		}
		return nil
	}
}

// Shutdown gracefully shuts down the servers.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")

	// Hijacked WebSocket connections are not tracked by http.Server.
	if s.eventHub != nil {
		s.eventHub.CloseAllConnections()
	}

	var errs []error
	if err := s.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown: %w", err))
	}
	if s.probeServer != nil {
		if err := s.probeServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("probe server shutdown: %w", err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	s.logger.Info("server shutdown complete")
	return nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Router returns the server's router for testing purposes.
func (s *Server) Router() *mux.Router {
	return s.router
}
