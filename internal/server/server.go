package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/samber/oops"

	"github.com/hongminglow/learning-be/internal/auth"
	"github.com/hongminglow/learning-be/internal/config"
	"github.com/hongminglow/learning-be/internal/http/handlers"
	"github.com/hongminglow/learning-be/internal/metrics"
	"github.com/hongminglow/learning-be/internal/middleware"
	"github.com/hongminglow/learning-be/internal/storage"
)

// Server wraps an http.Server with configured routes.
type Server struct {
	inner  *http.Server
	logger *slog.Logger
}

// New wires up middleware and routes around store. m may be nil.
func New(cfg config.Config, store storage.StudentStore, m *metrics.Metrics, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	hasher, err := auth.NewBcryptHasher(cfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL())
	svc := auth.NewService(store, hasher)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(time.Now()).Register(mux)
	handlers.NewAuthHandler(svc, tokens, m, logger).Register(mux)

	handler := middleware.Logging(logger, middleware.CORS(cfg.CORSOrigins, mux))

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	return &Server{inner: httpServer, logger: logger}, nil
}

// Handler returns the root handler, middleware included.
func (s *Server) Handler() http.Handler {
	return s.inner.Handler
}

// Start begins serving HTTP traffic. It returns nil after Shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server listening", "addr", s.inner.Addr)
	if err := s.inner.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return oops.Code("HTTP_SERVE_FAILED").With("addr", s.inner.Addr).Wrap(err)
	}
	return nil
}

// Serve serves on an existing listener. It returns nil after Shutdown.
func (s *Server) Serve(l net.Listener) error {
	if err := s.inner.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return oops.Code("HTTP_SERVE_FAILED").With("addr", l.Addr().String()).Wrap(err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
