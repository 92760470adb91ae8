package server

import (
	"net/http"
	"time"

	"user-account-service/internal/adapter/gin/handler"
	"user-account-service/internal/adapter/gin/middleware"
	"user-account-service/internal/adapter/gin/router"
	"user-account-service/internal/config"
	"user-account-service/internal/usecase/user"

	"go.uber.org/zap"
)

// Server struct holds the HTTP server and its dependencies
type Server struct {
	Config *config.Config
	Logger *zap.Logger
	HTTP   *http.Server
}

// New creates a new server instance with the configured router
func New(
	cfg *config.Config,
	l *zap.Logger,
	userHandler *handler.UserHandler,
	tokens middleware.TokenVerifier,
	repo user.Repository,
	rateLimiter *middleware.RateLimiter,
) *Server {
	r := router.SetupRouter(userHandler, tokens, repo, rateLimiter, l)

	addr := ":" + cfg.App.HTTPPort
	l.Info("HTTP API configured", zap.String("address", addr))

	return &Server{
		Config: cfg,
		Logger: l,
		HTTP: &http.Server{
			Addr:              addr,
			Handler:           r,
			ReadHeaderTimeout: 2 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
	}
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	s.Logger.Info("HTTP server running", zap.String("address", s.HTTP.Addr))
	return s.HTTP.ListenAndServe()
}
