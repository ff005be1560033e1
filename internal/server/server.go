package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/showscribe/showscribe/internal/service"
	"github.com/showscribe/showscribe/internal/youtube"
)

// Server exposes the video processing and usage APIs over HTTP.
type Server struct {
	unifier youtube.Unifier
	usage   service.UsageService
	logger  *zap.Logger
}

// New creates a Server. A nil logger falls back to a no-op logger.
func New(unifier youtube.Unifier, usage service.UsageService, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		unifier: unifier,
		usage:   usage,
		logger:  logger,
	}
}

// Router builds the gin engine with all routes and middleware attached.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestID())
	router.Use(RequestLogger(s.logger))

	router.GET("/health", s.handleHealth)

	api := router.Group("/api")
	{
		api.POST("/videos/unified", s.handleUnifiedVideo)
		api.GET("/usage", s.handleUsage)
	}

	return router
}

// Run starts the HTTP server and blocks until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("address", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
