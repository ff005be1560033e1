package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/showscribe/showscribe/internal/config"
	"github.com/showscribe/showscribe/internal/logger"
	"github.com/showscribe/showscribe/internal/repository"
	"github.com/showscribe/showscribe/internal/server"
	"github.com/showscribe/showscribe/internal/service"
	"github.com/showscribe/showscribe/internal/youtube"
)

// serveCmd runs the HTTP API server
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Start the HTTP API exposing unified video processing and usage
endpoints. The server runs until interrupted and shuts down gracefully.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Load configuration
		cfg, err := config.NewConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		log, err := logger.New(cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer log.Sync()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		// Create database connection
		connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		dbPool, err := config.NewDatabasePool(connectCtx, cfg)
		cancel()
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer dbPool.Close()

		usageService := service.NewUsageService(
			repository.NewUsageRepository(dbPool),
			repository.NewSubscriptionRepository(dbPool),
			repository.NewEpisodeRepository(dbPool),
			nil,
			log,
		)

		metadataFetcher, err := youtube.NewMetadataFetcher(cfg.YouTubeAPIKey, log)
		if err != nil {
			return fmt.Errorf("failed to create YouTube client: %w", err)
		}
		unifier := youtube.NewUnifier(metadataFetcher, youtube.NewCaptionExtractor(log), log)

		gin.SetMode(gin.ReleaseMode)
		srv := server.New(unifier, usageService, log)

		log.Info("starting server", zap.String("address", cfg.ServerAddr))
		if err := srv.Run(ctx, cfg.ServerAddr); err != nil {
			return fmt.Errorf("server error: %w", err)
		}

		log.Info("server stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
