package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/showscribe/showscribe/internal/config"
	"github.com/showscribe/showscribe/internal/logger"
	"github.com/showscribe/showscribe/internal/model"
	"github.com/showscribe/showscribe/internal/repository"
	"github.com/showscribe/showscribe/internal/service"
	"github.com/showscribe/showscribe/internal/youtube"
)

// videoCmd represents the video command
var videoCmd = &cobra.Command{
	Use:   "video",
	Short: "YouTube video operations",
	Long:  `Operations for processing YouTube videos.`,
}

// videoProcessCmd fetches metadata and captions for a video in one pass
var videoProcessCmd = &cobra.Command{
	Use:   "process [VIDEO_URL]",
	Short: "Process a YouTube video",
	Long: `Fetch metadata and captions for a YouTube video concurrently and
merge them into a single result. When --user is given, the video is
checked against the user's plan limits and recorded in the usage ledger.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		videoURL := args[0]

		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

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

		// Create the unified processor
		metadataFetcher, err := youtube.NewMetadataFetcher(cfg.YouTubeAPIKey, log)
		if err != nil {
			return fmt.Errorf("failed to create YouTube client: %w", err)
		}
		unifier := youtube.NewUnifier(metadataFetcher, youtube.NewCaptionExtractor(log), log)

		lang, _ := cmd.Flags().GetString("lang")
		userID, _ := cmd.Flags().GetString("user")

		result := unifier.Process(ctx, model.UnifiedRequest{
			YouTubeURL: videoURL,
			Lang:       lang,
			UserID:     userID,
		})

		// Record usage when a user is given and processing succeeded
		if result.Success && userID != "" {
			dbPool, err := config.NewDatabasePool(ctx, cfg)
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

			duration := 0
			if result.Metadata != nil {
				duration = result.Metadata.Duration
			}

			check := usageService.CanProcessYouTubeVideo(ctx, userID, duration)
			if !check.CanProcess {
				fmt.Println(check.Reason)
				return nil
			}
			usageService.UpdateUsageAfterYouTubeVideo(ctx, userID, duration)
		}

		// Display result as JSON
		output, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format result: %w", err)
		}

		fmt.Println(string(output))
		return nil
	},
}

// videoCaptionsCmd fetches only the caption track for a video
var videoCaptionsCmd = &cobra.Command{
	Use:   "captions [VIDEO_URL]",
	Short: "Fetch captions for a YouTube video",
	Long:  `Fetch the caption track for a YouTube video without metadata.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		videoURL := args[0]

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		videoID := youtube.ExtractVideoID(videoURL)
		if videoID == "" {
			return fmt.Errorf("invalid YouTube URL: %s", videoURL)
		}

		cfg, err := config.NewConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		log, err := logger.New(cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer log.Sync()

		lang, _ := cmd.Flags().GetString("lang")

		extractor := youtube.NewCaptionExtractor(log)
		captions, err := extractor.ExtractCaptions(ctx, videoID, lang)
		if err != nil {
			return fmt.Errorf("failed to fetch captions: %w", err)
		}

		output, err := json.MarshalIndent(captions, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format result: %w", err)
		}

		fmt.Printf("Found %d caption segment(s):\n%s\n", len(captions), string(output))
		return nil
	},
}

func init() {
	videoProcessCmd.Flags().String("lang", "", "Caption language code (default \"en\", \"auto\" for auto-generated)")
	videoProcessCmd.Flags().String("user", "", "User ID for quota enforcement and usage recording")

	videoCaptionsCmd.Flags().String("lang", "", "Caption language code (default \"en\", \"auto\" for auto-generated)")

	videoCmd.AddCommand(videoProcessCmd)
	videoCmd.AddCommand(videoCaptionsCmd)
	rootCmd.AddCommand(videoCmd)
}
