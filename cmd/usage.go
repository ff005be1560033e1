package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/showscribe/showscribe/internal/config"
	"github.com/showscribe/showscribe/internal/logger"
	"github.com/showscribe/showscribe/internal/repository"
	"github.com/showscribe/showscribe/internal/service"
)

// usageCmd represents the usage command
var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Usage ledger operations",
	Long:  `Inspect and check per-user monthly usage against plan limits.`,
}

// usageShowCmd shows the current month's usage for a user
var usageShowCmd = &cobra.Command{
	Use:   "show [USER_ID]",
	Short: "Show current month usage for a user",
	Long:  `Display the user's plan limits and current usage counters for this month.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID := args[0]

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		usageService, cleanup, err := newUsageService(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		entry := usageService.GetCurrentUsage(ctx, userID)

		output, err := json.MarshalIndent(entry, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format result: %w", err)
		}

		fmt.Println(string(output))
		return nil
	},
}

// usageCheckCmd checks whether a video of a given length fits the user's quota
var usageCheckCmd = &cobra.Command{
	Use:   "check [USER_ID]",
	Short: "Check whether a user can process a video",
	Long:  `Check whether processing a video of the given duration would fit the user's remaining monthly quota.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID := args[0]
		durationSeconds, _ := cmd.Flags().GetInt("duration")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		usageService, cleanup, err := newUsageService(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		check := usageService.CanProcessYouTubeVideo(ctx, userID, durationSeconds)

		output, err := json.MarshalIndent(check, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format result: %w", err)
		}

		fmt.Println(string(output))
		return nil
	},
}

// newUsageService wires a UsageService against the configured database. The
// returned cleanup closes the pool and flushes the logger.
func newUsageService(ctx context.Context) (service.UsageService, func(), error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	dbPool, err := config.NewDatabasePool(ctx, cfg)
	if err != nil {
		log.Sync()
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	usageService := service.NewUsageService(
		repository.NewUsageRepository(dbPool),
		repository.NewSubscriptionRepository(dbPool),
		repository.NewEpisodeRepository(dbPool),
		nil,
		log,
	)

	cleanup := func() {
		dbPool.Close()
		log.Sync()
	}
	return usageService, cleanup, nil
}

func init() {
	usageCheckCmd.Flags().Int("duration", 0, "Video duration in seconds")

	usageCmd.AddCommand(usageShowCmd)
	usageCmd.AddCommand(usageCheckCmd)
	rootCmd.AddCommand(usageCmd)
}
