package repository

import (
	"context"

	"github.com/showscribe/showscribe/internal/model"
)

// UsageRepository defines operations for the per-(user, month) usage counters.
type UsageRepository interface {
	// GetForMonth retrieves the usage row for a user and month key.
	// Returns a CodeNotFound error when no usage has been recorded yet.
	GetForMonth(ctx context.Context, userID, month string) (*model.UsageRow, error)

	// AddUsage additively increments the counters for a user and month.
	// The increment is a single atomic upsert so concurrent requests from
	// the same user cannot lose updates.
	AddUsage(ctx context.Context, userID, month string, delta model.UsageDelta) error
}
