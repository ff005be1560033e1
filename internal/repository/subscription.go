package repository

import (
	"context"

	"github.com/showscribe/showscribe/internal/model"
)

// SubscriptionRepository defines operations for plan/subscription lookup.
// Subscription rows are written by the payment-processor webhook handler;
// this core only reads them.
type SubscriptionRepository interface {
	// GetByUserID retrieves the active subscription for a user.
	// Returns a CodeNotFound error when the user has no subscription row.
	GetByUserID(ctx context.Context, userID string) (*model.Subscription, error)
}
