package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	apperrors "github.com/showscribe/showscribe/internal/errors"
	"github.com/showscribe/showscribe/internal/model"
)

// subscriptionRepository implements SubscriptionRepository using PostgreSQL
type subscriptionRepository struct {
	pool Pool
}

// NewSubscriptionRepository creates a new instance of SubscriptionRepository
func NewSubscriptionRepository(pool Pool) SubscriptionRepository {
	return &subscriptionRepository{
		pool: pool,
	}
}

// GetByUserID retrieves the active subscription for a user
func (r *subscriptionRepository) GetByUserID(ctx context.Context, userID string) (*model.Subscription, error) {
	sql := "SELECT user_id, plan_name, status FROM subscriptions WHERE user_id = $1 AND status = 'active'"
	row := r.pool.QueryRow(ctx, sql, userID)

	var sub model.Subscription
	err := row.Scan(&sub.UserID, &sub.PlanName, &sub.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.Wrap(err, apperrors.CodeNotFound, "no active subscription for user")
		}
		return nil, handlePostgreSQLError(err, "failed to get subscription")
	}

	return &sub, nil
}
