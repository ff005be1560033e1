package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	apperrors "github.com/showscribe/showscribe/internal/errors"
	"github.com/showscribe/showscribe/internal/model"
)

// usageRepository implements UsageRepository using PostgreSQL
type usageRepository struct {
	pool Pool
}

// NewUsageRepository creates a new instance of UsageRepository
func NewUsageRepository(pool Pool) UsageRepository {
	return &usageRepository{
		pool: pool,
	}
}

// GetForMonth retrieves the usage row for a user and month key
func (r *usageRepository) GetForMonth(ctx context.Context, userID, month string) (*model.UsageRow, error) {
	sql := "SELECT user_id, month, minutes_used, gpt_prompts_used FROM usage_ledger WHERE user_id = $1 AND month = $2"
	row := r.pool.QueryRow(ctx, sql, userID, month)

	var usage model.UsageRow
	err := row.Scan(&usage.UserID, &usage.Month, &usage.Minutes, &usage.GptPrompts)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.Wrap(err, apperrors.CodeNotFound, "no usage recorded for this month")
		}
		return nil, handlePostgreSQLError(err, "failed to get usage row")
	}

	return &usage, nil
}

// AddUsage additively increments the counters for a user and month. The
// ON CONFLICT increment keeps concurrent updates from losing writes; the
// counters can only grow through this path.
func (r *usageRepository) AddUsage(ctx context.Context, userID, month string, delta model.UsageDelta) error {
	sql := `INSERT INTO usage_ledger (user_id, month, minutes_used, gpt_prompts_used)
VALUES ($1, $2, $3, $4)
ON CONFLICT (user_id, month)
DO UPDATE SET
	minutes_used = usage_ledger.minutes_used + EXCLUDED.minutes_used,
	gpt_prompts_used = usage_ledger.gpt_prompts_used + EXCLUDED.gpt_prompts_used,
	updated_at = now()`

	_, err := r.pool.Exec(ctx, sql, userID, month, delta.MinutesUsed, delta.GptPromptsUsed)
	if err != nil {
		return handlePostgreSQLError(err, "failed to add usage")
	}
	return nil
}
