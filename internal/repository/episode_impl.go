package repository

import (
	"context"
)

// episodeRepository implements EpisodeRepository using PostgreSQL
type episodeRepository struct {
	pool Pool
}

// NewEpisodeRepository creates a new instance of EpisodeRepository
func NewEpisodeRepository(pool Pool) EpisodeRepository {
	return &episodeRepository{
		pool: pool,
	}
}

// MonthlyUsage recomputes usage from episodes created in the given month.
// Minutes are rounded up per episode, matching how usage was charged when
// each episode was processed.
func (r *episodeRepository) MonthlyUsage(ctx context.Context, userID, month string) (int, int, error) {
	sql := `SELECT
	COALESCE(SUM(CEIL(duration_seconds / 60.0)), 0)::int,
	COALESCE(SUM(gpt_prompts_used), 0)::int
FROM episodes
WHERE user_id = $1 AND to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM') = $2`

	row := r.pool.QueryRow(ctx, sql, userID, month)

	var minutes, gptPrompts int
	if err := row.Scan(&minutes, &gptPrompts); err != nil {
		return 0, 0, handlePostgreSQLError(err, "failed to recompute usage from episodes")
	}

	return minutes, gptPrompts, nil
}
