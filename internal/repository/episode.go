package repository

import "context"

// EpisodeRepository exposes the locally stored episodes as a recompute
// source for usage. Episode rows can be deleted by users, so values derived
// from them may shrink over time; the usage service reconciles that against
// the durable counters.
type EpisodeRepository interface {
	// MonthlyUsage sums processed minutes (per-episode ceil of seconds)
	// and GPT prompt counts over a user's episodes created in the given
	// month. Returns zeros when the user has no episodes that month.
	MonthlyUsage(ctx context.Context, userID, month string) (minutes, gptPrompts int, err error)
}
