package model

// UnlimitedQuota is the sentinel for plans without a numeric limit.
const UnlimitedQuota = -1

// PlanLimits describes what a subscription plan allows per calendar month.
type PlanLimits struct {
	Name          string `json:"planName"`
	MaxMinutes    int    `json:"maxMinutes"`    // -1 means unlimited
	MaxGptPrompts int    `json:"maxGptPrompts"` // -1 means unlimited
}

// Plan names known to the usage ledger.
const (
	PlanFree    = "free"
	PlanCreator = "creator"
	PlanPro     = "pro"
)

// planCatalog maps plan names to their monthly limits. Unknown plan names
// resolve to Free limits.
var planCatalog = map[string]PlanLimits{
	PlanFree:    {Name: PlanFree, MaxMinutes: 30, MaxGptPrompts: 10},
	PlanCreator: {Name: PlanCreator, MaxMinutes: 300, MaxGptPrompts: 100},
	PlanPro:     {Name: PlanPro, MaxMinutes: UnlimitedQuota, MaxGptPrompts: UnlimitedQuota},
}

// LimitsForPlan returns the limits for a plan name, falling back to Free.
func LimitsForPlan(name string) PlanLimits {
	if limits, ok := planCatalog[name]; ok {
		return limits
	}
	return planCatalog[PlanFree]
}

// UsageLedgerEntry is the per-(user, calendar-month) usage view: limits
// merged with current counters. Created implicitly with zero usage on first
// read of a month; counters only ever grow.
type UsageLedgerEntry struct {
	PlanName          string `json:"planName"`
	MaxMinutes        int    `json:"maxMinutes"`
	MaxGptPrompts     int    `json:"maxGptPrompts"`
	CurrentMinutes    int    `json:"currentMinutes"`
	CurrentGptPrompts int    `json:"currentGptPrompts"`
}

// UsageRow is the durable counter row keyed by (user, month).
type UsageRow struct {
	UserID     string `json:"user_id" db:"user_id"`
	Month      string `json:"month" db:"month"` // "2006-01", UTC
	Minutes    int    `json:"minutes_used" db:"minutes_used"`
	GptPrompts int    `json:"gpt_prompts_used" db:"gpt_prompts_used"`
}

// UsageDelta is an additive update to the usage counters.
type UsageDelta struct {
	MinutesUsed    int `json:"minutesUsed,omitempty"`
	GptPromptsUsed int `json:"gptPromptsUsed,omitempty"`
}

// Episode is a processed piece of content stored locally. Episodes are the
// recompute source for the monotonic-display check: usage rebuilt from
// episodes can shrink when episodes are deleted, so displayed usage takes
// the max of the durable counters and the episode-derived value.
type Episode struct {
	ID              string `json:"id" db:"id"`
	UserID          string `json:"user_id" db:"user_id"`
	Title           string `json:"title" db:"title"`
	Source          string `json:"source" db:"source"`
	DurationSeconds int    `json:"duration_seconds" db:"duration_seconds"`
	GptPromptsUsed  int    `json:"gpt_prompts_used" db:"gpt_prompts_used"`
}

// Subscription links a user to a plan.
type Subscription struct {
	UserID   string `json:"user_id" db:"user_id"`
	PlanName string `json:"plan_name" db:"plan_name"`
	Status   string `json:"status" db:"status"`
}
