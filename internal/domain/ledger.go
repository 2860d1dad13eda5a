package domain

import "time"

// Ledger is the per-user water intake record. Exactly one row per
// user, created in the same transaction as the account.
type Ledger struct {
	UserID           int64
	Consumed         int
	Goal             int
	Streak           int
	BestStreak       int
	LastGoalDate     *time.Time // date the goal was last credited; nil until first reached
	LifetimeConsumed int64
}

// Statistics is the aggregate view derived from a user's ledger.
type Statistics struct {
	LifetimeConsumed        int64
	AverageDailyConsumption int
	DaysSinceRegistration   int
	BestStreak              int
	CurrentGoal             int
}
