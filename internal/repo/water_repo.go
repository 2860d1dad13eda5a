package repo

import (
	"context"

	dom "github.com/AntonioSTO/water-tracking-app/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// WaterRepo provides water ledger persistence.
type WaterRepo interface {
	GetByUser(ctx context.Context, userID int64) (dom.Ledger, error)
	Update(ctx context.Context, led dom.Ledger) (dom.Ledger, error)
}

// PGWaterRepo implements WaterRepo with Postgres.
type PGWaterRepo struct {
	db *pgxpool.Pool
}

// NewPGWaterRepo returns a new PGWaterRepo.
func NewPGWaterRepo(db *pgxpool.Pool) *PGWaterRepo {
	return &PGWaterRepo{db: db}
}

// GetByUser returns the ledger owned by the given user.
func (r *PGWaterRepo) GetByUser(ctx context.Context, userID int64) (dom.Ledger, error) {
	query := `
		SELECT user_id, consumed, goal, streak, best_streak, last_goal_date, lifetime_consumed
		FROM water_ledgers WHERE user_id = $1`
	var l dom.Ledger
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&l.UserID, &l.Consumed, &l.Goal, &l.Streak, &l.BestStreak,
		&l.LastGoalDate, &l.LifetimeConsumed,
	)
	return l, err
}

// Update writes back the full ledger state and returns the stored row.
// Last write wins; the row carries no version column.
func (r *PGWaterRepo) Update(ctx context.Context, led dom.Ledger) (dom.Ledger, error) {
	query := `
		UPDATE water_ledgers
		SET consumed = $2, goal = $3, streak = $4, best_streak = $5,
		    last_goal_date = $6, lifetime_consumed = $7
		WHERE user_id = $1
		RETURNING user_id, consumed, goal, streak, best_streak, last_goal_date, lifetime_consumed`
	var l dom.Ledger
	err := r.db.QueryRow(ctx, query,
		led.UserID, led.Consumed, led.Goal, led.Streak, led.BestStreak,
		led.LastGoalDate, led.LifetimeConsumed,
	).Scan(
		&l.UserID, &l.Consumed, &l.Goal, &l.Streak, &l.BestStreak,
		&l.LastGoalDate, &l.LifetimeConsumed,
	)
	return l, err
}
