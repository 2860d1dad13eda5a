package service

import (
	"context"
	"errors"
	"math"
	"strconv"
	"time"

	dom "github.com/AntonioSTO/water-tracking-app/internal/domain"
	"github.com/AntonioSTO/water-tracking-app/internal/repo"

	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/singleflight"

	"github.com/AntonioSTO/water-tracking-app/internal/cache"
)

var ErrNotFound = errors.New("not found")

// WaterService reads and updates per-user water ledgers and derives
// statistics from them.
type WaterService struct {
	users repo.UserRepo
	repo  repo.WaterRepo
	cache *cache.WaterCache
	sf    singleflight.Group
	now   func() time.Time
}

// NewWaterService creates a WaterService. If c is nil, caching is disabled.
func NewWaterService(users repo.UserRepo, r repo.WaterRepo, c *cache.WaterCache) *WaterService {
	return &WaterService{users: users, repo: r, cache: c, now: time.Now}
}

// Get returns the user's current ledger.
func (s *WaterService) Get(ctx context.Context, userID int64) (dom.Ledger, error) {
	if s.cache != nil {
		key := "ledger:" + strconv.FormatInt(userID, 10)
		v, err, _ := s.sf.Do(key, func() (interface{}, error) {
			if led, err := s.cache.GetLedger(ctx, userID); err == nil && led != nil {
				return *led, nil
			}
			led, err := s.getFromRepo(ctx, userID)
			if err != nil {
				return nil, err
			}
			_ = s.cache.SetLedger(ctx, led)
			return led, nil
		})
		if err != nil {
			return dom.Ledger{}, err
		}
		return v.(dom.Ledger), nil
	}
	return s.getFromRepo(ctx, userID)
}

// Update applies an optional consumed/goal change to the user's
// ledger. Nil inputs leave the stored field unchanged. Reads the
// current row, applies the tracking rules against today's date, and
// writes the row back; last write wins.
func (s *WaterService) Update(ctx context.Context, userID int64, consumed, goal *int) (dom.Ledger, error) {
	led, err := s.getFromRepo(ctx, userID)
	if err != nil {
		return dom.Ledger{}, err
	}
	applyUpdate(&led, consumed, goal, s.now())
	out, err := s.repo.Update(ctx, led)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Ledger{}, ErrNotFound
		}
		return dom.Ledger{}, err
	}
	s.invalidateCache(ctx, userID)
	return out, nil
}

// Statistics derives lifetime aggregates for the user.
func (s *WaterService) Statistics(ctx context.Context, userID int64) (dom.Statistics, error) {
	if s.cache != nil {
		key := "stats:" + strconv.FormatInt(userID, 10)
		v, err, _ := s.sf.Do(key, func() (interface{}, error) {
			if st, err := s.cache.GetStats(ctx, userID); err == nil && st != nil {
				return *st, nil
			}
			st, err := s.computeFromRepo(ctx, userID)
			if err != nil {
				return nil, err
			}
			_ = s.cache.SetStats(ctx, userID, st)
			return st, nil
		})
		if err != nil {
			return dom.Statistics{}, err
		}
		return v.(dom.Statistics), nil
	}
	return s.computeFromRepo(ctx, userID)
}

func (s *WaterService) getFromRepo(ctx context.Context, userID int64) (dom.Ledger, error) {
	led, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Ledger{}, ErrNotFound
		}
		return dom.Ledger{}, err
	}
	return led, nil
}

func (s *WaterService) computeFromRepo(ctx context.Context, userID int64) (dom.Statistics, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Statistics{}, ErrNotFound
		}
		return dom.Statistics{}, err
	}
	led, err := s.getFromRepo(ctx, userID)
	if err != nil {
		return dom.Statistics{}, err
	}
	return computeStatistics(u, led, s.now()), nil
}

func (s *WaterService) invalidateCache(ctx context.Context, userID int64) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, userID)
	}
}

// applyUpdate mutates led according to the tracking rules, in order:
// apply the optional field updates, accumulate positive consumption
// deltas into the lifetime total (a manual reset never reduces it),
// then credit the streak if the goal was crossed in this update and
// has not already been credited today. The goal check uses the
// post-update goal. The final best-streak check mirrors the original
// behavior of re-applying max(best_streak, streak) on every update.
func applyUpdate(led *dom.Ledger, consumed, goal *int, today time.Time) {
	prev := led.Consumed
	if consumed != nil {
		led.Consumed = *consumed
	}
	if goal != nil {
		led.Goal = *goal
	}

	if added := led.Consumed - prev; added > 0 {
		led.LifetimeConsumed += int64(added)
	}

	goalJustReached := prev < led.Goal && led.Consumed >= led.Goal
	if goalJustReached && !sameDate(led.LastGoalDate, today) {
		led.Streak++
		d := startOfDay(today)
		led.LastGoalDate = &d
	}

	if led.Streak > led.BestStreak {
		led.BestStreak = led.Streak
	}
}

// computeStatistics derives aggregates from the ledger. Days since
// registration is counted on server-local calendar dates, inclusive
// of the registration day, so the denominator is always >= 1.
func computeStatistics(u dom.User, led dom.Ledger, today time.Time) dom.Statistics {
	start := startOfDay(u.CreatedAt.Local())
	end := startOfDay(today.Local())
	days := int(math.Round(end.Sub(start).Hours()/24)) + 1
	if days < 1 {
		days = 1
	}
	avg := int(math.Round(float64(led.LifetimeConsumed) / float64(days)))
	return dom.Statistics{
		LifetimeConsumed:        led.LifetimeConsumed,
		AverageDailyConsumption: avg,
		DaysSinceRegistration:   days,
		BestStreak:              led.BestStreak,
		CurrentGoal:             led.Goal,
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func sameDate(d *time.Time, t time.Time) bool {
	if d == nil {
		return false
	}
	y1, m1, day1 := d.Date()
	y2, m2, day2 := t.Date()
	return y1 == y2 && m1 == m2 && day1 == day2
}
