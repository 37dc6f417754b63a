package engine

import (
	"context"
	"errors"
	"time"

	"example.com/minutes/internal/domain"
	"example.com/minutes/internal/observability"
)

// Streak counts consecutive local days, ending today, on which the user has
// at least one event fully contained in the day window. Overnight intervals
// crossing local midnight never satisfy a day. Today is a grace day: its
// absence never breaks the streak, since the user can still log before the
// day ends. Scanning walks backward from yesterday and stops at the first
// unlogged day. An unresolvable user scores 0 instead of failing; this
// lenient default is kept for compatibility with existing dashboards.
func (e *Engine) Streak(ctx context.Context, userID int64, now time.Time) (int, error) {
	observability.RecordQuery("streak")
	loc, err := e.location(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownUser) {
			return 0, nil
		}
		return 0, err
	}

	today := DateOf(now.In(loc))
	logged, err := e.store.HasEventWithin(ctx, userID, DayWindow(today, loc))
	if err != nil {
		return 0, err
	}

	streak := 0
	if logged {
		streak = 1
	}

	for offset := 1; ; offset++ {
		day := today.AddDays(-offset)
		logged, err := e.store.HasEventWithin(ctx, userID, DayWindow(day, loc))
		if err != nil {
			return 0, err
		}
		if !logged {
			break
		}
		streak++
	}
	return streak, nil
}

// LoggedToday reports whether the user has an event fully contained in
// today's local day window. Like Streak, an unresolvable user yields false
// rather than an error.
func (e *Engine) LoggedToday(ctx context.Context, userID int64, now time.Time) (bool, error) {
	observability.RecordQuery("logged_today")
	loc, err := e.location(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownUser) {
			return false, nil
		}
		return false, err
	}
	return e.store.HasEventWithin(ctx, userID, DayWindow(DateOf(now.In(loc)), loc))
}
