package engine

import (
	"context"
	"fmt"
	"time"

	"example.com/minutes/internal/domain"
	"example.com/minutes/internal/observability"
)

// Store captures the read capabilities the engine consumes from persistence.
type Store interface {
	// UserTimezone resolves the user's IANA zone name, or domain.ErrUnknownUser.
	UserTimezone(ctx context.Context, userID int64) (string, error)
	// ActivityEvents returns the user's events for one activity overlapping w.
	ActivityEvents(ctx context.Context, userID, activityID int64, w Window) ([]domain.Event, error)
	// NonSleepEvents returns the user's events overlapping w for every
	// activity except sleep.
	NonSleepEvents(ctx context.Context, userID int64, w Window) ([]domain.Event, error)
	// RecentSleepEvents returns up to limit sleep events ordered by end time
	// descending. SleepHours bucketing depends on that order.
	RecentSleepEvents(ctx context.Context, userID int64, limit int) ([]domain.Event, error)
	// ActivityNames maps the user's activity ids to display names.
	ActivityNames(ctx context.Context, userID int64) (map[int64]string, error)
	// ActivityIDByName resolves a display name, or domain.ErrActivityNotFound.
	ActivityIDByName(ctx context.Context, userID int64, name string) (int64, error)
	// GoodActivityIDs returns the ids of the user's good-classified activities.
	GoodActivityIDs(ctx context.Context, userID int64) (map[int64]struct{}, error)
	// HasEventWithin reports whether any event is fully contained in w.
	HasEventWithin(ctx context.Context, userID int64, w Window) (bool, error)
	// HasAnyEvents reports whether the user has logged anything at all.
	HasAnyEvents(ctx context.Context, userID int64) (bool, error)
	// HasEventStartingAfter reports whether any event starts after t.
	HasEventStartingAfter(ctx context.Context, userID int64, t time.Time) (bool, error)
	// AccountCreatedAt returns the account-creation instant, or domain.ErrUnknownUser.
	AccountCreatedAt(ctx context.Context, userID int64) (time.Time, error)
}

// Engine answers time-bucketed aggregation queries over a user's events,
// expressed in the user's local calendar. It holds no state beyond the store
// handle; calls for different users are safe to run in parallel.
type Engine struct {
	store Store
}

// New constructs an Engine over the given store.
func New(store Store) *Engine {
	return &Engine{store: store}
}

// weekDays is the span of the weekly chart series.
const weekDays = 7

func (e *Engine) location(ctx context.Context, userID int64) (*time.Location, error) {
	tz, err := e.store.UserTimezone(ctx, userID)
	if err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidTimezone, tz)
	}
	return loc, nil
}

// MinutesOverPeriod totals the minutes spent on one activity during the
// trailing days-day window ending now. days == 0 means all time.
func (e *Engine) MinutesOverPeriod(ctx context.Context, userID, activityID int64, days int, now time.Time) (int, error) {
	observability.RecordQuery("minutes_over_period")
	loc, err := e.location(ctx, userID)
	if err != nil {
		return 0, err
	}
	w := TrailingWindow(days, now, loc)
	events, err := e.store.ActivityEvents(ctx, userID, activityID, w)
	if err != nil {
		return 0, err
	}
	return AccumulateMinutes(w, events), nil
}

// Distribution maps activity names to clipped minutes over the trailing
// days-day period, sleep excluded. Activities with no minutes are omitted.
// The window runs to the end of today's final day rather than now, so a
// whole-day pie stays stable as the day progresses.
func (e *Engine) Distribution(ctx context.Context, userID int64, days int, now time.Time) (map[string]int, error) {
	observability.RecordQuery("distribution")
	loc, err := e.location(ctx, userID)
	if err != nil {
		return nil, err
	}

	w := TrailingWindow(days, now, loc)
	if days > 0 {
		w.End = w.Start.Add(time.Duration(days) * 24 * time.Hour)
	}

	names, err := e.store.ActivityNames(ctx, userID)
	if err != nil {
		return nil, err
	}
	events, err := e.store.NonSleepEvents(ctx, userID, w)
	if err != nil {
		return nil, err
	}

	dist := make(map[string]int)
	for _, ev := range events {
		m := w.ClipMinutes(ev.Start, ev.End)
		if m == 0 {
			continue
		}
		name, ok := names[ev.ActivityID]
		if !ok {
			continue
		}
		dist[name] += m
	}
	return dist, nil
}

// ActivityMinutesLastWeek produces the weekly bar-chart series for one
// activity: labels and clipped minutes for the 7 local days ending today,
// oldest first.
func (e *Engine) ActivityMinutesLastWeek(ctx context.Context, userID int64, activityName string, now time.Time) ([]string, []int, error) {
	observability.RecordQuery("activity_minutes_last_week")
	loc, err := e.location(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	activityID, err := e.store.ActivityIDByName(ctx, userID, activityName)
	if err != nil {
		return nil, nil, err
	}

	dates := DatesEnding(DateOf(now.In(loc)), weekDays)
	week := Window{
		Start: DayWindow(dates[0], loc).Start,
		End:   DayWindow(dates[len(dates)-1], loc).End,
	}
	events, err := e.store.ActivityEvents(ctx, userID, activityID, week)
	if err != nil {
		return nil, nil, err
	}

	labels, minutes := DailyMinutes(dates, loc, events)
	return labels, minutes, nil
}

// SleepHoursLastWeek produces the weekly sleep series for the 7 local days
// ending yesterday, oldest first. Each night's whole duration lands on the
// date before the local day it ended.
func (e *Engine) SleepHoursLastWeek(ctx context.Context, userID int64, now time.Time) ([]string, []float64, error) {
	observability.RecordQuery("sleep_hours_last_week")
	loc, err := e.location(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	yesterday := DateOf(now.In(loc)).AddDays(-1)
	dates := DatesEnding(yesterday, weekDays)

	sleeps, err := e.store.RecentSleepEvents(ctx, userID, weekDays)
	if err != nil {
		return nil, nil, err
	}

	labels, hours := SleepHours(dates, loc, sleeps)
	return labels, hours, nil
}

// QualityScoresLastWeek produces the daily quality series for the 7 local
// days ending today, oldest first.
func (e *Engine) QualityScoresLastWeek(ctx context.Context, userID int64, now time.Time) ([]string, []int, error) {
	observability.RecordQuery("quality_scores_last_week")
	loc, err := e.location(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	dates := DatesEnding(DateOf(now.In(loc)), weekDays)
	week := Window{
		Start: DayWindow(dates[0], loc).Start,
		End:   DayWindow(dates[len(dates)-1], loc).End,
	}

	events, err := e.store.NonSleepEvents(ctx, userID, week)
	if err != nil {
		return nil, nil, err
	}
	goodIDs, err := e.store.GoodActivityIDs(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	labels, scores := QualityScores(dates, loc, events, goodIDs)
	return labels, scores, nil
}

// LoggedInPastDays reports whether the user has logged any event starting
// within the last days*24h before now.
func (e *Engine) LoggedInPastDays(ctx context.Context, userID int64, days int, now time.Time) (bool, error) {
	return e.store.HasEventStartingAfter(ctx, userID, now.UTC().Add(-time.Duration(days)*24*time.Hour))
}

// HasAnyEvents reports whether the user has logged at least one event.
func (e *Engine) HasAnyEvents(ctx context.Context, userID int64) (bool, error) {
	return e.store.HasAnyEvents(ctx, userID)
}

// DaysSinceAccountCreation counts whole UTC days from the creation date's
// midnight to now, plus one so brand-new accounts report day 1.
func (e *Engine) DaysSinceAccountCreation(ctx context.Context, userID int64, now time.Time) (int, error) {
	created, err := e.store.AccountCreatedAt(ctx, userID)
	if err != nil {
		return 0, err
	}
	midnight := created.UTC().Truncate(24 * time.Hour)
	return int(now.UTC().Sub(midnight).Hours()/24) + 1, nil
}

// LocalDate returns today's calendar date in the user's timezone.
func (e *Engine) LocalDate(ctx context.Context, userID int64, now time.Time) (Date, error) {
	loc, err := e.location(ctx, userID)
	if err != nil {
		return Date{}, err
	}
	return DateOf(now.In(loc)), nil
}
