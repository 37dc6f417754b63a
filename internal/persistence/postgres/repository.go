// Package postgres provides the pgx-backed store consumed by the engine and
// the write-side service.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/minutes/internal/domain"
	"example.com/minutes/internal/engine"
	"example.com/minutes/internal/observability"
)

const uniqueViolation = "23505"

// Repository implements both the engine's read store and the domain
// service's write repository over a pgx pool.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateUser inserts a user row and returns its id.
func (r *Repository) CreateUser(ctx context.Context, user domain.User) (int64, error) {
	const stmt = `INSERT INTO users (username, timezone, created_at)
		VALUES ($1, $2, $3) RETURNING user_id`

	var id int64
	err := r.pool.QueryRow(ctx, stmt, user.Username, user.Timezone, user.CreatedAt).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// CreateActivity inserts an activity row. The (user_id, name) uniqueness
// constraint makes the duplicate check atomic with the insert; its violation
// surfaces as domain.ErrDuplicateActivity.
func (r *Repository) CreateActivity(ctx context.Context, activity domain.Activity) (int64, error) {
	const stmt = `INSERT INTO activities (user_id, name, is_good)
		VALUES ($1, $2, $3) RETURNING activity_id`

	var id int64
	err := r.pool.QueryRow(ctx, stmt, activity.UserID, activity.Name, activity.IsGood).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return 0, domain.ErrDuplicateActivity
		}
		return 0, err
	}
	return id, nil
}

// CreateEvent inserts a write-once event row.
func (r *Repository) CreateEvent(ctx context.Context, event domain.Event) (int64, error) {
	if !event.End.After(event.Start) {
		return 0, domain.ErrInvalidInterval
	}

	const stmt = `INSERT INTO events (user_id, activity_id, start_at, end_at)
		VALUES ($1, $2, $3, $4) RETURNING event_id`

	var id int64
	err := r.pool.QueryRow(ctx, stmt, event.UserID, event.ActivityID, event.Start, event.End).Scan(&id)
	if err != nil {
		return 0, err
	}
	observability.RecordEventPersisted(event.End)
	return id, nil
}

// UserTimezone resolves the user's IANA zone name.
func (r *Repository) UserTimezone(ctx context.Context, userID int64) (string, error) {
	const query = `SELECT timezone FROM users WHERE user_id = $1`

	var tz string
	err := r.pool.QueryRow(ctx, query, userID).Scan(&tz)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", domain.ErrUnknownUser
	}
	if err != nil {
		return "", err
	}
	return tz, nil
}

// AccountCreatedAt returns the user's account-creation instant.
func (r *Repository) AccountCreatedAt(ctx context.Context, userID int64) (time.Time, error) {
	const query = `SELECT created_at FROM users WHERE user_id = $1`

	var created time.Time
	err := r.pool.QueryRow(ctx, query, userID).Scan(&created)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, domain.ErrUnknownUser
	}
	if err != nil {
		return time.Time{}, err
	}
	return created.UTC(), nil
}

// ActivityEvents returns the user's events for one activity overlapping w.
func (r *Repository) ActivityEvents(ctx context.Context, userID, activityID int64, w engine.Window) ([]domain.Event, error) {
	const query = `SELECT event_id, user_id, activity_id, start_at, end_at
		FROM events
		WHERE user_id = $1 AND activity_id = $2 AND end_at > $3 AND start_at < $4
		ORDER BY start_at`

	rows, err := r.pool.Query(ctx, query, userID, activityID, w.Start, w.End)
	if err != nil {
		return nil, err
	}
	return scanEvents(rows)
}

// NonSleepEvents returns the user's events overlapping w for every activity
// except the sleep pseudo-activity.
func (r *Repository) NonSleepEvents(ctx context.Context, userID int64, w engine.Window) ([]domain.Event, error) {
	const query = `SELECT event_id, user_id, activity_id, start_at, end_at
		FROM events
		WHERE user_id = $1 AND activity_id <> $2 AND end_at > $3 AND start_at < $4
		ORDER BY start_at`

	rows, err := r.pool.Query(ctx, query, userID, domain.SleepActivityID, w.Start, w.End)
	if err != nil {
		return nil, err
	}
	return scanEvents(rows)
}

// RecentSleepEvents returns up to limit sleep events, newest end first.
func (r *Repository) RecentSleepEvents(ctx context.Context, userID int64, limit int) ([]domain.Event, error) {
	const query = `SELECT event_id, user_id, activity_id, start_at, end_at
		FROM events
		WHERE user_id = $1 AND activity_id = $2
		ORDER BY end_at DESC
		LIMIT $3`

	rows, err := r.pool.Query(ctx, query, userID, domain.SleepActivityID, limit)
	if err != nil {
		return nil, err
	}
	return scanEvents(rows)
}

// ActivityNames maps the user's activity ids to display names.
func (r *Repository) ActivityNames(ctx context.Context, userID int64) (map[int64]string, error) {
	const query = `SELECT activity_id, name FROM activities WHERE user_id = $1`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make(map[int64]string)
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		names[id] = name
	}
	return names, rows.Err()
}

// ActivityIDByName resolves a display name owned by the user.
func (r *Repository) ActivityIDByName(ctx context.Context, userID int64, name string) (int64, error) {
	const query = `SELECT activity_id FROM activities WHERE user_id = $1 AND name = $2`

	var id int64
	err := r.pool.QueryRow(ctx, query, userID, name).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, domain.ErrActivityNotFound
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

// GoodActivityIDs returns the ids of the user's good-classified activities.
func (r *Repository) GoodActivityIDs(ctx context.Context, userID int64) (map[int64]struct{}, error) {
	const query = `SELECT activity_id FROM activities WHERE user_id = $1 AND is_good`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[int64]struct{})
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}

// HasEventWithin reports whether any event is fully contained in w.
func (r *Repository) HasEventWithin(ctx context.Context, userID int64, w engine.Window) (bool, error) {
	const query = `SELECT EXISTS (
		SELECT 1 FROM events
		WHERE user_id = $1 AND start_at >= $2 AND end_at <= $3
	)`

	var found bool
	if err := r.pool.QueryRow(ctx, query, userID, w.Start, w.End).Scan(&found); err != nil {
		return false, err
	}
	return found, nil
}

// HasAnyEvents reports whether the user has logged at least one event.
func (r *Repository) HasAnyEvents(ctx context.Context, userID int64) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM events WHERE user_id = $1)`

	var found bool
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&found); err != nil {
		return false, err
	}
	return found, nil
}

// HasEventStartingAfter reports whether any event starts after t.
func (r *Repository) HasEventStartingAfter(ctx context.Context, userID int64, t time.Time) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM events WHERE user_id = $1 AND start_at > $2)`

	var found bool
	if err := r.pool.QueryRow(ctx, query, userID, t).Scan(&found); err != nil {
		return false, err
	}
	return found, nil
}

func scanEvents(rows pgx.Rows) ([]domain.Event, error) {
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var ev domain.Event
		if err := rows.Scan(&ev.ID, &ev.UserID, &ev.ActivityID, &ev.Start, &ev.End); err != nil {
			return nil, err
		}
		ev.Start = ev.Start.UTC()
		ev.End = ev.End.UTC()
		events = append(events, ev)
	}
	return events, rows.Err()
}
