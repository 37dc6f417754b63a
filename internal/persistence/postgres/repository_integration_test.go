//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"example.com/minutes/internal/domain"
	"example.com/minutes/internal/engine"
)

func newTestPool(t *testing.T, ctx context.Context) *pgxpool.Pool {
	t.Helper()

	pg, err := postgrescontainer.RunContainer(ctx,
		postgrescontainer.WithDatabase("minutes"),
		postgrescontainer.WithUsername("minutes"),
		postgrescontainer.WithPassword("minutes"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, waitForDatabase(ctx, connStr))

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	require.NoError(t, EnsureSchema(ctx, pool))
	return pool
}

func waitForDatabase(ctx context.Context, connStr string) error {
	deadline := time.Now().Add(30 * time.Second)
	for {
		pool, err := pgxpool.New(ctx, connStr)
		if err == nil {
			err = pool.Ping(ctx)
			pool.Close()
			if err == nil {
				return nil
			}
		}
		if time.Now().After(deadline) {
			return err
		}
		time.Sleep(time.Second)
	}
}

func insertUser(t *testing.T, ctx context.Context, repo *Repository, timezone string) int64 {
	t.Helper()
	id, err := repo.CreateUser(ctx, domain.User{
		Username:  uuid.NewString(),
		Timezone:  timezone,
		CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	return id
}

func TestRepositoryUserLookups(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newTestPool(t, ctx))

	userID := insertUser(t, ctx, repo, "Australia/Sydney")

	tz, err := repo.UserTimezone(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, "Australia/Sydney", tz)

	_, err = repo.UserTimezone(ctx, userID+1000)
	require.ErrorIs(t, err, domain.ErrUnknownUser)

	created, err := repo.AccountCreatedAt(ctx, userID)
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().UTC(), created, time.Minute)
}

func TestRepositoryDuplicateActivityIsAtomic(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newTestPool(t, ctx))

	userID := insertUser(t, ctx, repo, "UTC")

	first, err := repo.CreateActivity(ctx, domain.Activity{UserID: userID, Name: "Study", IsGood: true})
	require.NoError(t, err)
	require.Greater(t, first, int64(0), "activity ids start above the sleep sentinel")

	_, err = repo.CreateActivity(ctx, domain.Activity{UserID: userID, Name: "Study", IsGood: false})
	require.ErrorIs(t, err, domain.ErrDuplicateActivity)

	// A different user may reuse the name.
	otherID := insertUser(t, ctx, repo, "UTC")
	_, err = repo.CreateActivity(ctx, domain.Activity{UserID: otherID, Name: "Study", IsGood: true})
	require.NoError(t, err)
}

func TestRepositoryEventQueries(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newTestPool(t, ctx))

	userID := insertUser(t, ctx, repo, "UTC")
	actID, err := repo.CreateActivity(ctx, domain.Activity{UserID: userID, Name: "Study", IsGood: true})
	require.NoError(t, err)

	day := time.Date(2025, time.April, 18, 0, 0, 0, 0, time.UTC)
	_, err = repo.CreateEvent(ctx, domain.Event{
		UserID:     userID,
		ActivityID: actID,
		Start:      day.Add(9 * time.Hour),
		End:        day.Add(11 * time.Hour),
	})
	require.NoError(t, err)
	_, err = repo.CreateEvent(ctx, domain.Event{
		UserID:     userID,
		ActivityID: domain.SleepActivityID,
		Start:      day.Add(-1 * time.Hour),
		End:        day.Add(7 * time.Hour),
	})
	require.NoError(t, err)

	window := engine.Window{Start: day, End: day.AddDate(0, 0, 1)}

	events, err := repo.ActivityEvents(ctx, userID, actID, window)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, actID, events[0].ActivityID)

	nonSleep, err := repo.NonSleepEvents(ctx, userID, window)
	require.NoError(t, err)
	require.Len(t, nonSleep, 1)

	sleeps, err := repo.RecentSleepEvents(ctx, userID, 7)
	require.NoError(t, err)
	require.Len(t, sleeps, 1)
	require.Equal(t, domain.SleepActivityID, sleeps[0].ActivityID)

	contained, err := repo.HasEventWithin(ctx, userID, window)
	require.NoError(t, err)
	require.True(t, contained, "the study event is fully inside the day")

	nightOnly := engine.Window{Start: day.Add(12 * time.Hour), End: day.AddDate(0, 0, 1)}
	contained, err = repo.HasEventWithin(ctx, userID, nightOnly)
	require.NoError(t, err)
	require.False(t, contained)
}

func TestRepositoryRejectsInvertedInterval(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newTestPool(t, ctx))

	userID := insertUser(t, ctx, repo, "UTC")

	now := time.Now().UTC()
	_, err := repo.CreateEvent(ctx, domain.Event{
		UserID:     userID,
		ActivityID: domain.SleepActivityID,
		Start:      now,
		End:        now.Add(-time.Hour),
	})
	require.ErrorIs(t, err, domain.ErrInvalidInterval)
}

func TestRepositoryEndToEndWithEngine(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newTestPool(t, ctx))

	userID := insertUser(t, ctx, repo, "UTC")
	actID, err := repo.CreateActivity(ctx, domain.Activity{UserID: userID, Name: "Study", IsGood: true})
	require.NoError(t, err)

	now := time.Now().UTC()
	_, err = repo.CreateEvent(ctx, domain.Event{
		UserID:     userID,
		ActivityID: actID,
		Start:      now.Add(-2 * time.Hour),
		End:        now.Add(-1 * time.Hour),
	})
	require.NoError(t, err)

	eng := engine.New(repo)

	total, err := eng.MinutesOverPeriod(ctx, userID, actID, 0, now)
	require.NoError(t, err)
	require.Equal(t, 60, total)

	dist, err := eng.Distribution(ctx, userID, 7, now)
	require.NoError(t, err)
	require.Equal(t, map[string]int{"Study": 60}, dist)
}
