package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Activity ids are allocated from 1 so id 0 stays free for the implicit
// sleep pseudo-activity, which never gets a row. Events therefore carry no
// foreign key on activity_id.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		user_id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		timezone TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS activities (
		activity_id BIGINT GENERATED ALWAYS AS IDENTITY (START WITH 1) PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users (user_id),
		name TEXT NOT NULL,
		is_good BOOLEAN NOT NULL,
		UNIQUE (user_id, name)
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		event_id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users (user_id),
		activity_id BIGINT NOT NULL,
		start_at TIMESTAMPTZ NOT NULL,
		end_at TIMESTAMPTZ NOT NULL,
		CHECK (start_at < end_at)
	)`,
	`CREATE INDEX IF NOT EXISTS events_user_activity_end_idx
		ON events (user_id, activity_id, end_at)`,
	`CREATE INDEX IF NOT EXISTS events_user_start_idx
		ON events (user_id, start_at)`,
}

// EnsureSchema creates the tables and indexes if they do not exist yet.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
