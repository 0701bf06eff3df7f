// Package postgres stores readings, alerts and interventions in PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// Open connects to PostgreSQL and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS health_readings (
	id               TEXT PRIMARY KEY,
	user_id          TEXT NOT NULL,
	heart_rate       DOUBLE PRECISION NOT NULL,
	skin_conductance DOUBLE PRECISION NOT NULL,
	temperature      DOUBLE PRECISION NOT NULL,
	stress_level     TEXT NOT NULL,
	stress_score     DOUBLE PRECISION NOT NULL,
	timestamp        TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS health_readings_user_ts ON health_readings (user_id, timestamp DESC);

CREATE TABLE IF NOT EXISTS alerts (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	alert_type TEXT NOT NULL,
	message    TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS alerts_user_created ON alerts (user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS interventions (
	id                TEXT PRIMARY KEY,
	user_id           TEXT NOT NULL,
	reading_id        TEXT NOT NULL REFERENCES health_readings (id),
	intervention_type TEXT NOT NULL,
	recommendation    TEXT NOT NULL,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS interventions_reading ON interventions (reading_id, id);
`

// Migrate creates the record tables if they do not exist.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}
