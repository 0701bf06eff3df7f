package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/stress-shield-api/internal/domain"
	"github.com/stress-shield-api/internal/pkg/id"
)

// ReadingRepo stores readings in the health_readings table.
type ReadingRepo struct {
	db *sql.DB
}

func NewReadingRepo(db *sql.DB) *ReadingRepo {
	return &ReadingRepo{db: db}
}

func (r *ReadingRepo) Insert(ctx context.Context, rd *domain.Reading) (*domain.Reading, error) {
	rec := *rd
	rec.ReadingID = id.New()
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO health_readings (id, user_id, heart_rate, skin_conductance, temperature, stress_level, stress_score)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING timestamp`,
		rec.ReadingID, rec.UserID, rec.HeartRate, rec.SkinConductance, rec.Temperature,
		string(rec.StressLevel), rec.StressScore,
	).Scan(&rec.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert reading: %w: %w", domain.ErrPersistence, err)
	}
	return &rec, nil
}

const readingColumns = `id, user_id, heart_rate, skin_conductance, temperature, stress_level, stress_score, timestamp`

func scanReading(row interface{ Scan(...any) error }) (domain.Reading, error) {
	var rd domain.Reading
	var level string
	err := row.Scan(&rd.ReadingID, &rd.UserID, &rd.HeartRate, &rd.SkinConductance, &rd.Temperature,
		&level, &rd.StressScore, &rd.CreatedAt)
	rd.StressLevel = domain.Severity(level)
	return rd, err
}

func (r *ReadingRepo) Get(ctx context.Context, readingID string) (*domain.Reading, error) {
	rd, err := scanReading(r.db.QueryRowContext(ctx,
		`SELECT `+readingColumns+` FROM health_readings WHERE id = $1`, readingID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("reading not found: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &rd, nil
}

// ListByUser returns the user's latest readings, newest first.
func (r *ReadingRepo) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Reading, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+readingColumns+` FROM health_readings WHERE user_id = $1 ORDER BY timestamp DESC LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	readings := []domain.Reading{}
	for rows.Next() {
		rd, err := scanReading(rows)
		if err != nil {
			return nil, err
		}
		readings = append(readings, rd)
	}
	return readings, rows.Err()
}
