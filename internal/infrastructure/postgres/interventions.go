package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/stress-shield-api/internal/domain"
	"github.com/stress-shield-api/internal/pkg/id"
)

// InterventionRepo stores interventions in the interventions table.
type InterventionRepo struct {
	db *sql.DB
}

func NewInterventionRepo(db *sql.DB) *InterventionRepo {
	return &InterventionRepo{db: db}
}

func (r *InterventionRepo) Insert(ctx context.Context, in *domain.Intervention) (*domain.Intervention, error) {
	rec := *in
	rec.InterventionID = id.New()
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO interventions (id, user_id, reading_id, intervention_type, recommendation)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		rec.InterventionID, rec.UserID, rec.ReadingID, string(rec.InterventionType), rec.Recommendation,
	).Scan(&rec.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert intervention: %w: %w", domain.ErrPersistence, err)
	}
	return &rec, nil
}

// ListByReading returns the interventions recorded for a reading in insertion order.
func (r *InterventionRepo) ListByReading(ctx context.Context, readingID string) ([]domain.Intervention, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, reading_id, intervention_type, recommendation, created_at
		FROM interventions WHERE reading_id = $1 ORDER BY id`,
		readingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	interventions := []domain.Intervention{}
	for rows.Next() {
		var in domain.Intervention
		var typ string
		if err := rows.Scan(&in.InterventionID, &in.UserID, &in.ReadingID, &typ, &in.Recommendation, &in.CreatedAt); err != nil {
			return nil, err
		}
		in.InterventionType = domain.InterventionType(typ)
		interventions = append(interventions, in)
	}
	return interventions, rows.Err()
}
