package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/stress-shield-api/internal/domain"
	"github.com/stress-shield-api/internal/pkg/id"
)

// AlertRepo stores alerts in the alerts table.
type AlertRepo struct {
	db *sql.DB
}

func NewAlertRepo(db *sql.DB) *AlertRepo {
	return &AlertRepo{db: db}
}

func (r *AlertRepo) Insert(ctx context.Context, a *domain.Alert) (*domain.Alert, error) {
	rec := *a
	rec.AlertID = id.New()
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO alerts (id, user_id, alert_type, message)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`,
		rec.AlertID, rec.UserID, rec.AlertType, rec.Message,
	).Scan(&rec.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert alert: %w: %w", domain.ErrPersistence, err)
	}
	return &rec, nil
}

// ListByUser returns the user's latest alerts, newest first.
func (r *AlertRepo) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Alert, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, alert_type, message, created_at
		FROM alerts WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	alerts := []domain.Alert{}
	for rows.Next() {
		var a domain.Alert
		if err := rows.Scan(&a.AlertID, &a.UserID, &a.AlertType, &a.Message, &a.CreatedAt); err != nil {
			return nil, err
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}
