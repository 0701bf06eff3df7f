package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/stress-shield-api/internal/domain"
	"github.com/stress-shield-api/internal/pkg/id"
)

// AlertRepo provides typed DynamoDB operations for the alerts table.
type AlertRepo struct {
	client    API
	tableName string
}

func NewAlertRepo(client API, tableName string) *AlertRepo {
	return &AlertRepo{client: client, tableName: tableName}
}

func (r *AlertRepo) Insert(ctx context.Context, a *domain.Alert) (*domain.Alert, error) {
	rec := *a
	rec.AlertID = id.New()
	rec.CreatedAt = time.Now().UTC()
	if err := putNew(ctx, r.client, r.tableName, "alert_id", &rec); err != nil {
		return nil, fmt.Errorf("put alert: %w: %w", domain.ErrPersistence, err)
	}
	return &rec, nil
}

// ListByUser returns the user's latest alerts, newest first.
func (r *AlertRepo) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Alert, error) {
	alerts := []domain.Alert{}
	if err := queryLatestByUser(ctx, r.client, r.tableName, userID, int32(limit), &alerts); err != nil {
		return nil, err
	}
	return alerts, nil
}
