// Package history serves a user's past readings, alerts and interventions.
package history

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/stress-shield-api/internal/domain"
)

const (
	// ReadingsLimit caps GET /v1/health/history.
	ReadingsLimit = 50
	// AlertsLimit caps GET /v1/alerts.
	AlertsLimit = 20
	// ExportLimit caps the rows written to an export file.
	ExportLimit = 1000
)

// Export formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// ExportResult points at an uploaded export file.
type ExportResult struct {
	URL       string    `json:"url"`
	Key       string    `json:"key"`
	Format    string    `json:"format"`
	Rows      int       `json:"rows"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Service interface {
	Readings(ctx context.Context, userID string) ([]domain.Reading, error)
	Alerts(ctx context.Context, userID string) ([]domain.Alert, error)
	Interventions(ctx context.Context, userID, readingID string) ([]domain.Intervention, error)
	Export(ctx context.Context, userID, format string) (*ExportResult, error)
}

type readingStore interface {
	Get(ctx context.Context, readingID string) (*domain.Reading, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.Reading, error)
}

type alertStore interface {
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.Alert, error)
}

type interventionStore interface {
	ListByReading(ctx context.Context, readingID string) ([]domain.Intervention, error)
}

type objectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) error
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type service struct {
	readings      readingStore
	alerts        alertStore
	interventions interventionStore
	exports       objectStore
	exportTTL     time.Duration
	now           func() time.Time
}

type ServiceDeps struct {
	ReadingRepo      readingStore
	AlertRepo        alertStore
	InterventionRepo interventionStore
	ExportStore      objectStore
	ExportURLTTL     time.Duration
}

func NewService(deps ServiceDeps) Service {
	return &service{
		readings:      deps.ReadingRepo,
		alerts:        deps.AlertRepo,
		interventions: deps.InterventionRepo,
		exports:       deps.ExportStore,
		exportTTL:     deps.ExportURLTTL,
		now:           time.Now,
	}
}

func (s *service) Readings(ctx context.Context, userID string) ([]domain.Reading, error) {
	return s.readings.ListByUser(ctx, userID, ReadingsLimit)
}

func (s *service) Alerts(ctx context.Context, userID string) ([]domain.Alert, error) {
	return s.alerts.ListByUser(ctx, userID, AlertsLimit)
}

// Interventions lists what was recommended for one of the user's readings.
// Readings owned by someone else are reported as not found.
func (s *service) Interventions(ctx context.Context, userID, readingID string) ([]domain.Intervention, error) {
	rd, err := s.readings.Get(ctx, readingID)
	if err != nil {
		return nil, err
	}
	if rd.UserID != userID {
		return nil, fmt.Errorf("reading not found: %w", domain.ErrNotFound)
	}
	return s.interventions.ListByReading(ctx, readingID)
}

func (s *service) Export(ctx context.Context, userID, format string) (*ExportResult, error) {
	if s.exports == nil {
		return nil, errors.New("export storage not configured")
	}
	if format == "" {
		format = FormatCSV
	}
	enc, ok := encoders[format]
	if !ok {
		return nil, fmt.Errorf("unsupported export format %q: %w", format, domain.ErrBadRequest)
	}

	rows, err := s.readings.ListByUser(ctx, userID, ExportLimit)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := enc.write(&buf, rows); err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}

	now := s.now().UTC()
	key := fmt.Sprintf("exports/%s/readings-%s.%s", userID, now.Format("20060102T150405Z"), format)
	if err := s.exports.Upload(ctx, key, &buf, enc.contentType); err != nil {
		return nil, err
	}
	url, err := s.exports.PresignedURL(ctx, key, s.exportTTL)
	if err != nil {
		return nil, err
	}
	return &ExportResult{
		URL:       url,
		Key:       key,
		Format:    format,
		Rows:      len(rows),
		ExpiresAt: now.Add(s.exportTTL),
	}, nil
}
