// Package ingest runs a submitted reading through classification, storage,
// alerting and notification.
package ingest

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/stress-shield-api/internal/application/intervention"
	"github.com/stress-shield-api/internal/domain"
	"github.com/stress-shield-api/internal/metrics"
)

// Submission is the result of a successful reading submission.
type Submission struct {
	Reading  *domain.Reading `json:"reading"`
	Severity domain.Severity `json:"stress_level"`
	Score    float64         `json:"stress_score"`
}

type Service interface {
	SubmitReading(ctx context.Context, userID string, in domain.ReadingInput) (*Submission, error)
}

type classifier interface {
	Classify(ctx context.Context, s domain.Sample) (domain.Classification, error)
}

type readingStore interface {
	Insert(ctx context.Context, r *domain.Reading) (*domain.Reading, error)
}

type alertStore interface {
	Insert(ctx context.Context, a *domain.Alert) (*domain.Alert, error)
}

type interventionStore interface {
	Insert(ctx context.Context, in *domain.Intervention) (*domain.Intervention, error)
}

type publisher interface {
	Publish(ctx context.Context, userID string, n domain.StressNotification) error
}

type service struct {
	classifier    classifier
	readings      readingStore
	alerts        alertStore
	interventions interventionStore
	publisher     publisher
	logger        *zap.Logger
}

type ServiceDeps struct {
	Classifier       classifier
	ReadingRepo      readingStore
	AlertRepo        alertStore
	InterventionRepo interventionStore
	Publisher        publisher
	Logger           *zap.Logger
}

func NewService(deps ServiceDeps) Service {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{
		classifier:    deps.Classifier,
		readings:      deps.ReadingRepo,
		alerts:        deps.AlertRepo,
		interventions: deps.InterventionRepo,
		publisher:     deps.Publisher,
		logger:        logger,
	}
}

// SubmitReading classifies and stores one reading. Only classification and the
// reading write can fail the call; alert, intervention and notification
// problems are logged and counted.
func (s *service) SubmitReading(ctx context.Context, userID string, in domain.ReadingInput) (*Submission, error) {
	ctx = context.WithoutCancel(ctx)
	sample := in.Sample()

	cls, err := s.classifier.Classify(ctx, sample)
	if err != nil {
		metrics.ClassificationFailuresTotal.Inc()
		s.logger.Warn("classification failed", zap.String("user_id", userID), zap.Error(err))
		if !errors.Is(err, domain.ErrClassificationUnavailable) {
			err = fmt.Errorf("%w: %w", domain.ErrClassificationUnavailable, err)
		}
		return nil, err
	}

	reading, err := s.readings.Insert(ctx, &domain.Reading{
		UserID:          userID,
		HeartRate:       sample.HeartRate,
		SkinConductance: sample.SkinConductance,
		Temperature:     sample.Temperature,
		StressLevel:     cls.Severity,
		StressScore:     cls.Score,
	})
	if err != nil {
		s.logger.Error("store reading", zap.String("user_id", userID), zap.Error(err))
		if !errors.Is(err, domain.ErrPersistence) {
			err = fmt.Errorf("%w: %w", domain.ErrPersistence, err)
		}
		return nil, err
	}
	metrics.ReadingsTotal.WithLabelValues(string(cls.Severity)).Inc()

	if cls.Severity.Alerting() {
		s.alert(ctx, reading)
	}

	return &Submission{Reading: reading, Severity: cls.Severity, Score: cls.Score}, nil
}

func (s *service) alert(ctx context.Context, reading *domain.Reading) {
	log := s.logger.With(zap.String("user_id", reading.UserID), zap.String("reading_id", reading.ReadingID))

	if _, err := s.alerts.Insert(ctx, &domain.Alert{
		UserID:    reading.UserID,
		AlertType: domain.AlertTypeStressWarning,
		Message:   domain.StressAlertMessage(reading.StressScore),
	}); err != nil {
		metrics.SideEffectFailuresTotal.WithLabelValues(metrics.KindAlert).Inc()
		log.Error("store alert", zap.Error(err))
	} else {
		metrics.AlertsTotal.Inc()
	}

	drafts := intervention.Recommend(reading.StressLevel)
	for _, d := range drafts {
		if _, err := s.interventions.Insert(ctx, &domain.Intervention{
			UserID:           reading.UserID,
			ReadingID:        reading.ReadingID,
			InterventionType: d.Type,
			Recommendation:   d.Text,
		}); err != nil {
			metrics.SideEffectFailuresTotal.WithLabelValues(metrics.KindIntervention).Inc()
			log.Error("store intervention", zap.String("type", string(d.Type)), zap.Error(err))
		}
	}

	if err := s.publisher.Publish(ctx, reading.UserID, domain.StressNotification{
		ReadingID:     reading.ReadingID,
		StressLevel:   reading.StressLevel,
		StressScore:   reading.StressScore,
		Interventions: drafts,
	}); err != nil {
		log.Warn("publish notification", zap.Error(err))
		return
	}
	metrics.NotificationsPublishedTotal.Inc()
}
