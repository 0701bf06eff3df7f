// Package classifier talks to the stress classification service.
package classifier

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stress-shield-api/internal/domain"
	"github.com/stress-shield-api/internal/metrics"
	"go.uber.org/zap"
)

type predictRequest struct {
	HeartRate       float64 `json:"heart_rate"`
	SkinConductance float64 `json:"skin_conductance"`
	Temperature     float64 `json:"temperature"`
}

type predictResponse struct {
	StressLevel *string  `json:"stress_level"`
	StressScore *float64 `json:"stress_score"`
	Confidence  float64  `json:"confidence"`
}

// Client calls POST {baseURL}/predict. It never retries.
type Client struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return &Client{httpClient: httpClient, logger: logger}
}

// Classify returns the severity and score for s. Every failure wraps
// domain.ErrClassificationUnavailable.
func (c *Client) Classify(ctx context.Context, s domain.Sample) (domain.Classification, error) {
	start := time.Now()
	defer func() { metrics.ClassifierDuration.Observe(time.Since(start).Seconds()) }()

	var body predictResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(predictRequest{
			HeartRate:       s.HeartRate,
			SkinConductance: s.SkinConductance,
			Temperature:     s.Temperature,
		}).
		SetResult(&body).
		Post("/predict")
	if err != nil {
		c.logger.Error("classifier call failed", zap.Error(err))
		return domain.Classification{}, fmt.Errorf("call classifier: %v: %w", err, domain.ErrClassificationUnavailable)
	}
	if resp.IsError() {
		c.logger.Error("classifier returned error status", zap.Int("status_code", resp.StatusCode()))
		return domain.Classification{}, fmt.Errorf("classifier status %d: %w", resp.StatusCode(), domain.ErrClassificationUnavailable)
	}
	return decode(body)
}

func decode(body predictResponse) (domain.Classification, error) {
	if body.StressLevel == nil || body.StressScore == nil {
		return domain.Classification{}, fmt.Errorf("classifier response missing fields: %w", domain.ErrClassificationUnavailable)
	}
	sev, err := domain.ParseSeverity(*body.StressLevel)
	if err != nil {
		return domain.Classification{}, fmt.Errorf("%v: %w", err, domain.ErrClassificationUnavailable)
	}
	score := *body.StressScore
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return domain.Classification{}, fmt.Errorf("classifier score not finite: %w", domain.ErrClassificationUnavailable)
	}
	return domain.Classification{Severity: sev, Score: score}, nil
}
