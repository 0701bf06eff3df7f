package classifier

import (
	"context"
	"math"

	"github.com/stress-shield-api/internal/domain"
)

// RuleBased is the in-process fallback classifier ("rule-based-v1"). It
// scores heart rate outside 60-100 bpm, skin conductance, and temperature
// outside 36.5-37.5 C, clamped to [0, 10].
type RuleBased struct{}

func (RuleBased) Classify(_ context.Context, s domain.Sample) (domain.Classification, error) {
	score := 0.0
	switch {
	case s.HeartRate > 100:
		score += (s.HeartRate - 100) / 20
	case s.HeartRate < 60:
		score += (60 - s.HeartRate) / 20
	}
	score += s.SkinConductance / 2
	switch {
	case s.Temperature > 37.5:
		score += (s.Temperature - 37.5) * 2
	case s.Temperature < 36.5:
		score += (36.5 - s.Temperature) * 2
	}
	score = math.Min(math.Max(score, 0), 10)
	return domain.Classification{Severity: severityFor(score), Score: score}, nil
}

func severityFor(score float64) domain.Severity {
	switch {
	case score < 3:
		return domain.SeverityLow
	case score < 5:
		return domain.SeverityNormal
	case score < 7:
		return domain.SeverityModerate
	case score < 9:
		return domain.SeverityHigh
	default:
		return domain.SeverityCritical
	}
}
