package domain

import "time"

// Reading is one biometric sample together with its classification.
type Reading struct {
	ReadingID       string    `json:"id" dynamodbav:"reading_id"`
	UserID          string    `json:"user_id" dynamodbav:"user_id"`
	HeartRate       float64   `json:"heart_rate" dynamodbav:"heart_rate"`
	SkinConductance float64   `json:"skin_conductance" dynamodbav:"skin_conductance"`
	Temperature     float64   `json:"temperature" dynamodbav:"temperature"`
	StressLevel     Severity  `json:"stress_level" dynamodbav:"stress_level"`
	StressScore     float64   `json:"stress_score" dynamodbav:"stress_score"`
	CreatedAt       time.Time `json:"timestamp" dynamodbav:"created_at"`
}

// ReadingInput is the body of a reading submission. Pointers let validation
// tell a missing field from a zero value.
type ReadingInput struct {
	HeartRate       *float64 `json:"heart_rate" validate:"required"`
	SkinConductance *float64 `json:"skin_conductance" validate:"required"`
	Temperature     *float64 `json:"temperature" validate:"required"`
}

// Sample is a fully-populated reading input.
type Sample struct {
	HeartRate       float64 `json:"heart_rate"`
	SkinConductance float64 `json:"skin_conductance"`
	Temperature     float64 `json:"temperature"`
}

// Sample dereferences the input. Callers validate first.
func (in ReadingInput) Sample() Sample {
	var s Sample
	if in.HeartRate != nil {
		s.HeartRate = *in.HeartRate
	}
	if in.SkinConductance != nil {
		s.SkinConductance = *in.SkinConductance
	}
	if in.Temperature != nil {
		s.Temperature = *in.Temperature
	}
	return s
}

// Classification is what the stress classifier returns for a sample.
type Classification struct {
	Severity Severity
	Score    float64
}
