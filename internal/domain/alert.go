package domain

import (
	"fmt"
	"time"
)

// AlertTypeStressWarning is raised for HIGH and CRITICAL readings.
const AlertTypeStressWarning = "STRESS_WARNING"

type Alert struct {
	AlertID   string    `json:"id" dynamodbav:"alert_id"`
	UserID    string    `json:"user_id" dynamodbav:"user_id"`
	AlertType string    `json:"alert_type" dynamodbav:"alert_type"`
	Message   string    `json:"message" dynamodbav:"message"`
	CreatedAt time.Time `json:"created_at" dynamodbav:"created_at"`
}

// StressAlertMessage renders the alert text for a score, two decimals.
func StressAlertMessage(score float64) string {
	return fmt.Sprintf("High stress detected! Score: %.2f", score)
}
