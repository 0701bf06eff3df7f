package domain

// EventStressAlert is the realtime event name carried by stress notifications.
const EventStressAlert = "stress-alert"

// StressNotification is pushed to a user's live sessions when a reading alerts.
type StressNotification struct {
	ReadingID     string              `json:"reading_id"`
	StressLevel   Severity            `json:"stress_level"`
	StressScore   float64             `json:"stress_score"`
	Interventions []InterventionDraft `json:"interventions"`
}
