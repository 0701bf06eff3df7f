package domain

import "time"

// InterventionType is the category of a recommended action.
type InterventionType string

const (
	InterventionBreathing  InterventionType = "BREATHING"
	InterventionBreak      InterventionType = "BREAK"
	InterventionHydration  InterventionType = "HYDRATION"
	InterventionMedication InterventionType = "MEDICATION"
	InterventionRest       InterventionType = "REST"
)

// InterventionDraft is a recommendation before it is tied to a reading.
type InterventionDraft struct {
	Type InterventionType `json:"type"`
	Text string           `json:"text"`
}

type Intervention struct {
	InterventionID   string           `json:"id" dynamodbav:"intervention_id"`
	UserID           string           `json:"user_id" dynamodbav:"user_id"`
	ReadingID        string           `json:"reading_id" dynamodbav:"reading_id"`
	InterventionType InterventionType `json:"intervention_type" dynamodbav:"intervention_type"`
	Recommendation   string           `json:"recommendation" dynamodbav:"recommendation"`
	CreatedAt        time.Time        `json:"created_at" dynamodbav:"created_at"`
}
