// Package intervention maps a stress severity to the remedial actions
// recommended to the user.
package intervention

import "github.com/stress-shield-api/internal/domain"

var (
	baseline = []domain.InterventionDraft{
		{Type: domain.InterventionBreathing, Text: "Take 5 minutes for deep breathing: Inhale for 4 seconds, hold for 4, exhale for 6."},
		{Type: domain.InterventionBreak, Text: "Take a 15-minute break. Step away from your workspace and stretch."},
		{Type: domain.InterventionHydration, Text: "Drink a glass of water. Dehydration can increase stress levels."},
	}
	critical = []domain.InterventionDraft{
		{Type: domain.InterventionMedication, Text: "Consider taking prescribed stress medication if available."},
		{Type: domain.InterventionRest, Text: "Schedule immediate rest. Avoid strenuous activities for the next hour."},
	}
)

// Recommend returns the ordered interventions for a severity. HIGH gets the
// baseline triple, CRITICAL the baseline followed by medication and rest.
// Non-alerting severities get none. The returned slice is owned by the caller.
func Recommend(sev domain.Severity) []domain.InterventionDraft {
	switch sev {
	case domain.SeverityHigh:
		return append([]domain.InterventionDraft(nil), baseline...)
	case domain.SeverityCritical:
		out := make([]domain.InterventionDraft, 0, len(baseline)+len(critical))
		out = append(out, baseline...)
		return append(out, critical...)
	default:
		return nil
	}
}
