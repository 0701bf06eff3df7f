package domain

import "fmt"

// Severity is the stress classification of a reading, ordered by urgency.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityNormal   Severity = "NORMAL"
	SeverityModerate Severity = "MODERATE"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

var severityRank = map[Severity]int{
	SeverityLow:      0,
	SeverityNormal:   1,
	SeverityModerate: 2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

// ParseSeverity accepts exactly the five known labels. Case and surrounding
// whitespace are not normalized.
func ParseSeverity(s string) (Severity, error) {
	sev := Severity(s)
	if !sev.Valid() {
		return "", fmt.Errorf("unknown severity %q", s)
	}
	return sev, nil
}

// Valid reports whether s is one of the five known labels.
func (s Severity) Valid() bool {
	_, ok := severityRank[s]
	return ok
}

// AtLeast reports whether s is as urgent as other or more.
// Unknown labels never compare as at least anything.
func (s Severity) AtLeast(other Severity) bool {
	r, ok := severityRank[s]
	if !ok {
		return false
	}
	return r >= severityRank[other]
}

// Alerting reports whether a reading with this severity raises an alert.
func (s Severity) Alerting() bool { return s.AtLeast(SeverityHigh) }
