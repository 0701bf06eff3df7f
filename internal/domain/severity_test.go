package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeverity(t *testing.T) {
	cases := []struct {
		in   string
		want Severity
	}{
		{"LOW", SeverityLow},
		{"NORMAL", SeverityNormal},
		{"MODERATE", SeverityModerate},
		{"HIGH", SeverityHigh},
		{"CRITICAL", SeverityCritical},
	}
	for _, c := range cases {
		got, err := ParseSeverity(c.in)
		require.NoError(t, err, "input: %q", c.in)
		assert.Equal(t, c.want, got)
	}
}

func TestParseSeverity_Unknown(t *testing.T) {
	for _, in := range []string{"", "SEVERE", "HIGHEST", "high", " HIGH", "HIGH ", " high ", "Critical"} {
		_, err := ParseSeverity(in)
		assert.Error(t, err, "input: %q", in)
	}
}

func TestSeverity_Alerting(t *testing.T) {
	assert.False(t, SeverityLow.Alerting())
	assert.False(t, SeverityNormal.Alerting())
	assert.False(t, SeverityModerate.Alerting())
	assert.True(t, SeverityHigh.Alerting())
	assert.True(t, SeverityCritical.Alerting())
	assert.False(t, Severity("BOGUS").Alerting())
}

func TestSeverity_AtLeast_Ordering(t *testing.T) {
	ordered := []Severity{SeverityLow, SeverityNormal, SeverityModerate, SeverityHigh, SeverityCritical}
	for i, a := range ordered {
		for j, b := range ordered {
			assert.Equal(t, i >= j, a.AtLeast(b), "%s >= %s", a, b)
		}
	}
}

func TestStressAlertMessage_TwoDecimals(t *testing.T) {
	assert.Equal(t, "High stress detected! Score: 8.00", StressAlertMessage(8))
	assert.Equal(t, "High stress detected! Score: 9.13", StressAlertMessage(9.125001))
}
