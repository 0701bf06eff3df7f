package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/stress-shield-api/internal/application/intervention"
	"github.com/stress-shield-api/internal/domain"
)

// --- mocks ---

type mockClassifier struct{ mock.Mock }

func (m *mockClassifier) Classify(ctx context.Context, s domain.Sample) (domain.Classification, error) {
	args := m.Called(ctx, s)
	return args.Get(0).(domain.Classification), args.Error(1)
}

type mockReadingStore struct{ mock.Mock }

func (m *mockReadingStore) Insert(ctx context.Context, r *domain.Reading) (*domain.Reading, error) {
	args := m.Called(ctx, r)
	if args.Error(1) != nil {
		return nil, args.Error(1)
	}
	rec := *r
	rec.ReadingID = "r-1"
	rec.CreatedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &rec, nil
}

type mockAlertStore struct{ mock.Mock }

func (m *mockAlertStore) Insert(ctx context.Context, a *domain.Alert) (*domain.Alert, error) {
	args := m.Called(ctx, a)
	if args.Error(1) != nil {
		return nil, args.Error(1)
	}
	rec := *a
	rec.AlertID = "a-1"
	return &rec, nil
}

type mockInterventionStore struct{ mock.Mock }

func (m *mockInterventionStore) Insert(ctx context.Context, in *domain.Intervention) (*domain.Intervention, error) {
	args := m.Called(ctx, in)
	if args.Error(1) != nil {
		return nil, args.Error(1)
	}
	rec := *in
	return &rec, nil
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, userID string, n domain.StressNotification) error {
	return m.Called(ctx, userID, n).Error(0)
}

// --- helpers ---

type fixture struct {
	cls *mockClassifier
	rs  *mockReadingStore
	as  *mockAlertStore
	is  *mockInterventionStore
	pub *mockPublisher
	svc Service
}

func newFixture() *fixture {
	f := &fixture{
		cls: &mockClassifier{},
		rs:  &mockReadingStore{},
		as:  &mockAlertStore{},
		is:  &mockInterventionStore{},
		pub: &mockPublisher{},
	}
	f.svc = NewService(ServiceDeps{
		Classifier:       f.cls,
		ReadingRepo:      f.rs,
		AlertRepo:        f.as,
		InterventionRepo: f.is,
		Publisher:        f.pub,
	})
	return f
}

func ptr(v float64) *float64 { return &v }

func input() domain.ReadingInput {
	return domain.ReadingInput{HeartRate: ptr(95), SkinConductance: ptr(8), Temperature: ptr(37.2)}
}

func (f *fixture) classifyAs(sev domain.Severity, score float64) {
	f.cls.On("Classify", mock.Anything, input().Sample()).
		Return(domain.Classification{Severity: sev, Score: score}, nil)
}

func interventionTypes(calls []mock.Call) []domain.InterventionType {
	var out []domain.InterventionType
	for _, c := range calls {
		if c.Method == "Insert" {
			out = append(out, c.Arguments.Get(1).(*domain.Intervention).InterventionType)
		}
	}
	return out
}

// --- tests ---

func TestSubmitReading_NonAlertingSeverities(t *testing.T) {
	for _, sev := range []domain.Severity{domain.SeverityLow, domain.SeverityNormal, domain.SeverityModerate} {
		t.Run(string(sev), func(t *testing.T) {
			f := newFixture()
			f.classifyAs(sev, 2.5)
			f.rs.On("Insert", mock.Anything, mock.Anything).Return(nil, nil)

			sub, err := f.svc.SubmitReading(context.Background(), "u1", input())

			require.NoError(t, err)
			assert.Equal(t, sev, sub.Severity)
			assert.Equal(t, 2.5, sub.Score)
			assert.Equal(t, "r-1", sub.Reading.ReadingID)
			assert.Equal(t, sev, sub.Reading.StressLevel)
			f.rs.AssertNumberOfCalls(t, "Insert", 1)
			f.as.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
			f.is.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
			f.pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestSubmitReading_High(t *testing.T) {
	f := newFixture()
	f.classifyAs(domain.SeverityHigh, 7.5)
	f.rs.On("Insert", mock.Anything, mock.Anything).Return(nil, nil)
	f.as.On("Insert", mock.Anything, mock.Anything).Return(nil, nil)
	f.is.On("Insert", mock.Anything, mock.Anything).Return(nil, nil)
	f.pub.On("Publish", mock.Anything, "u1", mock.Anything).Return(nil)

	sub, err := f.svc.SubmitReading(context.Background(), "u1", input())

	require.NoError(t, err)
	assert.Equal(t, domain.SeverityHigh, sub.Severity)

	f.as.AssertNumberOfCalls(t, "Insert", 1)
	alert := f.as.Calls[0].Arguments.Get(1).(*domain.Alert)
	assert.Equal(t, "u1", alert.UserID)
	assert.Equal(t, domain.AlertTypeStressWarning, alert.AlertType)
	assert.Equal(t, "High stress detected! Score: 7.50", alert.Message)

	assert.Equal(t, []domain.InterventionType{
		domain.InterventionBreathing, domain.InterventionBreak, domain.InterventionHydration,
	}, interventionTypes(f.is.Calls))
	for _, c := range f.is.Calls {
		assert.Equal(t, "r-1", c.Arguments.Get(1).(*domain.Intervention).ReadingID)
	}

	f.pub.AssertNumberOfCalls(t, "Publish", 1)
	n := f.pub.Calls[0].Arguments.Get(2).(domain.StressNotification)
	assert.Equal(t, domain.SeverityHigh, n.StressLevel)
	assert.Equal(t, 7.5, n.StressScore)
	assert.Equal(t, "r-1", n.ReadingID)
	assert.Equal(t, intervention.Recommend(domain.SeverityHigh), n.Interventions)
}

func TestSubmitReading_Critical(t *testing.T) {
	f := newFixture()
	f.classifyAs(domain.SeverityCritical, 9.4)
	f.rs.On("Insert", mock.Anything, mock.Anything).Return(nil, nil)
	f.as.On("Insert", mock.Anything, mock.Anything).Return(nil, nil)
	f.is.On("Insert", mock.Anything, mock.Anything).Return(nil, nil)
	f.pub.On("Publish", mock.Anything, "u1", mock.Anything).Return(nil)

	_, err := f.svc.SubmitReading(context.Background(), "u1", input())

	require.NoError(t, err)
	assert.Equal(t, []domain.InterventionType{
		domain.InterventionBreathing, domain.InterventionBreak, domain.InterventionHydration,
		domain.InterventionMedication, domain.InterventionRest,
	}, interventionTypes(f.is.Calls))
	f.pub.AssertNumberOfCalls(t, "Publish", 1)
	n := f.pub.Calls[0].Arguments.Get(2).(domain.StressNotification)
	assert.Equal(t, domain.SeverityCritical, n.StressLevel)
	assert.Len(t, n.Interventions, 5)
}

func TestSubmitReading_ClassifierUnavailable_NoWrites(t *testing.T) {
	f := newFixture()
	f.cls.On("Classify", mock.Anything, mock.Anything).
		Return(domain.Classification{}, errors.New("dial tcp: connection refused"))

	sub, err := f.svc.SubmitReading(context.Background(), "u1", input())

	assert.Nil(t, sub)
	assert.ErrorIs(t, err, domain.ErrClassificationUnavailable)
	f.rs.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	f.as.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	f.is.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	f.pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitReading_ReadingWriteFails_NoSideEffects(t *testing.T) {
	f := newFixture()
	f.classifyAs(domain.SeverityCritical, 9.9)
	f.rs.On("Insert", mock.Anything, mock.Anything).Return(nil, errors.New("throughput exceeded"))

	sub, err := f.svc.SubmitReading(context.Background(), "u1", input())

	assert.Nil(t, sub)
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.NotErrorIs(t, err, domain.ErrClassificationUnavailable)
	f.as.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	f.is.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	f.pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitReading_AlertWriteFails_StillSucceeds(t *testing.T) {
	f := newFixture()
	f.classifyAs(domain.SeverityCritical, 9.2)
	f.rs.On("Insert", mock.Anything, mock.Anything).Return(nil, nil)
	f.as.On("Insert", mock.Anything, mock.Anything).Return(nil, domain.ErrPersistence)
	f.is.On("Insert", mock.Anything, mock.Anything).Return(nil, nil)
	f.pub.On("Publish", mock.Anything, "u1", mock.Anything).Return(nil)

	sub, err := f.svc.SubmitReading(context.Background(), "u1", input())

	require.NoError(t, err)
	assert.Equal(t, domain.SeverityCritical, sub.Severity)
	f.is.AssertNumberOfCalls(t, "Insert", 5)
	f.pub.AssertNumberOfCalls(t, "Publish", 1)
}

func TestSubmitReading_InterventionWritesAttemptedIndependently(t *testing.T) {
	f := newFixture()
	f.classifyAs(domain.SeverityHigh, 7.1)
	f.rs.On("Insert", mock.Anything, mock.Anything).Return(nil, nil)
	f.as.On("Insert", mock.Anything, mock.Anything).Return(nil, nil)
	f.is.On("Insert", mock.Anything, mock.MatchedBy(func(in *domain.Intervention) bool {
		return in.InterventionType == domain.InterventionBreak
	})).Return(nil, domain.ErrPersistence)
	f.is.On("Insert", mock.Anything, mock.Anything).Return(nil, nil)
	f.pub.On("Publish", mock.Anything, "u1", mock.Anything).Return(nil)

	_, err := f.svc.SubmitReading(context.Background(), "u1", input())

	require.NoError(t, err)
	f.is.AssertNumberOfCalls(t, "Insert", 3)
	n := f.pub.Calls[0].Arguments.Get(2).(domain.StressNotification)
	assert.Len(t, n.Interventions, 3)
}

func TestSubmitReading_PublishErrorIsSwallowed(t *testing.T) {
	f := newFixture()
	f.classifyAs(domain.SeverityHigh, 8)
	f.rs.On("Insert", mock.Anything, mock.Anything).Return(nil, nil)
	f.as.On("Insert", mock.Anything, mock.Anything).Return(nil, nil)
	f.is.On("Insert", mock.Anything, mock.Anything).Return(nil, nil)
	f.pub.On("Publish", mock.Anything, "u1", mock.Anything).Return(errors.New("redis down"))

	sub, err := f.svc.SubmitReading(context.Background(), "u1", input())

	require.NoError(t, err)
	assert.NotNil(t, sub)
}

func TestSubmitReading_IgnoresCallerCancellation(t *testing.T) {
	f := newFixture()
	f.classifyAs(domain.SeverityHigh, 8)
	f.rs.On("Insert", mock.MatchedBy(func(ctx context.Context) bool { return ctx.Err() == nil }), mock.Anything).Return(nil, nil)
	f.as.On("Insert", mock.Anything, mock.Anything).Return(nil, nil)
	f.is.On("Insert", mock.Anything, mock.Anything).Return(nil, nil)
	f.pub.On("Publish", mock.Anything, "u1", mock.Anything).Return(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.svc.SubmitReading(ctx, "u1", input())

	require.NoError(t, err)
	f.rs.AssertNumberOfCalls(t, "Insert", 1)
}

func TestProperty_AlertIffAlertingSeverity(t *testing.T) {
	severities := []domain.Severity{
		domain.SeverityLow, domain.SeverityNormal, domain.SeverityModerate,
		domain.SeverityHigh, domain.SeverityCritical,
	}
	rapid.Check(t, func(t *rapid.T) {
		sev := rapid.SampledFrom(severities).Draw(t, "severity")
		score := rapid.Float64Range(0, 10).Draw(t, "score")

		f := newFixture()
		f.classifyAs(sev, score)
		f.rs.On("Insert", mock.Anything, mock.Anything).Return(nil, nil)
		f.as.On("Insert", mock.Anything, mock.Anything).Return(nil, nil)
		f.is.On("Insert", mock.Anything, mock.Anything).Return(nil, nil)
		f.pub.On("Publish", mock.Anything, "u1", mock.Anything).Return(nil)

		if _, err := f.svc.SubmitReading(context.Background(), "u1", input()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		alerts, publishes := 0, 0
		for _, c := range f.as.Calls {
			if c.Method == "Insert" {
				alerts++
			}
		}
		for _, c := range f.pub.Calls {
			if c.Method == "Publish" {
				publishes++
			}
		}
		want := 0
		if sev.Alerting() {
			want = 1
		}
		if alerts != want || publishes != want {
			t.Fatalf("severity %s: alerts=%d publishes=%d, want %d", sev, alerts, publishes, want)
		}
		if got := len(interventionTypes(f.is.Calls)); got != len(intervention.Recommend(sev)) {
			t.Fatalf("severity %s: %d interventions", sev, got)
		}
	})
}
