package metrics

import "github.com/prometheus/client_golang/prometheus"

// Prometheus collectors for the ingestion pipeline and realtime delivery.
var (
	ReadingsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stress_readings_total",
			Help: "Readings persisted, by stress level",
		},
		[]string{"stress_level"},
	)

	ClassificationFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "stress_classification_failures_total",
			Help: "Submissions aborted because the classifier was unavailable",
		},
	)

	ClassifierDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "stress_classifier_request_duration_seconds",
			Help:    "Duration of classifier calls",
			Buckets: prometheus.DefBuckets,
		},
	)

	AlertsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "stress_alerts_total",
			Help: "Alerts persisted",
		},
	)

	SideEffectFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stress_side_effect_failures_total",
			Help: "Failed alert or intervention writes that did not fail the submission",
		},
		[]string{"kind"},
	)

	NotificationsPublishedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "stress_notifications_published_total",
			Help: "Stress notifications published to the hub",
		},
	)

	DeliveryFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "stress_notification_delivery_failures_total",
			Help: "Per-channel notification sends that failed",
		},
	)

	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "stress_realtime_sessions",
			Help: "Live realtime sessions subscribed to the hub",
		},
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
)

// Side-effect kinds for SideEffectFailuresTotal.
const (
	KindAlert        = "alert"
	KindIntervention = "intervention"
)

// Register registers all collectors with the default registry. Call once at startup.
func Register() {
	prometheus.MustRegister(
		ReadingsTotal,
		ClassificationFailuresTotal,
		ClassifierDuration,
		AlertsTotal,
		SideEffectFailuresTotal,
		NotificationsPublishedTotal,
		DeliveryFailuresTotal,
		ActiveSessions,
		HTTPRequestsTotal,
		HTTPRequestDuration,
	)
}
