package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mmh_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mmh_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Email
	EmailsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mmh_emails_total",
			Help: "Emails handed to the SMTP gateway, by template and outcome",
		},
		[]string{"template", "status"}, // "sent", "failed", "skipped"
	)

	// Media processing
	MediaJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mmh_media_jobs_total",
			Help: "Media lifecycle jobs processed, by kind and outcome",
		},
		[]string{"kind", "status"},
	)

	MediaJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mmh_media_job_duration_seconds",
			Help:    "Duration of media lifecycle jobs",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300},
		},
		[]string{"kind"},
	)

	MediaQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mmh_media_queue_depth",
			Help: "Jobs waiting in the media worker queue",
		},
	)

	PlaybackEventsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mmh_playback_events_total",
			Help: "Video playback events recorded",
		},
	)

	SubscriptionChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mmh_subscription_changes_total",
			Help: "Event subscriptions added or removed by subscribers",
		},
		[]string{"action"},
	)
)

func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func RecordEmail(template string, err error, skipped bool) {
	switch {
	case skipped:
		EmailsTotal.WithLabelValues(template, "skipped").Inc()
	case err != nil:
		EmailsTotal.WithLabelValues(template, "failed").Inc()
	default:
		EmailsTotal.WithLabelValues(template, "sent").Inc()
	}
}

func RecordMediaJob(kind string, duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	MediaJobsTotal.WithLabelValues(kind, status).Inc()
	MediaJobDuration.WithLabelValues(kind).Observe(duration.Seconds())
}
