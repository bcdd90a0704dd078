package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for chapterhouse.
// Every helper is safe on a nil registry so services can run without metrics.
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight *prometheus.GaugeVec

	// Cache Metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Notification Metrics
	NotificationsSentTotal *prometheus.CounterVec
	NotificationJobsTotal  *prometheus.CounterVec
	NotificationQueueDepth *prometheus.GaugeVec

	// Business Metrics
	InvitationRedemptionsTotal *prometheus.CounterVec
	ProvisioningOutcomesTotal  *prometheus.CounterVec
	JobDuration                *prometheus.HistogramVec
}

// NewMetricsRegistry registers every metric on reg
func NewMetricsRegistry(reg prometheus.Registerer) *MetricsRegistry {
	factory := promauto.With(reg)

	return &MetricsRegistry{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chapterhouse_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chapterhouse_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "chapterhouse_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"method"},
		),

		CacheHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chapterhouse_cache_hits_total",
				Help: "Total cache hits by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),
		CacheMissesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chapterhouse_cache_misses_total",
				Help: "Total cache misses by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),

		NotificationsSentTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chapterhouse_notifications_sent_total",
				Help: "Notification sends by channel and result",
			},
			[]string{"channel", "result"},
		),
		NotificationJobsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chapterhouse_notification_jobs_total",
				Help: "Notification jobs by outcome (published, publish_failed, delivered, retried, dead_lettered)",
			},
			[]string{"outcome"},
		),
		NotificationQueueDepth: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "chapterhouse_notification_queue_depth",
				Help: "Notification queue depth by state (length, pending, dead_letter)",
			},
			[]string{"state"},
		),

		InvitationRedemptionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chapterhouse_invitation_redemptions_total",
				Help: "Invitation redemptions by result",
			},
			[]string{"result"},
		),
		ProvisioningOutcomesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chapterhouse_provisioning_outcomes_total",
				Help: "Account provisioning saga outcomes",
			},
			[]string{"outcome"},
		),
		JobDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chapterhouse_job_duration_seconds",
				Help:    "Scheduled job execution time in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
			},
			[]string{"job_name"},
		),
	}
}

func (m *MetricsRegistry) NotificationSent(channel, result string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.NotificationsSentTotal.WithLabelValues(channel, result).Add(float64(n))
}

func (m *MetricsRegistry) NotificationJob(outcome string) {
	if m == nil {
		return
	}
	m.NotificationJobsTotal.WithLabelValues(outcome).Inc()
}

func (m *MetricsRegistry) QueueDepth(length, pending, dead int64) {
	if m == nil {
		return
	}
	m.NotificationQueueDepth.WithLabelValues("length").Set(float64(length))
	m.NotificationQueueDepth.WithLabelValues("pending").Set(float64(pending))
	m.NotificationQueueDepth.WithLabelValues("dead_letter").Set(float64(dead))
}

func (m *MetricsRegistry) InvitationRedemption(result string) {
	if m == nil {
		return
	}
	m.InvitationRedemptionsTotal.WithLabelValues(result).Inc()
}

func (m *MetricsRegistry) Provisioning(outcome string) {
	if m == nil {
		return
	}
	m.ProvisioningOutcomesTotal.WithLabelValues(outcome).Inc()
}

func (m *MetricsRegistry) CacheLookup(pattern string, hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHitsTotal.WithLabelValues(pattern).Inc()
		return
	}
	m.CacheMissesTotal.WithLabelValues(pattern).Inc()
}

func (m *MetricsRegistry) ObserveJob(name string, seconds float64) {
	if m == nil {
		return
	}
	m.JobDuration.WithLabelValues(name).Observe(seconds)
}
