package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	upstreamRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "football_upstream_requests_total",
		Help: "Upstream HTTP calls by upstream and outcome.",
	}, []string{"upstream", "outcome"})

	upstreamDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "football_upstream_request_duration_seconds",
		Help:    "Upstream HTTP call latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"upstream"})

	reports = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "football_reports_total",
		Help: "Report compositions by outcome.",
	}, []string{"outcome"})

	recommendations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "football_recommendations_total",
		Help: "Recommendation iterations by outcome.",
	}, []string{"outcome"})

	queueDropped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "football_llm_queue_dropped_total",
		Help: "Model calls rejected because their priority queue was full.",
	}, []string{"priority"})

	queueDepth = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "football_llm_queue_depth",
		Help: "Model calls waiting for a slot.",
	}, []string{"priority"})
)

func init() {
	prometheus.MustRegister(upstreamRequests, upstreamDuration, reports, recommendations, queueDropped, queueDepth)
}

// Outcome labels shared by callers.
const (
	OutcomeOK             = "ok"
	OutcomeHTTPError      = "http_error"
	OutcomeTransportError = "transport_error"
	OutcomeRejected       = "rejected"
	OutcomeEmpty          = "empty"
	OutcomeSkipped        = "skipped"
)

func ObserveUpstream(upstream, outcome string, took time.Duration) {
	upstreamRequests.WithLabelValues(upstream, outcome).Inc()
	upstreamDuration.WithLabelValues(upstream).Observe(took.Seconds())
}

func ReportComposed(outcome string) {
	reports.WithLabelValues(outcome).Inc()
}

func RecommendationProduced(outcome string) {
	recommendations.WithLabelValues(outcome).Inc()
}

func QueueDropped(priority string) {
	queueDropped.WithLabelValues(priority).Inc()
}

func QueueDepth(priority string, depth int) {
	queueDepth.WithLabelValues(priority).Set(float64(depth))
}
