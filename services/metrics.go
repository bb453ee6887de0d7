package services

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the service's Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "siilah",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "siilah",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "siilah",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "path"},
	)

	gatewayCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "siilah",
			Subsystem: "gateway",
			Name:      "calls_total",
			Help:      "Total number of generative model calls.",
		},
		[]string{"operation", "outcome"},
	)

	gatewayDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "siilah",
			Subsystem: "gateway",
			Name:      "call_duration_seconds",
			Help:      "Duration of generative model calls.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		},
		[]string{"operation"},
	)

	postsSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "siilah",
			Subsystem: "circles",
			Name:      "posts_submitted_total",
			Help:      "Posts created or edited, by post type.",
		},
		[]string{"post_type"},
	)

	prayingNowGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "siilah",
			Subsystem: "presence",
			Name:      "praying_now",
			Help:      "Members currently praying across all posts.",
		},
	)

	prunedEntries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "siilah",
			Subsystem: "presence",
			Name:      "pruned_total",
			Help:      "Praying-now entries removed by the presence sweep.",
		},
	)

	liveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "siilah",
			Subsystem: "realtime",
			Name:      "connections",
			Help:      "Open live feed connections.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		gatewayCalls,
		gatewayDuration,
		postsSubmitted,
		prayingNowGauge,
		prunedEntries,
		liveConnections,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// MetricsHandler exposes the registered collectors.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

func HTTPRequestStarted() {
	httpInFlight.Inc()
}

func ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	httpInFlight.Dec()
	httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func observeGatewayCall(operation, outcome string, duration time.Duration) {
	gatewayCalls.WithLabelValues(operation, outcome).Inc()
	gatewayDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func recordPostSubmitted(postType string) {
	postsSubmitted.WithLabelValues(postType).Inc()
}

func setPrayingNowGauge(count int) {
	prayingNowGauge.Set(float64(count))
}

func observePrune(removed int) {
	if removed > 0 {
		prunedEntries.Add(float64(removed))
	}
}
