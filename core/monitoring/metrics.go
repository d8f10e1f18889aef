package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rightswatch/core/store"
)

// Metrics owns a private registry so several servers can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	requests   *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	violations *prometheus.GaugeVec
	months     *prometheus.GaugeVec
	cities     *prometheus.GaugeVec
	digestRuns *prometheus.CounterVec
	lastDigest prometheus.Gauge
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rightswatch_http_requests_total",
			Help: "HTTP requests by route pattern and status code.",
		}, []string{"method", "route", "status"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rightswatch_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		violations: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "rightswatch_report_violations",
			Help: "Incident reports per violation type at the last digest.",
		}, []string{"violation"}),
		months: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "rightswatch_report_month",
			Help: "Incident reports per creation month at the last digest.",
		}, []string{"period"}),
		cities: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "rightswatch_report_cities",
			Help: "Incident reports per city at the last digest.",
		}, []string{"city"}),
		digestRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rightswatch_analytics_digest_runs_total",
			Help: "Analytics digest runs by result.",
		}, []string{"result"}),
		lastDigest: factory.NewGauge(prometheus.GaugeOpts{
			Name: "rightswatch_analytics_digest_last_success_timestamp_seconds",
			Help: "Unix time of the last successful analytics digest.",
		}),
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) ObserveRequest(method, route string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(method, route).Observe(dur.Seconds())
}

// PublishDigest replaces the aggregate gauges with a fresh snapshot.
func (m *Metrics) PublishDigest(at time.Time, violations []store.ViolationCount, timeline []store.TimelineBucket, cities []store.CityCluster) {
	if m == nil {
		return
	}
	m.violations.Reset()
	for _, v := range violations {
		m.violations.WithLabelValues(v.Value).Set(float64(v.Count))
	}
	m.months.Reset()
	for _, b := range timeline {
		m.months.WithLabelValues(b.Period).Set(float64(b.Count))
	}
	m.cities.Reset()
	for _, c := range cities {
		name := ""
		if c.City != nil {
			name = *c.City
		}
		m.cities.WithLabelValues(name).Set(float64(c.Count))
	}
	m.digestRuns.WithLabelValues("success").Inc()
	m.lastDigest.Set(float64(at.Unix()))
}

func (m *Metrics) DigestFailed() {
	if m == nil {
		return
	}
	m.digestRuns.WithLabelValues("error").Inc()
}
