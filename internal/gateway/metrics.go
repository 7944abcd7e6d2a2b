package gateway

import (
	"net/http"
	"path"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/flemzord/tgbot/pkg/bot"
)

const namespace = "tgbot"

// Metrics collects bot counters in a private Prometheus registry. It
// implements bot.Observer so both delivery paths report into it.
type Metrics struct {
	registry *prometheus.Registry

	updates      *prometheus.CounterVec
	failures     *prometheus.CounterVec
	pollTimeouts prometheus.Counter
	throttled    prometheus.Counter
	apiRequests  *prometheus.CounterVec
	apiLatency   *prometheus.HistogramVec
	jobRuns      *prometheus.CounterVec
	reloads      *prometheus.CounterVec

	updatesTotal  atomic.Int64
	failuresTotal atomic.Int64
	timeoutsTotal atomic.Int64
}

var _ bot.Observer = (*Metrics)(nil)

// NewMetrics registers all collectors, including the Go runtime and
// process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		updates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "updates_received_total",
			Help:      "Updates received, by delivery source.",
		}, []string{"source"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_failures_total",
			Help:      "Updates whose dispatch returned an error, by delivery source.",
		}, []string{"source"}),
		pollTimeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "poll_timeouts_total",
			Help:      "getUpdates calls that hit the client deadline.",
		}),
		throttled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "replies_throttled_total",
			Help:      "Replies dropped by the rate limiter.",
		}),
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Bot API requests, by method and HTTP status code.",
		}, []string{"method", "code"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "Bot API request latency, by method.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 15, 30, 60},
		}, []string{"method"}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_runs_total",
			Help:      "Scheduled job runs, by job and outcome.",
		}, []string{"job", "outcome"}),
		reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "config_reloads_total",
			Help:      "Configuration reload attempts, by outcome.",
		}, []string{"outcome"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.updates, m.failures, m.pollTimeouts, m.throttled,
		m.apiRequests, m.apiLatency, m.jobRuns, m.reloads,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// UpdateReceived implements bot.Observer.
func (m *Metrics) UpdateReceived(source string) {
	m.updates.WithLabelValues(source).Inc()
	m.updatesTotal.Add(1)
}

// DispatchFailed implements bot.Observer.
func (m *Metrics) DispatchFailed(source string) {
	m.failures.WithLabelValues(source).Inc()
	m.failuresTotal.Add(1)
}

// PollTimeout implements bot.Observer.
func (m *Metrics) PollTimeout() {
	m.pollTimeouts.Inc()
	m.timeoutsTotal.Add(1)
}

// ReplyThrottled records a reply dropped by the rate limiter.
func (m *Metrics) ReplyThrottled() {
	m.throttled.Inc()
}

// JobRun records the outcome of a scheduled job.
func (m *Metrics) JobRun(job string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.jobRuns.WithLabelValues(job, outcome).Inc()
}

// ConfigReload records the outcome of a configuration reload.
func (m *Metrics) ConfigReload(err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.reloads.WithLabelValues(outcome).Inc()
}

// InstrumentTransport wraps next so every Bot API call is counted and
// timed. The method label is the last path segment of the request URL.
func (m *Metrics) InstrumentTransport(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		method := path.Base(req.URL.Path)
		start := time.Now()
		resp, err := next.RoundTrip(req)
		m.apiLatency.WithLabelValues(method).Observe(time.Since(start).Seconds())

		code := "error"
		if err == nil {
			code = strconv.Itoa(resp.StatusCode)
		}
		m.apiRequests.WithLabelValues(method, code).Inc()
		return resp, err
	})
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// Snapshot returns a point-in-time view of the delivery counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Updates:      m.updatesTotal.Load(),
		Failures:     m.failuresTotal.Load(),
		PollTimeouts: m.timeoutsTotal.Load(),
	}
}

// MetricsSnapshot is a serializable point-in-time metrics view.
type MetricsSnapshot struct {
	Updates      int64 `json:"updates"`
	Failures     int64 `json:"failures"`
	PollTimeouts int64 `json:"poll_timeouts"`
}
