package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder collects client metrics on its own registry.
type Recorder struct {
	registry  *prometheus.Registry
	requests  *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	exports   prometheus.Counter
	reminders prometheus.Counter
	commands  *prometheus.CounterVec
}

// NewRecorder creates a Recorder with Go runtime and process collectors registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lembas",
			Name:      "api_requests_total",
			Help:      "Backend API requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "lembas",
			Name:      "api_request_duration_seconds",
			Help:      "Backend API request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		exports: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lembas",
			Name:      "shopping_list_exports_total",
			Help:      "Shopping lists exported as plaintext.",
		}),
		reminders: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lembas",
			Name:      "reminders_sent_total",
			Help:      "Recurring purchase reminders delivered.",
		}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lembas",
			Name:      "bot_commands_total",
			Help:      "Telegram commands handled by command name.",
		}, []string{"command"}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.requests,
		r.latency,
		r.exports,
		r.reminders,
		r.commands,
	)
	return r
}

// ObserveRequest records one backend call. Status 0 means the request failed before a response.
func (r *Recorder) ObserveRequest(method, route string, status int, d time.Duration) {
	r.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.latency.WithLabelValues(method, route).Observe(d.Seconds())
}

// IncExports counts a shopping list export.
func (r *Recorder) IncExports() { r.exports.Inc() }

// IncReminders counts a delivered reminder.
func (r *Recorder) IncReminders() { r.reminders.Inc() }

// IncCommand counts a handled bot command.
func (r *Recorder) IncCommand(command string) { r.commands.WithLabelValues(command).Inc() }

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
