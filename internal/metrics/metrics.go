// Package metrics exposes atom and session activity as Prometheus metrics.
//
// Metrics collected:
//   - atom_updates_total: Counter of notification passes by atom
//   - atom_subscribers: Gauge of current subscribers by atom
//   - atom_notify_duration_seconds: Histogram of notification pass duration
//   - atom_notifications_total: Counter of callbacks delivered by atom
//   - atom_active_sessions: Gauge of live WebSocket sessions
//   - atom_patches_sent_total: Counter of patches sent to clients
//   - atom_events_total: Counter of client events by type and status
//   - atom_websocket_errors_total: Counter of WebSocket errors by type
//
// A Collector implements atom.Observer, so it is attached to an atom with
// atom.WithObserver.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config configures a Collector.
type Config struct {
	// Namespace is the metrics namespace (default: "atom").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for notification duration.
	Buckets []float64

	// Registerer receives the metrics. Default: prometheus.DefaultRegisterer
	Registerer prometheus.Registerer

	// Gatherer backs Handler. Default: prometheus.DefaultGatherer
	Gatherer prometheus.Gatherer
}

// Option configures a Collector.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry registers into reg and serves from it.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(c *Config) {
		c.Registerer = reg
		c.Gatherer = reg
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "atom",
		// Notification passes are in-process; most finish well under a millisecond.
		Buckets:    []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05, .1},
		Registerer: prometheus.DefaultRegisterer,
		Gatherer:   prometheus.DefaultGatherer,
	}
}

// Collector holds the Prometheus metrics.
type Collector struct {
	gatherer prometheus.Gatherer

	updatesTotal   *prometheus.CounterVec
	notifications  *prometheus.CounterVec
	subscribers    *prometheus.GaugeVec
	notifyDuration *prometheus.HistogramVec

	activeSessions prometheus.Gauge
	patchesSent    prometheus.Counter
	eventsTotal    *prometheus.CounterVec
	wsErrors       *prometheus.CounterVec
}

// New creates and registers a Collector.
// Registering twice into the same registry panics, as with promauto.
func New(opts ...Option) *Collector {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registerer)

	return &Collector{
		gatherer: config.Gatherer,

		updatesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "updates_total",
			Help:        "Total number of atom updates",
			ConstLabels: config.ConstLabels,
		}, []string{"atom"}),

		notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "notifications_total",
			Help:        "Total number of subscriber callbacks delivered",
			ConstLabels: config.ConstLabels,
		}, []string{"atom"}),

		subscribers: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "subscribers",
			Help:        "Current number of subscribers",
			ConstLabels: config.ConstLabels,
		}, []string{"atom"}),

		notifyDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "notify_duration_seconds",
			Help:        "Duration of a notification pass in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"atom"}),

		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_sessions",
			Help:        "Number of active WebSocket sessions",
			ConstLabels: config.ConstLabels,
		}),

		patchesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "patches_sent_total",
			Help:        "Total number of patches sent to clients",
			ConstLabels: config.ConstLabels,
		}),

		eventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "events_total",
			Help:        "Total number of client events processed",
			ConstLabels: config.ConstLabels,
		}, []string{"type", "status"}),

		wsErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "websocket_errors_total",
			Help:        "Total WebSocket errors by type",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),
	}
}

// Subscribed implements atom.Observer.
func (c *Collector) Subscribed(name string, subscribers int) {
	c.subscribers.WithLabelValues(name).Set(float64(subscribers))
}

// Unsubscribed implements atom.Observer.
func (c *Collector) Unsubscribed(name string, subscribers int) {
	c.subscribers.WithLabelValues(name).Set(float64(subscribers))
}

// Updated implements atom.Observer.
func (c *Collector) Updated(name string, notified int, elapsed time.Duration) {
	c.updatesTotal.WithLabelValues(name).Inc()
	c.notifications.WithLabelValues(name).Add(float64(notified))
	c.notifyDuration.WithLabelValues(name).Observe(elapsed.Seconds())
}

// SessionOpened records a new WebSocket session.
func (c *Collector) SessionOpened() {
	c.activeSessions.Inc()
}

// SessionClosed records the end of a WebSocket session.
func (c *Collector) SessionClosed() {
	c.activeSessions.Dec()
}

// RecordPatches records patches sent to a client.
func (c *Collector) RecordPatches(count int) {
	if count > 0 {
		c.patchesSent.Add(float64(count))
	}
}

// RecordEvent records one client event. A nil err counts as success.
func (c *Collector) RecordEvent(eventType string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	c.eventsTotal.WithLabelValues(eventType, status).Inc()
}

// RecordWSError records a WebSocket error.
func (c *Collector) RecordWSError(errorType string) {
	c.wsErrors.WithLabelValues(errorType).Inc()
}

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}
