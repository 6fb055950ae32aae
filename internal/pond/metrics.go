package pond

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/zoobzio/cell"
)

// OtherActionType labels dispatches of action types the metrics were not
// told about. Action types arrive from inboxes, so they are not trusted as
// label values.
const OtherActionType = "other"

// Metrics is a cell.MetricsProvider backed by Prometheus collectors on a
// private registry.
type Metrics struct {
	registry *prometheus.Registry
	known    map[string]struct{}

	dispatches   *prometheus.CounterVec
	rejections   *prometheus.CounterVec
	duration     prometheus.Histogram
	listeners    prometheus.Gauge
	replacements prometheus.Counter
}

var _ cell.MetricsProvider = (*Metrics)(nil)

// NewMetrics creates the collectors under namespace and registers them.
// Dispatches of AddDuck, RemoveDuck and actionTypes are labelled with their
// type; any other type is counted as OtherActionType.
func NewMetrics(namespace string, actionTypes ...string) *Metrics {
	known := map[string]struct{}{AddDuck: {}, RemoveDuck: {}}
	for _, typ := range actionTypes {
		known[typ] = struct{}{}
	}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
		known:    known,
		dispatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "store",
				Name:      "dispatches_total",
				Help:      "Total number of actions that reached the reducer.",
			},
			[]string{"action_type", "changed"},
		),
		rejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "store",
				Name:      "rejections_total",
				Help:      "Total number of actions rejected before the reducer.",
			},
			[]string{"reason"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "store",
				Name:      "dispatch_duration_seconds",
				Help:      "Duration of reducer and listener notification.",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10), // 10us to ~2.6s
			},
		),
		listeners: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "store",
				Name:      "listeners",
				Help:      "Current number of listener registrations.",
			},
		),
		replacements: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "store",
				Name:      "reducer_replacements_total",
				Help:      "Total number of reducer replacements.",
			},
		),
	}

	m.registry.MustRegister(
		m.dispatches,
		m.rejections,
		m.duration,
		m.listeners,
		m.replacements,
	)
	return m
}

// Registry returns the registry holding the pond collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// OnDispatch implements cell.MetricsProvider.
func (m *Metrics) OnDispatch(actionType string, changed bool, duration time.Duration) {
	m.dispatches.WithLabelValues(m.label(actionType), strconv.FormatBool(changed)).Inc()
	m.duration.Observe(duration.Seconds())
}

func (m *Metrics) label(actionType string) string {
	if _, ok := m.known[actionType]; ok {
		return actionType
	}
	return OtherActionType
}

// OnDispatchRejected implements cell.MetricsProvider.
func (m *Metrics) OnDispatchRejected(reason string) {
	m.rejections.WithLabelValues(reason).Inc()
}

// OnListenersChanged implements cell.MetricsProvider.
func (m *Metrics) OnListenersChanged(count int) {
	m.listeners.Set(float64(count))
}

// OnReducerReplaced implements cell.MetricsProvider.
func (m *Metrics) OnReducerReplaced() {
	m.replacements.Inc()
}

// WriteText writes every gathered metric family in the Prometheus text
// exposition format.
func (m *Metrics) WriteText(w io.Writer) error {
	families, err := m.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metric %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
