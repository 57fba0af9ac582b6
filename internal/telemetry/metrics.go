package telemetry

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bjaus/mvc"
)

const namespace = "usermanager"

// Metrics holds the dispatch metrics.
type Metrics struct {
	dispatches *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	notFound   prometheus.Counter
}

// NewMetrics registers the dispatch metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		dispatches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatches_total",
			Help:      "Total number of dispatched actions by outcome status",
		}, []string{"controller", "action", "status"}),

		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "action_duration_seconds",
			Help:      "Action execution duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"controller", "action"}),

		notFound: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "not_found_total",
			Help:      "Total number of paths that did not resolve to an action",
		}),
	}
}

// Options returns router options recording into m.
func (m *Metrics) Options() []mvc.Option {
	return []mvc.Option{
		mvc.WithOnSuccess(func(_ context.Context, t mvc.Target, d time.Duration) {
			m.dispatches.WithLabelValues(t.Controller, t.Action, "200").Inc()
			m.duration.WithLabelValues(t.Controller, t.Action).Observe(d.Seconds())
		}),
		mvc.WithOnFailure(func(_ context.Context, t mvc.Target, err error, d time.Duration) {
			m.dispatches.WithLabelValues(t.Controller, t.Action, strconv.Itoa(mvc.StatusOf(err))).Inc()
			m.duration.WithLabelValues(t.Controller, t.Action).Observe(d.Seconds())
		}),
		mvc.WithOnNotFound(func(context.Context, string, error) {
			m.notFound.Inc()
		}),
	}
}
