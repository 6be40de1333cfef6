package app

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metrics are the Prometheus metrics served in watch mode. Each App owns its
// own registry so that several apps, e.g. in tests, never collide.
type metrics struct {
	registry *prometheus.Registry

	compilations *prometheus.CounterVec
	duration     prometheus.Histogram
	layers       prometheus.Gauge
	baked        prometheus.Gauge
	warnings     prometheus.Gauge
	generation   prometheus.Gauge
}

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &metrics{
		registry: reg,
		compilations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reactbake",
			Name:      "compilations_total",
			Help:      "Total number of compilations by result.",
		}, []string{"result"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "reactbake",
			Name:      "compilation_duration_seconds",
			Help:      "Duration of a compilation, including scene loading.",
			Buckets:   prometheus.DefBuckets,
		}),
		layers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "reactbake",
			Name:      "layers",
			Help:      "Number of layers produced by the last successful compilation.",
		}),
		baked: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "reactbake",
			Name:      "baked_properties",
			Help:      "Number of properties baked by the last successful compilation.",
		}),
		warnings: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "reactbake",
			Name:      "warnings",
			Help:      "Number of warnings of the last successful compilation.",
		}),
		generation: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "reactbake",
			Name:      "generation",
			Help:      "Generation of the last successful compilation.",
		}),
	}
}

func (m *metrics) observe(r *Report, err error, d time.Duration) {
	m.duration.Observe(d.Seconds())
	if err != nil {
		m.compilations.WithLabelValues("error").Inc()
		return
	}
	m.compilations.WithLabelValues("ok").Inc()
	m.layers.Set(float64(len(r.Layers)))
	m.baked.Set(float64(len(r.Baked)))
	m.warnings.Set(float64(len(r.Warnings)))
	m.generation.Set(float64(r.Generation))
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
