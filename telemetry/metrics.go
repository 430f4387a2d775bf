package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exports evolution progress to Prometheus.
type Metrics struct {
	registry *prometheus.Registry

	generations    prometheus.Counter
	bestFitness    prometheus.Gauge
	averageFitness prometheus.Gauge
	worstFitness   prometheus.Gauge
	duration       prometheus.Histogram
}

// NewMetrics creates the evolution metrics on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		generations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "physarum_generations_total",
			Help: "Evaluated generations.",
		}),
		bestFitness: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "physarum_best_fitness",
			Help: "Aggregated fitness of the best organism of the last generation.",
		}),
		averageFitness: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "physarum_average_fitness",
			Help: "Mean aggregated fitness of the last generation.",
		}),
		worstFitness: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "physarum_worst_fitness",
			Help: "Aggregated fitness of the worst organism of the last generation.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "physarum_generation_duration_seconds",
			Help:    "Wall time spent evaluating a generation.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 14),
		}),
	}
	m.registry.MustRegister(m.generations, m.bestFitness, m.averageFitness, m.worstFitness, m.duration)
	return m
}

// Observe records one generation. Safe to call on a nil receiver.
func (m *Metrics) Observe(s GenerationStats) {
	if m == nil {
		return
	}
	m.generations.Inc()
	m.bestFitness.Set(s.BestFitness)
	m.averageFitness.Set(s.AverageFitness)
	m.worstFitness.Set(s.WorstFitness)
	m.duration.Observe(s.Duration.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
