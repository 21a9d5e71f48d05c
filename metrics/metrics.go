// Package metrics holds the Prometheus collectors of the wordsplit service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	Segmentations *prometheus.CounterVec
	Latency       prometheus.Histogram
	ModelBuilds   *prometheus.CounterVec
	ModelWords    prometheus.Gauge
}

// New creates the collectors and registers them on reg. A nil reg skips
// registration.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Segmentations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wordsplit_segmentations_total",
				Help: "Texts segmented, by endpoint.",
			},
			[]string{"endpoint"},
		),
		Latency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "wordsplit_segmentation_seconds",
				Help:    "Time spent segmenting a single text.",
				Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
		),
		ModelBuilds: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wordsplit_model_builds_total",
				Help: "Cost model builds, by result.",
			},
			[]string{"result"},
		),
		ModelWords: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "wordsplit_model_words",
				Help: "Entries in the active cost model.",
			},
		),
	}
	if reg != nil {
		for _, c := range []prometheus.Collector{m.Segmentations, m.Latency, m.ModelBuilds, m.ModelWords} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

// ObserveSegment records one segmentation that started at start.
func (m *Metrics) ObserveSegment(endpoint string, start time.Time) {
	m.Segmentations.WithLabelValues(endpoint).Inc()
	m.Latency.Observe(time.Since(start).Seconds())
}

// ObserveBatch records n segmentations that together started at start. The
// latency histogram gets the mean per text.
func (m *Metrics) ObserveBatch(n int, start time.Time) {
	if n == 0 {
		return
	}
	m.Segmentations.WithLabelValues("batch").Add(float64(n))
	m.Latency.Observe(time.Since(start).Seconds() / float64(n))
}

// ObserveBuild records a model build; words is ignored when err is set.
func (m *Metrics) ObserveBuild(words int, err error) {
	if err != nil {
		m.ModelBuilds.WithLabelValues("error").Inc()
		return
	}
	m.ModelBuilds.WithLabelValues("ok").Inc()
	m.ModelWords.Set(float64(words))
}
