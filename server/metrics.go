package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	builds   *prometheus.CounterVec
	duration prometheus.Histogram
	entries  prometheus.Gauge
}

func newMetrics(registry prometheus.Registerer) *metrics {
	factory := promauto.With(registry)

	return &metrics{
		builds: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "blogfeed_builds_total",
			Help: "Feed builds by outcome",
		}, []string{"outcome"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "blogfeed_build_duration_seconds",
			Help:    "Time spent building and serializing the feed",
			Buckets: prometheus.DefBuckets,
		}),
		entries: factory.NewGauge(prometheus.GaugeOpts{
			Name: "blogfeed_feed_entries",
			Help: "Number of entries in the most recently served feed",
		}),
	}
}
