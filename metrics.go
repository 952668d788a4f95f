package docket

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "docket"

// metrics are registered on the App's own registry so several Apps can
// coexist in one process.
type metrics struct {
	contactTotal *prometheus.CounterVec
	ogRenders    *prometheus.CounterVec
	ogDuration   prometheus.Histogram
	feedFailures *prometheus.CounterVec
	cacheReloads prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	f := promauto.With(reg)
	return &metrics{
		contactTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "contact_submissions_total",
			Help:      "Contact submissions by outcome",
		}, []string{"result"}),
		ogRenders: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "og_renders_total",
			Help:      "Open Graph image renders by outcome",
		}, []string{"result"}),
		ogDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "og_render_duration_seconds",
			Help:      "Duration of Open Graph image renders in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		feedFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "feed_failures_total",
			Help:      "Failed feed and sitemap generations",
		}, []string{"feed"}),
		cacheReloads: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "post_cache_reloads_total",
			Help:      "Post cache reloads from the content directory",
		}),
	}
}
