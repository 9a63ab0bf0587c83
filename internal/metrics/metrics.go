// Package metrics exposes Prometheus collectors for merges and renders.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records merge and render outcomes. It satisfies the observer
// interfaces of the attendance and view packages.
type Collector struct {
	mergeLatency prometheus.Histogram
	mergeFail    prometheus.Counter
	mergeRows    prometheus.Histogram
	renders      *prometheus.CounterVec
	stale        prometheus.Counter
}

// NewCollector creates a Collector and registers it with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		mergeLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "attendview_merge_duration_seconds",
			Help:    "Time spent fetching and merging a session with the roster.",
			Buckets: prometheus.DefBuckets,
		}),
		mergeFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "attendview_merge_failures_total",
			Help: "Merges that failed because a retrieval failed.",
		}),
		mergeRows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "attendview_merge_rows",
			Help:    "Rows produced per successful merge.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attendview_renders_total",
			Help: "Render requests by filter.",
		}, []string{"filter"}),
		stale: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "attendview_stale_renders_total",
			Help: "Renders dropped because a newer one was already applied.",
		}),
	}
	reg.MustRegister(c.mergeLatency, c.mergeFail, c.mergeRows, c.renders, c.stale)
	return c
}

// ObserveMerge records one merge.
func (c *Collector) ObserveMerge(d time.Duration, rows int, err error) {
	c.mergeLatency.Observe(d.Seconds())
	if err != nil {
		c.mergeFail.Inc()
		return
	}
	c.mergeRows.Observe(float64(rows))
}

// ObserveRender counts a render by filter; "" is reported as "all".
func (c *Collector) ObserveRender(filter string, rows int) {
	if filter == "" {
		filter = "all"
	}
	c.renders.WithLabelValues(filter).Inc()
}

// ObserveStale counts a dropped stale render.
func (c *Collector) ObserveStale() {
	c.stale.Inc()
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
