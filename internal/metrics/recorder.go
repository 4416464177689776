// Package metrics records build observability metrics.
//
// Components receive a Recorder by injection; the default NoopRecorder keeps
// metrics free when nothing is scraping them, and the Prometheus
// implementation is activated by the preview server.
package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder receives build pipeline events.
type Recorder interface {
	BuildCompleted(outcome string, dur time.Duration)
	PageRendered()
	PageSkipped()
	BrokenLink()
}

// NoopRecorder is the default Recorder; every method is a no-op.
type NoopRecorder struct{}

func (NoopRecorder) BuildCompleted(string, time.Duration) {}
func (NoopRecorder) PageRendered()                        {}
func (NoopRecorder) PageSkipped()                         {}
func (NoopRecorder) BrokenLink()                          {}

// PrometheusRecorder implements Recorder with Prometheus collectors.
type PrometheusRecorder struct {
	buildDuration prom.Histogram
	buildOutcome  *prom.CounterVec
	pagesRendered prom.Counter
	pagesSkipped  prom.Counter
	brokenLinks   prom.Counter
}

// NewPrometheusRecorder constructs and registers the collectors on reg.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	r := &PrometheusRecorder{
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Name:    "sitegen_build_duration_seconds",
			Help:    "Wall time of full site builds.",
			Buckets: prom.DefBuckets,
		}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Name: "sitegen_build_outcome_total",
			Help: "Builds by derived outcome.",
		}, []string{"outcome"}),
		pagesRendered: prom.NewCounter(prom.CounterOpts{
			Name: "sitegen_pages_rendered_total",
			Help: "Documents rendered to HTML.",
		}),
		pagesSkipped: prom.NewCounter(prom.CounterOpts{
			Name: "sitegen_pages_skipped_total",
			Help: "Documents skipped by the incremental cache.",
		}),
		brokenLinks: prom.NewCounter(prom.CounterOpts{
			Name: "sitegen_broken_links_total",
			Help: "Internal links that failed to resolve during rendering.",
		}),
	}
	reg.MustRegister(r.buildDuration, r.buildOutcome, r.pagesRendered, r.pagesSkipped, r.brokenLinks)
	return r
}

func (r *PrometheusRecorder) BuildCompleted(outcome string, dur time.Duration) {
	r.buildDuration.Observe(dur.Seconds())
	r.buildOutcome.WithLabelValues(outcome).Inc()
}

func (r *PrometheusRecorder) PageRendered() { r.pagesRendered.Inc() }
func (r *PrometheusRecorder) PageSkipped() { r.pagesSkipped.Inc() }
func (r *PrometheusRecorder) BrokenLink()  { r.brokenLinks.Inc() }

// Handler serves the registry in Prometheus exposition format.
func Handler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
