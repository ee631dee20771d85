package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "sitecms"

// PrometheusRecorder implements Recorder with Prometheus collectors.
type PrometheusRecorder struct {
	renderDuration *prom.HistogramVec
	renderResults  *prom.CounterVec
	coalesced      *prom.CounterVec
	waiting        *prom.GaugeVec
	buildDuration  *prom.HistogramVec
	buildPages     prom.Gauge
}

// NewPrometheusRecorder constructs the collectors and registers them on reg.
// A nil registry gets a private one.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		renderDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Duration of render engine operations",
			Buckets:   prom.DefBuckets,
		}, []string{"kind", "result"}),
		renderResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "render_results_total",
			Help:      "Render operations by kind and outcome",
		}, []string{"kind", "result"}),
		coalesced: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "render_coalesced_total",
			Help:      "Render calls that joined an in-flight render",
		}, []string{"kind"}),
		waiting: prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "render_waiting_callers",
			Help:      "Callers currently waiting on a render",
		}, []string{"kind"}),
		buildDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Duration of full site builds",
			Buckets:   prom.DefBuckets,
		}, []string{"result"}),
		buildPages: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "build_pages",
			Help:      "Pages written by the last build",
		}),
	}
	reg.MustRegister(pr.renderDuration, pr.renderResults, pr.coalesced, pr.waiting, pr.buildDuration, pr.buildPages)
	return pr
}

func (p *PrometheusRecorder) ObserveRender(kind RenderKind, d time.Duration, success bool) {
	if p == nil {
		return
	}
	result := resultLabel(success)
	p.renderDuration.WithLabelValues(string(kind), result).Observe(d.Seconds())
	p.renderResults.WithLabelValues(string(kind), result).Inc()
}

func (p *PrometheusRecorder) IncCoalesced(kind RenderKind) {
	if p == nil {
		return
	}
	p.coalesced.WithLabelValues(string(kind)).Inc()
}

func (p *PrometheusRecorder) AddWaiting(kind RenderKind, delta int) {
	if p == nil {
		return
	}
	p.waiting.WithLabelValues(string(kind)).Add(float64(delta))
}

func (p *PrometheusRecorder) ObserveBuild(d time.Duration, pages int, success bool) {
	if p == nil {
		return
	}
	p.buildDuration.WithLabelValues(resultLabel(success)).Observe(d.Seconds())
	if success {
		p.buildPages.Set(float64(pages))
	}
}
