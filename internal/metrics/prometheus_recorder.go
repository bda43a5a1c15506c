package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "docbib"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once             sync.Once
	populateDuration prom.Histogram
	entriesFormatted prom.Counter
	styleFallbacks   *prom.CounterVec
	directiveResults *prom.CounterVec
	documentResults  *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.populateDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "populate_duration_seconds",
			Help:      "Duration of context population calls",
			Buckets:   prom.DefBuckets,
		})
		pr.entriesFormatted = prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "entries_formatted_total",
			Help:      "Bibliography entries formatted",
		})
		pr.styleFallbacks = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "style_fallbacks_total",
			Help:      "Custom style fallbacks to the plain style by reason",
		}, []string{"reason"})
		pr.directiveResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "directive_results_total",
			Help:      "Bibliography directive invocations by result",
		}, []string{"result"})
		pr.documentResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "document_results_total",
			Help:      "Rendered documents by result",
		}, []string{"result"})
		reg.MustRegister(pr.populateDuration, pr.entriesFormatted, pr.styleFallbacks, pr.directiveResults, pr.documentResults)
	})
	return pr
}

func (p *PrometheusRecorder) ObservePopulateDuration(d time.Duration) {
	if p == nil || p.populateDuration == nil {
		return
	}
	p.populateDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) AddEntriesFormatted(n int) {
	if p == nil || p.entriesFormatted == nil || n <= 0 {
		return
	}
	p.entriesFormatted.Add(float64(n))
}

func (p *PrometheusRecorder) IncStyleFallback(reason string) {
	if p == nil || p.styleFallbacks == nil {
		return
	}
	p.styleFallbacks.WithLabelValues(reason).Inc()
}

func (p *PrometheusRecorder) IncDirectiveResult(result ResultLabel) {
	if p == nil || p.directiveResults == nil {
		return
	}
	p.directiveResults.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) IncDocumentResult(result ResultLabel) {
	if p == nil || p.documentResults == nil {
		return
	}
	p.documentResults.WithLabelValues(string(result)).Inc()
}
