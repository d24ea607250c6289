package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PipelineMetrics captures per-stage outcomes of the tenant pipeline.
type PipelineMetrics interface {
	IncAllowed(stage string)
	IncDenied(stage, kind string)
}

// Noop implements PipelineMetrics without emitting anything.
type Noop struct{}

func (Noop) IncAllowed(string)        {}
func (Noop) IncDenied(string, string) {}

// Prom implements PipelineMetrics backed by Prometheus counters.
type Prom struct {
	allowed *prometheus.CounterVec
	denied  *prometheus.CounterVec
}

// NewProm registers the pipeline counters with the default registry and
// panics if they are already registered. Construct it once at startup.
func NewProm(namespace string) *Prom {
	p := &Prom{
		allowed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_allowed_total",
			Help:      "Requests allowed through a pipeline stage",
		}, []string{"stage"}),
		denied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_denied_total",
			Help:      "Requests denied by a pipeline stage, by error kind",
		}, []string{"stage", "kind"}),
	}
	prometheus.MustRegister(p.allowed, p.denied)
	return p
}

func (p *Prom) IncAllowed(stage string) {
	p.allowed.WithLabelValues(stage).Inc()
}

func (p *Prom) IncDenied(stage, kind string) {
	p.denied.WithLabelValues(stage, kind).Inc()
}

// Handler exposes the default registry for scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}
