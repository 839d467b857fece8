package prom

import (
	"net/http"

	"github.com/bnema/life-assistant/internal/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "life_assistant"

type Metrics struct {
	registry      *prometheus.Registry
	cycles        prometheus.Counter
	requests      *prometheus.CounterVec
	queueTasks    prometheus.Counter
	sequenceSteps *prometheus.CounterVec
}

var _ ports.Metrics = (*Metrics)(nil)

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		cycles: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_cycles_total",
			Help:      "Backend loop iterations completed.",
		}),
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_processed_total",
			Help:      "Requests answered by the backend, by response status.",
		}, []string{"status"}),
		queueTasks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queue_tasks_executed_total",
			Help:      "Processing queue entries executed.",
		}),
		sequenceSteps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sequence_steps_total",
			Help:      "Multi-cycle sequence transitions, by outcome.",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) CycleCompleted() {
	m.cycles.Inc()
}

func (m *Metrics) RequestProcessed(status string) {
	m.requests.WithLabelValues(status).Inc()
}

func (m *Metrics) QueueTaskExecuted() {
	m.queueTasks.Inc()
}

func (m *Metrics) SequenceStep(outcome string) {
	m.sequenceSteps.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
