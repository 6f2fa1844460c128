package api

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "syllabot"

// Metrics owns its registry so several servers can live in one process.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	gateway         *prometheus.CounterVec
	topicsPersisted prometheus.Counter
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Handled requests by endpoint and response status.",
			},
			[]string{"endpoint", "status"},
		),
		gateway: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "gateway_responses_total",
				Help:      "Completion gateway responses by mode and status.",
			},
			[]string{"mode", "status"},
		),
		topicsPersisted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "topics_persisted_total",
				Help:      "Topics stored by successful extractions.",
			},
		),
	}

	m.registry.MustRegister(
		m.requests,
		m.gateway,
		m.topicsPersisted,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveGateway has the shape of llm.Observer.
func (m *Metrics) ObserveGateway(mode string, status int) {
	m.gateway.WithLabelValues(mode, strconv.Itoa(status)).Inc()
}

func (m *Metrics) observeRequest(endpoint string, status int) {
	m.requests.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
}

func (m *Metrics) observeTopics(n int) {
	m.topicsPersisted.Add(float64(n))
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
