package collision

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics — Prometheus-метрики движка запросов. nil допустим: метрики выключены.
type Metrics struct {
	queries  *prometheus.CounterVec
	collided prometheus.Counter
	retries  prometheus.Counter
	clamps   prometheus.Counter
}

// NewMetrics создаёт метрики и регистрирует их в reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trile",
			Subsystem: "collision",
			Name:      "queries_total",
			Help:      "Количество запросов столкновений по видам.",
		}, []string{"kind"}),
		collided: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "trile",
			Subsystem: "collision",
			Name:      "point_hits_total",
			Help:      "Точечных запросов, завершившихся столкновением.",
		}),
		retries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "trile",
			Subsystem: "collision",
			Name:      "background_fall_retries_total",
			Help:      "Повторных проб из исходной точки при падении в фоновом слое.",
		}),
		clamps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "trile",
			Subsystem: "collision",
			Name:      "clamp_suggestions_total",
			Help:      "Предложений прижать сущность к земле.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.queries, m.collided, m.retries, m.clamps)
	}
	return m
}

func (m *Metrics) query(kind string) {
	if m != nil {
		m.queries.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) hit() {
	if m != nil {
		m.collided.Inc()
	}
}

func (m *Metrics) retry() {
	if m != nil {
		m.retries.Inc()
	}
}

func (m *Metrics) clamp() {
	if m != nil {
		m.clamps.Inc()
	}
}
