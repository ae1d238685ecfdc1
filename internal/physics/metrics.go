package physics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics — Prometheus-метрики интегратора. nil допустим.
type Metrics struct {
	updates        prometheus.Counter
	hugIterations  prometheus.Histogram
	hugExhausted   prometheus.Counter
	transitions    *prometheus.CounterVec
	rollbacks      prometheus.Counter
	anchorFailures prometheus.Counter
}

// NewMetrics создаёт метрики интегратора и регистрирует их в reg (если не nil)
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		updates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "trile",
			Subsystem: "physics",
			Name:      "updates_total",
			Help:      "Шагов интегратора по всем сущностям.",
		}),
		hugIterations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "trile",
			Subsystem: "physics",
			Name:      "hug_iterations",
			Help:      "Итераций цикла стабилизации прижатия к стенам.",
			Buckets:   []float64{1, 2, 3, 4, 8, 16},
		}),
		hugExhausted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "trile",
			Subsystem: "physics",
			Name:      "hug_exhausted_total",
			Help:      "Циклов стабилизации, упёршихся в лимит итераций.",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trile",
			Subsystem: "physics",
			Name:      "background_transitions_total",
			Help:      "Переходов между передним и фоновым слоем.",
		}, []string{"direction"}),
		rollbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "trile",
			Subsystem: "physics",
			Name:      "background_rollbacks_total",
			Help:      "Откатов перехода в фон из-за потери опоры.",
		}),
		anchorFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "trile",
			Subsystem: "physics",
			Name:      "anchor_failures_total",
			Help:      "Неудачных переносов подвижного трайла в решётке.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.updates, m.hugIterations, m.hugExhausted, m.transitions, m.rollbacks, m.anchorFailures)
	}
	return m
}

func (m *Metrics) update() {
	if m != nil {
		m.updates.Inc()
	}
}

func (m *Metrics) hugLoop(iterations int, exhausted bool) {
	if m == nil {
		return
	}
	m.hugIterations.Observe(float64(iterations))
	if exhausted {
		m.hugExhausted.Inc()
	}
}

func (m *Metrics) transition(background bool) {
	if m == nil {
		return
	}
	if background {
		m.transitions.WithLabelValues("enter").Inc()
	} else {
		m.transitions.WithLabelValues("leave").Inc()
	}
}

func (m *Metrics) rollback() {
	if m != nil {
		m.rollbacks.Inc()
	}
}

func (m *Metrics) anchorFailure() {
	if m != nil {
		m.anchorFailures.Inc()
	}
}
