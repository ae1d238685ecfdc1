package sim

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics — метрики цикла симуляции. nil допустим.
type Metrics struct {
	ticks        prometheus.Counter
	tickDuration prometheus.Histogram
	rotations    prometheus.Counter
	entities     *prometheus.GaugeVec
}

// NewMetrics создаёт метрики симуляции и регистрирует их в reg (если не nil)
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "trile",
			Subsystem: "sim",
			Name:      "ticks_total",
			Help:      "Выполненных тиков симуляции.",
		}),
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "trile",
			Subsystem: "sim",
			Name:      "tick_duration_seconds",
			Help:      "Длительность одного тика.",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 2, 12),
		}),
		rotations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "trile",
			Subsystem: "sim",
			Name:      "rotations_total",
			Help:      "Завершённых поворотов камеры.",
		}),
		entities: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "trile",
			Subsystem: "sim",
			Name:      "entities",
			Help:      "Сущностей в симуляции.",
		}, []string{"kind"}),
	}
	if reg != nil {
		reg.MustRegister(m.ticks, m.tickDuration, m.rotations, m.entities)
	}
	return m
}

func (m *Metrics) tick(d time.Duration) {
	if m == nil {
		return
	}
	m.ticks.Inc()
	m.tickDuration.Observe(d.Seconds())
}

func (m *Metrics) rotation() {
	if m != nil {
		m.rotations.Inc()
	}
}

func (m *Metrics) setEntities(platforms, others int) {
	if m == nil {
		return
	}
	m.entities.WithLabelValues("platform").Set(float64(platforms))
	m.entities.WithLabelValues("entity").Set(float64(others))
}
