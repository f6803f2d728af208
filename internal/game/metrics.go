package game

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/annel0/arstack/internal/stack"
)

// Metrics игровые метрики Prometheus
type Metrics struct {
	gamesStarted   prometheus.Counter
	gamesOver      prometheus.Counter
	taps           *prometheus.CounterVec
	finalHeight    prometheus.Histogram
	activeSessions prometheus.Gauge
	highScore      prometheus.Gauge
}

// NewMetrics создаёт и регистрирует метрики в reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		gamesStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stack",
			Name:      "games_started_total",
			Help:      "Количество начатых партий.",
		}),
		gamesOver: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stack",
			Name:      "games_over_total",
			Help:      "Количество завершённых партий.",
		}),
		taps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stack",
			Name:      "taps_total",
			Help:      "Нажатия по результату.",
		}, []string{"result"}),
		finalHeight: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "stack",
			Name:      "final_height",
			Help:      "Итоговая высота башни.",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 35, 50, 75, 100, 150},
		}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "stack",
			Name:      "active_sessions",
			Help:      "Количество открытых сессий.",
		}),
		highScore: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "stack",
			Name:      "high_score",
			Help:      "Текущий рекорд высоты.",
		}),
	}

	reg.MustRegister(m.gamesStarted, m.gamesOver, m.taps, m.finalHeight, m.activeSessions, m.highScore)
	return m
}

// Все методы допускают nil-получатель: метрики необязательны

func (m *Metrics) gameStarted() {
	if m != nil {
		m.gamesStarted.Inc()
	}
}

func (m *Metrics) tap(o stack.Outcome) {
	if m == nil {
		return
	}
	switch {
	case o.Kind == stack.OutcomeGameOver:
		m.taps.WithLabelValues("gameover").Inc()
		m.gamesOver.Inc()
		m.finalHeight.Observe(float64(o.FinalHeight))
	case o.Perfect:
		m.taps.WithLabelValues("perfect").Inc()
	default:
		m.taps.WithLabelValues("slice").Inc()
	}
}

func (m *Metrics) sessions(n int) {
	if m != nil {
		m.activeSessions.Set(float64(n))
	}
}

func (m *Metrics) record(best int) {
	if m != nil {
		m.highScore.Set(float64(best))
	}
}
