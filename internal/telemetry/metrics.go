package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"

	"millionaire-service/internal/domain"
)

const namespace = "millionaire"

// Metrics counts game activity. A nil *Metrics records nothing.
type Metrics struct {
	gamesStarted  prometheus.Counter
	gamesFinished *prometheus.CounterVec
	answers       *prometheus.CounterVec
	helpUsed      *prometheus.CounterVec
}

// NewMetrics registers the game collectors on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		gamesStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_started_total",
			Help:      "Games started.",
		}),
		gamesFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_finished_total",
			Help:      "Games finished, by final status.",
		}, []string{"status"}),
		answers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "answers_total",
			Help:      "Answers submitted, by result.",
		}, []string{"result"}),
		helpUsed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "help_used_total",
			Help:      "Lifelines consumed, by kind.",
		}, []string{"kind"}),
	}

	for _, c := range []prometheus.Collector{m.gamesStarted, m.gamesFinished, m.answers, m.helpUsed} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) GameStarted() {
	if m == nil {
		return
	}
	m.gamesStarted.Inc()
}

func (m *Metrics) GameFinished(s domain.Status) {
	if m == nil {
		return
	}
	m.gamesFinished.WithLabelValues(s.String()).Inc()
}

func (m *Metrics) Answered(correct bool) {
	if m == nil {
		return
	}
	result := "wrong"
	if correct {
		result = "correct"
	}
	m.answers.WithLabelValues(result).Inc()
}

func (m *Metrics) HelpUsed(k domain.HelpKind) {
	if m == nil {
		return
	}
	m.helpUsed.WithLabelValues(k.String()).Inc()
}
