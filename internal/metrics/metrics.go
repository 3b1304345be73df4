// Package metrics exposes Prometheus collectors for session initialization.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"sessiongate/internal/domain"
)

const namespace = "sessiongate"

// Initialization results used as the "result" label.
const (
	ResultReused      = "reused"
	ResultEstablished = "established"
	ResultFailed      = "failed"
)

// Metrics records initialization activity. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	initializations   *prometheus.CounterVec
	challengeAttempts *prometheus.CounterVec
	solveDuration     *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		initializations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "initializations_total",
			Help:      "Session initializations by result.",
		}, []string{"result"}),
		challengeAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "challenge_attempts_total",
			Help:      "Challenges received, by bot-detection type.",
		}, []string{"bot_detection_type"}),
		solveDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "solve_duration_seconds",
			Help:      "Time spent in challenge solvers.",
			Buckets:   []float64{0.01, 0.1, 0.5, 1, 5, 15, 30, 60, 120},
		}, []string{"bot_detection_type", "result"}),
	}
	var err error
	if m.initializations, err = register(reg, m.initializations); err != nil {
		return nil, err
	}
	if m.challengeAttempts, err = register(reg, m.challengeAttempts); err != nil {
		return nil, err
	}
	if m.solveDuration, err = register(reg, m.solveDuration); err != nil {
		return nil, err
	}
	return m, nil
}

// register adds c to reg, or returns the collector already registered under
// the same descriptor.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// ObserveInitialization counts one finished Initialize call.
func (m *Metrics) ObserveInitialization(result string) {
	if m == nil {
		return
	}
	m.initializations.WithLabelValues(result).Inc()
}

// ObserveChallenge counts one received challenge.
func (m *Metrics) ObserveChallenge(t domain.BotDetectionType) {
	if m == nil {
		return
	}
	m.challengeAttempts.WithLabelValues(t.String()).Inc()
}

// ObserveSolve records how long a solver ran and whether it succeeded.
func (m *Metrics) ObserveSolve(t domain.BotDetectionType, d time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.solveDuration.WithLabelValues(t.String(), result).Observe(d.Seconds())
}
