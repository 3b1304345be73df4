package backend

import "github.com/prometheus/client_golang/prometheus"

type serverMetrics struct {
	sessions      prometheus.Counter
	challenges    *prometheus.CounterVec
	verifications *prometheus.CounterVec
	throttled     prometheus.Counter
}

func newServerMetrics(reg prometheus.Registerer) (*serverMetrics, error) {
	m := &serverMetrics{
		sessions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "platform_dev",
			Name:      "sessions_created_total",
			Help:      "Sessions opened through InitSession.",
		}),
		challenges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "platform_dev",
			Name:      "challenges_issued_total",
			Help:      "Challenges issued, by bot-detection type.",
		}, []string{"bot_detection_type"}),
		verifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "platform_dev",
			Name:      "verifications_total",
			Help:      "Verify calls, by result.",
		}, []string{"result"}),
		throttled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "platform_dev",
			Name:      "challenges_throttled_total",
			Help:      "Challenge requests rejected by the per-device rate limit.",
		}),
	}
	for _, c := range []prometheus.Collector{m.sessions, m.challenges, m.verifications, m.throttled} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}
