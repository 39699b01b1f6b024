package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeSuccess = "success"
)

var (
	authOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "authcore",
		Name:      "auth_operations_total",
		Help:      "Auth operations by operation and outcome code.",
	}, []string{"operation", "outcome"})

	refreshTokensPruned = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "authcore",
		Name:      "refresh_tokens_pruned_total",
		Help:      "Expired refresh tokens removed by the pruner.",
	})
)

// outcomeは"success"かエラーコード
func ObserveAuth(operation, outcome string) {
	authOperations.WithLabelValues(operation, outcome).Inc()
}

func AddPruned(n int64) {
	if n > 0 {
		refreshTokensPruned.Add(float64(n))
	}
}
