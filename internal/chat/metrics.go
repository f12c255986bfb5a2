package chat

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	turnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tasq_chat_turns_total",
		Help: "Chat turns processed, by resolved category and outcome.",
	}, []string{"category", "status"})

	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tasq_result_cache_hits_total",
		Help: "Query results served from the cache instead of the database.",
	})

	sessionsEvictedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tasq_sessions_evicted_total",
		Help: "Sessions dropped after exceeding the idle timeout.",
	})
)

// ObserveEvictions wires the conversation store's eviction callback into the
// session metric.
func ObserveEvictions(n int) {
	sessionsEvictedTotal.Add(float64(n))
}
