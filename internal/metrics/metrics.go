// Package metrics exposes Prometheus counters for the sentiment pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SourceFailures counts primary source fetch failures by source and reason.
	SourceFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "investment_agent",
		Name:      "source_failures_total",
		Help:      "Sentiment source fetch failures",
	}, []string{"source", "reason"})

	// Fusions counts completed fusions, split by whether the fallback fired.
	Fusions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "investment_agent",
		Name:      "fusions_total",
		Help:      "Completed sentiment fusions",
	}, []string{"fallback"})

	// Recommendations counts emitted recommendations by action.
	Recommendations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "investment_agent",
		Name:      "recommendations_total",
		Help:      "Emitted recommendations",
	}, []string{"action"})
)

// Handler returns the /metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
