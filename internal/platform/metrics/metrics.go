// Package metrics registers the Prometheus collectors for the service.
// Collectors are package-level so importing packages share one registration.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LoginsCompleted counts OAuth flows that reached the completed state.
	LoginsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "leagueledger_logins_completed_total",
		Help: "Total number of OAuth login flows completed successfully",
	})

	// LoginFailures counts terminal flow failures by stage.
	LoginFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "leagueledger_login_failures_total",
		Help: "Total number of OAuth login flows that ended in an error state",
	}, []string{"stage"})

	// ProviderCallDuration tracks latency of outbound provider calls.
	ProviderCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "leagueledger_provider_call_duration_seconds",
		Help:    "Latency of calls to the identity provider",
		Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"call"})

	// LedgerOperations counts ledger API operations by kind.
	LedgerOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "leagueledger_ledger_operations_total",
		Help: "Total number of ledger operations handled",
	}, []string{"op"})
)
