// Package metrics holds the Prometheus instruments apiguard exports.  All
// collectors are registered with the global registry, so mounting
// promhttp.Handler() in main.go is enough to expose them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RejectedTotal counts requests refused by a validation rule.  The
	// rule label is a validator tag ("safepath", "region") or "size".
	RejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apiguard_rejected_total",
			Help: "Requests rejected by input validation, by rule.",
		}, []string{"rule"})

	ProxiedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apiguard_proxied_total",
			Help: "Requests forwarded upstream, by response status code.",
		}, []string{"code"})

	ClientLogEntriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apiguard_client_log_entries_total",
			Help: "Client log entries accepted on /logs, by level.",
		}, []string{"level"})
)

func init() {
	prometheus.MustRegister(
		RejectedTotal,
		ProxiedTotal,
		ClientLogEntriesTotal,
	)
}
