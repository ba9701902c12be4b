package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RulesApplied counts transactions (re)categorized by a splitting
	// rule, labelled by the matching rule's type.
	RulesApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hearthshare_rules_applied_total",
		Help: "Transactions categorized by a splitting rule.",
	}, []string{"rule_type"})

	// RuleRuns counts full rule-application passes over a household.
	RuleRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hearthshare_rule_runs_total",
		Help: "Rule application passes over a household.",
	})

	// RequestDuration tracks HTTP handler latency by route.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hearthshare_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)
