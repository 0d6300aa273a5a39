package middleware

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// enforcementDecisions 按结果统计授权判定：
// allowed / denied / unauthorized / error
var enforcementDecisions = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "admin_core",
		Subsystem: "authz",
		Name:      "decisions_total",
		Help:      "Authorization middleware decisions by outcome.",
	},
	[]string{"decision"},
)
