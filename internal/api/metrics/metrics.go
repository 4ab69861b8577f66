// Package metrics defines the custom Prometheus metrics for the cr8s API.
// It is the single source of truth for metric names, labels, and help
// strings. Metrics register with the default registry at import time; the
// router exposes them on GET /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "cr8s"

// LoginAttemptsTotal counts login attempts.
// Label:
//   - result: "success", "unauthorized", or "error" (infrastructure failure)
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// SessionResolutionsTotal counts bearer-token resolutions performed by the
// authentication middleware.
// Label:
//   - result: "hit" (token resolved to a user) or "miss" (rejected)
var SessionResolutionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_resolutions_total",
		Help:      "Total number of session token resolutions, by result.",
	},
	[]string{"result"},
)
