// Package metrics defines the custom Prometheus metrics of the users API.
// HTTP request metrics come from echoprometheus; the counters here record
// domain outcomes the request metrics cannot see.
//
// All metrics register with the default Prometheus registry on package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "acquisitions"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts signup, signin and signout attempts.
// Labels:
//   - operation: "signup", "signin" or "signout"
//   - outcome: "success", "conflict", "invalid_credentials", "invalid", "error"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of authentication attempts, by operation and outcome.",
	},
	[]string{"operation", "outcome"},
)

// ── User metrics ──────────────────────────────────────────────────────────────

// UserOperationsTotal counts user reads and mutations.
// Labels:
//   - operation: "list", "get", "update" or "delete"
//   - outcome: "success", "not_found", "forbidden", "conflict", "invalid", "error"
var UserOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "user_operations_total",
		Help:      "Total number of user operations, by operation and outcome.",
	},
	[]string{"operation", "outcome"},
)

// ── Security metrics ──────────────────────────────────────────────────────────

// RateLimitedTotal counts requests rejected by the rate limiter.
var RateLimitedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_requests_total",
		Help:      "Total number of requests rejected with 429.",
	},
)
