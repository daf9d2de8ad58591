// Package metrics defines and registers the custom Prometheus metrics of the
// proxy account service. It is the single source of truth for metric names,
// labels, and help strings.
//
// All metrics register with the default Prometheus registry on package
// initialisation through promauto. HTTP request metrics come from the
// echoprometheus middleware wired in the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "proxy_accounts"

// Result label values.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// ── Authentication metrics ───────────────────────────────────────────────────

// AuthenticationsTotal counts password checks.
// Labels:
//   - method: "verify" (POST /auth/verify) or "basic" (admin routes)
//   - result: "success" or "failure"; unknown users count as failures
var AuthenticationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authentications_total",
		Help:      "Total number of password authentication attempts.",
	},
	[]string{"method", "result"},
)

// AuthenticationDuration measures a full password check including the lookup.
// The KDF dominates, so this tracks the cost of the configured iteration count.
var AuthenticationDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "authentication_duration_seconds",
		Help:      "Duration of password authentication from lookup to comparison.",
		Buckets:   prometheus.DefBuckets,
	},
)

// ── Account metrics ──────────────────────────────────────────────────────────

// AccountsSavedTotal counts successful account writes.
// Label:
//   - operation: "create", "update", or "approve"
var AccountsSavedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "accounts_saved_total",
		Help:      "Total number of account documents written.",
	},
	[]string{"operation"},
)

// AccountErrorsTotal counts rejected account writes.
// Label:
//   - reason: "validation", "conflict", "not_found", or "internal"
var AccountErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "account_errors_total",
		Help:      "Total number of account writes that failed, by reason.",
	},
	[]string{"reason"},
)

// AccountsDeletedTotal counts removed accounts.
var AccountsDeletedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "accounts_deleted_total",
		Help:      "Total number of accounts removed.",
	},
)
