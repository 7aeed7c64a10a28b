package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "admin", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "admin", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	// LoginAttempts counts sign-in attempts by method (password, google) and outcome.
	LoginAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "admin", Name: "login_attempts_total", Help: "Number of sign-in attempts by method and outcome."},
		[]string{"method", "outcome"},
	)
	AccountsProvisioned = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "admin", Name: "accounts_provisioned_total", Help: "Number of accounts created from a Google identity."},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(LoginAttempts)
	reg.MustRegister(AccountsProvisioned)
}
