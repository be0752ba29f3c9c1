// Package metrics exposes Prometheus counters for authentication and an
// HTTP server for metrics and health probes.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Auth attempt outcomes.
const (
	OutcomeSuccess            = "success"
	OutcomeDuplicateEmail     = "duplicate_email"
	OutcomeInvalidCredentials = "invalid_credentials"
	OutcomeInvalidRequest     = "invalid_request"
	OutcomeError              = "error"
)

// Token verification results.
const (
	VerifyAuthorized = "authorized"
	VerifyInvalid    = "invalid"
	VerifyExpired    = "expired"
	VerifyMissing    = "missing"
)

// Metrics holds the auth counters. A nil *Metrics records nothing.
type Metrics struct {
	AuthAttempts       *prometheus.CounterVec
	TokenVerifications *prometheus.CounterVec
}

// New creates the auth metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		AuthAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "learning_auth_attempts_total",
				Help: "Total number of register and login attempts by outcome",
			},
			[]string{"operation", "outcome"},
		),
		TokenVerifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "learning_token_verifications_total",
				Help: "Total number of bearer token verifications by result",
			},
			[]string{"result"},
		),
	}

	reg.MustRegister(m.AuthAttempts)
	reg.MustRegister(m.TokenVerifications)

	return m
}

// RecordAuth counts one register or login attempt.
func (m *Metrics) RecordAuth(operation, outcome string) {
	if m == nil {
		return
	}
	m.AuthAttempts.WithLabelValues(operation, outcome).Inc()
}

// RecordVerification counts one token verification.
func (m *Metrics) RecordVerification(result string) {
	if m == nil {
		return
	}
	m.TokenVerifications.WithLabelValues(result).Inc()
}
