// Package metrics holds Prometheus instruments for the form pipeline.  All
// collectors are registered with the global registry, so exposing
// promhttp.Handler() in main.go is enough to publish them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values for FormSubmissionsTotal.
const (
	OutcomeAccepted    = "accepted"
	OutcomeInvalid     = "invalid"
	OutcomeUnverified  = "unverified"
	OutcomeRateLimited = "rate_limited"
	OutcomeStoreFailed = "store_failed"
)

var (
	FormSubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "form_submissions_total",
			Help: "Form posts by form kind and pipeline outcome.",
		}, []string{"form", "outcome"})

	RecaptchaVerificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recaptcha_verifications_total",
			Help: "Attestation-token checks by result (pass, fail, error, bypass).",
		}, []string{"result"})

	RateLimitFailOpenTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ratelimit_fail_open_total",
			Help: "Rate checks allowed because the submission log could not be read.",
		})

	NotificationFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_failures_total",
			Help: "Emails that failed to send, by form kind and recipient.",
		}, []string{"form", "recipient"})

	SubmissionLogPurgedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "submission_log_purged_total",
			Help: "Submission-log rows removed by the retention janitor.",
		})
)

func init() {
	prometheus.MustRegister(
		FormSubmissionsTotal,
		RecaptchaVerificationsTotal,
		RateLimitFailOpenTotal,
		NotificationFailuresTotal,
		SubmissionLogPurgedTotal,
	)
}
