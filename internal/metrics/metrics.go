package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

var (
	EstimatesCalculated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "steprighthomes_estimates_calculated_total",
			Help: "Total number of price estimates calculated",
		},
		[]string{"service", "source"},
	)

	WizardTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "steprighthomes_wizard_transitions_total",
			Help: "Quote wizard events by outcome",
		},
		[]string{"event", "result"},
	)

	LeadSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "steprighthomes_lead_submissions_total",
			Help: "Lead submissions by kind and result",
		},
		[]string{"kind", "result"},
	)

	LeadSendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "steprighthomes_lead_send_duration_seconds",
			Help:    "Time taken by the lead transport to accept a lead",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	AttachmentsStaged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "steprighthomes_attachments_staged_total",
			Help: "Attachment previews acquired",
		},
		[]string{"kind"},
	)

	AttachmentsReleased = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "steprighthomes_attachments_released_total",
			Help: "Attachment previews released",
		},
	)

	DraftsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "steprighthomes_quote_drafts_active",
			Help: "Quote request drafts currently held in memory",
		},
	)
)
