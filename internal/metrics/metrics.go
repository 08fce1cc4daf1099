package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the bot.
type Metrics struct {
	ApplicationsSubmitted prometheus.Counter
	ApplicationsApproved  prometheus.Counter
	ApplicationsDeclined  prometheus.Counter
	DeliveryFailures      prometheus.Counter
	BansExecuted          prometheus.Counter
	BansFailed            prometheus.Counter
}

// New creates and registers all metrics against reg. Tests pass a fresh
// prometheus.NewRegistry to avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ApplicationsSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "citizenship_applications_submitted_total",
			Help: "Total number of citizenship applications submitted",
		}),
		ApplicationsApproved: factory.NewCounter(prometheus.CounterOpts{
			Name: "citizenship_applications_approved_total",
			Help: "Total number of citizenship applications approved",
		}),
		ApplicationsDeclined: factory.NewCounter(prometheus.CounterOpts{
			Name: "citizenship_applications_declined_total",
			Help: "Total number of citizenship applications declined",
		}),
		DeliveryFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "citizenship_notification_delivery_failures_total",
			Help: "Total number of notifications that could not be delivered",
		}),
		BansExecuted: factory.NewCounter(prometheus.CounterOpts{
			Name: "citizenship_bans_executed_total",
			Help: "Total number of confirmed external bans",
		}),
		BansFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "citizenship_bans_failed_total",
			Help: "Total number of external ban calls that were not confirmed",
		}),
	}
}
