// Package metrics exposes Prometheus instruments for the dispatch and fulfillment flow.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "fulfillment"

// Metrics groups every instrument. A nil *Metrics is valid and records nothing,
// so components can be built without a registry in tests.
type Metrics struct {
	OffersTotal          *prometheus.CounterVec
	OpenOffers           prometheus.Gauge
	TransitionsTotal     *prometheus.CounterVec
	TransitionErrors     *prometheus.CounterVec
	EarningsRecorded     prometheus.Counter
	CommissionMinorUnits prometheus.Counter
	RefreshDuration      prometheus.Histogram
	RefreshErrors        prometheus.Counter
	NotificationsTotal   *prometheus.CounterVec
}

// New creates the instruments and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		OffersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "offers_total",
			Help:      "Offers by final outcome (accepted, declined, expired, conflict).",
		}, []string{"outcome"}),
		OpenOffers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "open_offers",
			Help:      "Offers currently open in the dispatch pool.",
		}),
		TransitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_total",
			Help:      "Applied delivery status transitions by target status.",
		}, []string{"status"}),
		TransitionErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transition_errors_total",
			Help:      "Rejected delivery status transitions by error class.",
		}, []string{"class"}),
		EarningsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "earnings_records_total",
			Help:      "Earnings records booked.",
		}),
		CommissionMinorUnits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commission_minor_units_total",
			Help:      "Commission booked, in minor currency units.",
		}),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "offer_refresh_duration_seconds",
			Help:      "Duration of offer refreshes against the order service.",
			Buckets:   prometheus.DefBuckets,
		}),
		RefreshErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "offer_refresh_errors_total",
			Help:      "Offer refreshes that failed.",
		}),
		NotificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Feed entries by type.",
		}, []string{"type"}),
	}

	reg.MustRegister(
		m.OffersTotal,
		m.OpenOffers,
		m.TransitionsTotal,
		m.TransitionErrors,
		m.EarningsRecorded,
		m.CommissionMinorUnits,
		m.RefreshDuration,
		m.RefreshErrors,
		m.NotificationsTotal,
	)
	return m
}

func (m *Metrics) OfferResolved(outcome string) {
	if m == nil {
		return
	}
	m.OffersTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SetOpenOffers(n int) {
	if m == nil {
		return
	}
	m.OpenOffers.Set(float64(n))
}

func (m *Metrics) TransitionApplied(status string) {
	if m == nil {
		return
	}
	m.TransitionsTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) TransitionRejected(class string) {
	if m == nil {
		return
	}
	m.TransitionErrors.WithLabelValues(class).Inc()
}

func (m *Metrics) EarningsBooked(commission int64) {
	if m == nil {
		return
	}
	m.EarningsRecorded.Inc()
	m.CommissionMinorUnits.Add(float64(commission))
}

// RefreshObserved records one refresh; failed is true when it returned an error.
func (m *Metrics) RefreshObserved(d time.Duration, failed bool) {
	if m == nil {
		return
	}
	m.RefreshDuration.Observe(d.Seconds())
	if failed {
		m.RefreshErrors.Inc()
	}
}

func (m *Metrics) NotificationAppended(kind string) {
	if m == nil {
		return
	}
	m.NotificationsTotal.WithLabelValues(kind).Inc()
}
