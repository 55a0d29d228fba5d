package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for the booking and checkout flow.
type BookingMetrics struct {
	planSelections  *prometheus.CounterVec
	checkouts       *prometheus.CounterVec
	outcomes        *prometheus.CounterVec
	checkoutLatency prometheus.Histogram
	liveConnections prometheus.Gauge
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		planSelections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nutrition",
			Subsystem: "booking",
			Name:      "plan_selections_total",
			Help:      "Total Book Consultation clicks per plan",
		}, []string{"plan"}),
		checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nutrition",
			Subsystem: "booking",
			Name:      "checkouts_total",
			Help:      "Total checkout initiations by status",
		}, []string{"plan", "status"}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nutrition",
			Subsystem: "booking",
			Name:      "payment_outcomes_total",
			Help:      "Total resolved payments by outcome",
		}, []string{"outcome"}),
		checkoutLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "nutrition",
			Subsystem: "booking",
			Name:      "checkout_duration_seconds",
			Help:      "Time from checkout opened to payment resolved",
			Buckets:   []float64{5, 15, 30, 60, 120, 300, 600, 1800},
		}),
		liveConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "nutrition",
			Subsystem: "landing",
			Name:      "live_connections",
			Help:      "Open live view websocket connections",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.planSelections, m.checkouts, m.outcomes, m.checkoutLatency, m.liveConnections)
	return m
}

func (m *BookingMetrics) ObservePlanSelected(plan string) {
	if m == nil {
		return
	}
	m.planSelections.WithLabelValues(plan).Inc()
}

func (m *BookingMetrics) ObserveCheckout(plan, status string) {
	if m == nil {
		return
	}
	m.checkouts.WithLabelValues(plan, status).Inc()
}

func (m *BookingMetrics) ObserveOutcome(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(outcome).Inc()
	if seconds >= 0 {
		m.checkoutLatency.Observe(seconds)
	}
}

func (m *BookingMetrics) LiveConnected() {
	if m == nil {
		return
	}
	m.liveConnections.Inc()
}

func (m *BookingMetrics) LiveDisconnected() {
	if m == nil {
		return
	}
	m.liveConnections.Dec()
}
