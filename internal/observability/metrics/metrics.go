package metrics

import "github.com/prometheus/client_golang/prometheus"

// ChatMetrics exposes counters for the webhook-to-reply pipeline.
type ChatMetrics struct {
	inboundTotal  *prometheus.CounterVec
	turnsTotal    *prometheus.CounterVec
	bookingsTotal *prometheus.CounterVec
}

func NewChatMetrics(reg prometheus.Registerer) *ChatMetrics {
	m := &ChatMetrics{
		inboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hotel",
			Subsystem: "chat",
			Name:      "inbound_webhook_total",
			Help:      "Total inbound webhook deliveries",
		}, []string{"channel", "status"}),
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hotel",
			Subsystem: "chat",
			Name:      "assistant_turns_total",
			Help:      "Total assistant turns by outcome",
		}, []string{"outcome"}),
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hotel",
			Subsystem: "spa",
			Name:      "bookings_total",
			Help:      "Total spa booking attempts by result",
		}, []string{"result"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.inboundTotal, m.turnsTotal, m.bookingsTotal)
	return m
}

func (m *ChatMetrics) ObserveInbound(channel, status string) {
	if m == nil {
		return
	}
	m.inboundTotal.WithLabelValues(channel, status).Inc()
}

func (m *ChatMetrics) ObserveTurn(outcome string) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(outcome).Inc()
}

func (m *ChatMetrics) ObserveBooking(result string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(result).Inc()
}
