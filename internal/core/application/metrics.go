package application

import (
	"github.com/ark-network/raffle/internal/core/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "raffle"

// Metrics are registered on the given registerer, a nil one leaves them
// unregistered.
type Metrics struct {
	entries        prometheus.Counter
	drawsRequested prometheus.Counter
	drawsCompleted prometheus.Counter
	payoutFailures prometheus.Counter
	storeErrors    prometheus.Counter
	eventsByType   *prometheus.CounterVec
	pot            prometheus.Gauge
	players        prometheus.Gauge
	calculating    prometheus.Gauge
	paidOut        prometheus.Counter
}

func NewMetrics(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)

	return &Metrics{
		entries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "entries_total",
			Help:      "Number of accepted raffle entries.",
		}),
		drawsRequested: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "draws_requested_total",
			Help:      "Number of randomness requests sent to the provider.",
		}),
		drawsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "draws_completed_total",
			Help:      "Number of draws resolved with a successful payout.",
		}),
		payoutFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "payout_failures_total",
			Help:      "Number of payouts rolled back after a failed transfer.",
		}),
		storeErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "store_errors_total",
			Help:      "Number of failed best effort writes to the repositories or the event bus.",
		}),
		eventsByType: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "events_total",
			Help:      "Number of raffle events delivered to the notifier, by type.",
		}, []string{"type"}),
		pot: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "pot",
			Help:      "Current pot balance.",
		}),
		players: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "players",
			Help:      "Number of players in the current round.",
		}),
		calculating: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "calculating",
			Help:      "1 while a draw is waiting for randomness, 0 otherwise.",
		}),
		paidOut: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "paid_out_total",
			Help:      "Total amount transferred to winners.",
		}),
	}
}

func (m *Metrics) observeRaffle(raffle *domain.Raffle) {
	m.pot.Set(float64(raffle.Pot))
	m.players.Set(float64(len(raffle.Players)))
	if raffle.IsCalculating() {
		m.calculating.Set(1)
		return
	}
	m.calculating.Set(0)
}

func (m *Metrics) observeEvents(events []domain.Event) {
	for _, event := range events {
		m.eventsByType.WithLabelValues(event.GetType().String()).Inc()
	}
}
