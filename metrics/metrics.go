package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"beansbot/events"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	balanceChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "beansbot_balance_changes_total",
		Help: "Ledger entries recorded, by entry type",
	}, []string{"entry_type"})

	beansMoved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "beansbot_beans_moved_total",
		Help: "Absolute bean volume moved, by entry type",
	}, []string{"entry_type"})

	slotsSpins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "beansbot_slots_spins_total",
		Help: "Slot machine spins, by outcome",
	}, []string{"outcome"})

	triviaCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "beansbot_trivia_created_total",
		Help: "Trivia questions created",
	})

	triviaResolved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "beansbot_trivia_resolved_total",
		Help: "Trivia questions resolved or deleted",
	})
)

type HealthFunc func(ctx context.Context) error

// Subscribe wires the domain event bus into the Prometheus counters
func Subscribe(bus *events.Bus) {
	bus.Subscribe(events.EventTypeBalanceChange, func(ctx context.Context, event events.Event) {
		change, ok := event.(events.BalanceChangeEvent)
		if !ok {
			return
		}
		entryType := string(change.EntryType)
		balanceChanges.WithLabelValues(entryType).Inc()

		amount := change.ChangeAmount
		if amount < 0 {
			amount = -amount
		}
		beansMoved.WithLabelValues(entryType).Add(float64(amount))
	})

	bus.Subscribe(events.EventTypeSlotsSpin, func(ctx context.Context, event events.Event) {
		spin, ok := event.(events.SlotsSpinEvent)
		if !ok {
			return
		}
		switch {
		case spin.Jackpot:
			slotsSpins.WithLabelValues("jackpot").Inc()
		case spin.Payout > 0:
			slotsSpins.WithLabelValues("win").Inc()
		default:
			slotsSpins.WithLabelValues("loss").Inc()
		}
	})

	bus.Subscribe(events.EventTypeTriviaCreated, func(ctx context.Context, event events.Event) {
		triviaCreated.Inc()
	})

	bus.Subscribe(events.EventTypeTriviaResolved, func(ctx context.Context, event events.Event) {
		triviaResolved.Inc()
	})
}

// StartServer starts a small HTTP server serving /metrics and /healthz in a
// background goroutine.
func StartServer(port string, healthFn HealthFunc) *http.Server {
	mux := http.NewServeMux()

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()

		if err := healthFn(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(fmt.Sprintf("unhealthy: %v", err)))
			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}

	go func() {
		_ = srv.ListenAndServe()
	}()

	return srv
}
