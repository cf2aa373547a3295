// Package metrics exposes Prometheus collectors for declarations, settlement
// and bid placement.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var (
	// Registry holds the application collectors.
	Registry = prometheus.NewRegistry()

	declarations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "matka",
			Name:      "declarations_total",
			Help:      "Result declarations and deletions by stage and action.",
		},
		[]string{"stage", "action"},
	)

	settledBids = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "matka",
			Name:      "settled_bids_total",
			Help:      "Bids processed by settlement passes, by outcome.",
		},
		[]string{"stage", "status"},
	)

	settlementDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "matka",
			Name:      "settlement_duration_seconds",
			Help:      "Duration of settlement passes.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
		},
		[]string{"stage"},
	)

	bidsPlaced = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "matka",
			Name:      "bids_placed_total",
			Help:      "Accepted bids by rate class.",
		},
		[]string{"rate_type"},
	)

	notificationsDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "matka",
			Name:      "notifications_dropped_total",
			Help:      "Notifications dropped because the queue was full.",
		},
	)
)

func init() {
	Registry.MustRegister(
		declarations,
		settledBids,
		settlementDuration,
		bidsPlaced,
		notificationsDropped,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// RecordDeclaration counts a declaration ("declare") or deletion ("delete").
func RecordDeclaration(stage, action string) {
	declarations.WithLabelValues(stage, action).Inc()
}

// RecordSettledBid counts one bid outcome of a settlement pass. status is
// WIN, LOSS, PENDING or FAILED.
func RecordSettledBid(stage, status string) {
	settledBids.WithLabelValues(stage, status).Inc()
}

// ObserveSettlement records how long a settlement pass took.
func ObserveSettlement(stage string, d time.Duration) {
	settlementDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordBidPlaced counts an accepted bid.
func RecordBidPlaced(rateType string) {
	bidsPlaced.WithLabelValues(rateType).Inc()
}

// RecordNotificationDropped counts a notification lost to a full queue.
func RecordNotificationDropped() {
	notificationsDropped.Inc()
}

// Handler returns an HTTP handler exposing the registered metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Failed to shut down metrics server")
		}
	}()

	log.Info().Str("addr", addr).Msg("Serving metrics")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
