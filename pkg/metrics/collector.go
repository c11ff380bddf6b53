package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	donationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "donations_processed_total",
			Help: "Donation messages processed, labeled by outcome",
		},
		[]string{"outcome"},
	)
	donationDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "donation_processing_duration_seconds",
			Help:    "End-to-end duration of one donation unit of work",
			Buckets: prometheus.DefBuckets,
		},
	)
	donationUSD = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "donations_usd_total",
			Help: "Accumulated USD value of processed donations",
		},
	)
	priceLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "price_lookups_total",
			Help: "Price resolution attempts labeled by source and status",
		},
		[]string{"source", "status"},
	)
	entriesGrantedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "draw_entries_granted_total",
			Help: "Draw entries granted, labeled by draw id",
		},
		[]string{"draw_id"},
	)
	winnersDrawnTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "draw_winners_total",
			Help: "Draw closures that produced a winner",
		},
	)
	errorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors split by type and severity",
		},
		[]string{"type", "severity"},
	)
)

// Donation outcomes reported by the pipeline.
const (
	OutcomeProcessed        = "processed"
	OutcomeNoMatch          = "no_match"
	OutcomeIneligible       = "ineligible"
	OutcomePriceUnavailable = "price_unavailable"
	OutcomeError            = "error"
	OutcomeDuplicate        = "duplicate"
)

// RecordDonation increments the donation counter and records duration.
func RecordDonation(outcome string, duration time.Duration) {
	if outcome == "" {
		outcome = "unknown"
	}

	donationsTotal.WithLabelValues(outcome).Inc()
	donationDurationSeconds.Observe(duration.Seconds())
}

// RecordDonationValue accumulates the USD value of a processed donation.
func RecordDonationValue(usd float64) {
	if usd > 0 {
		donationUSD.Add(usd)
	}
}

// RecordPriceLookup tracks one price-source attempt.
func RecordPriceLookup(source, status string) {
	if source == "" {
		source = "unknown"
	}
	if status == "" {
		status = "unknown"
	}

	priceLookupsTotal.WithLabelValues(source, status).Inc()
}

// RecordEntriesGranted adds granted entries for the draw.
func RecordEntriesGranted(drawID string, entries int) {
	if drawID == "" {
		drawID = "unknown"
	}
	if entries > 0 {
		entriesGrantedTotal.WithLabelValues(drawID).Add(float64(entries))
	}
}

// RecordWinner counts a successful draw closure.
func RecordWinner() {
	winnersDrawnTotal.Inc()
}

// RecordError increments error counters with metadata.
func RecordError(errType, severity string) {
	if errType == "" {
		errType = "unknown"
	}
	if severity == "" {
		severity = "unknown"
	}

	errorsTotal.WithLabelValues(errType, severity).Inc()
}
