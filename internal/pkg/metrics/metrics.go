package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PriceLookups counts token price resolutions by outcome
	// (hit, resolved, unpriced).
	PriceLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_tracker_price_lookups_total",
		Help: "Token price resolutions by outcome.",
	}, []string{"outcome"})

	// ReferencePriceLookups counts reference price resolutions by outcome
	// (hit, resolved, fallback).
	ReferencePriceLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_tracker_reference_price_lookups_total",
		Help: "Wrapped-native reference price resolutions by outcome.",
	}, []string{"outcome"})

	// LPAnalyses counts LP position analyses by outcome (valued, skipped, failed).
	LPAnalyses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_tracker_lp_analyses_total",
		Help: "LP position analyses by outcome.",
	}, []string{"outcome"})

	// ScanDuration observes full wallet scan durations in seconds.
	ScanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pulse_tracker_scan_duration_seconds",
		Help:    "Duration of full scan requests.",
		Buckets: prometheus.DefBuckets,
	})

	// WalletsScanned counts wallets processed by scan requests.
	WalletsScanned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pulse_tracker_wallets_scanned_total",
		Help: "Wallets processed by scan requests.",
	})
)
