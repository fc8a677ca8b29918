package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	FilesProcessedTotal = prometheus.NewCounter(prometheus.CounterOpts{Name: "feed_files_processed_total", Help: "Data files fully applied"})
	FilesSkippedTotal   = prometheus.NewCounter(prometheus.CounterOpts{Name: "feed_files_skipped_total", Help: "Data files skipped after an error"})
	RecordsAppliedTotal = prometheus.NewCounter(prometheus.CounterOpts{Name: "feed_records_applied_total", Help: "Snapshot records applied to books"})
	FileProcessSeconds  = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "feed_file_process_seconds", Help: "Per-file processing duration", Buckets: prometheus.ExponentialBuckets(0.001, 2, 14)})
	WatchScansTotal     = prometheus.NewCounter(prometheus.CounterOpts{Name: "feed_watch_scans_total", Help: "Directory scans in watch mode"})

	SecuritiesTracked = prometheus.NewGauge(prometheus.GaugeOpts{Name: "book_securities_tracked", Help: "Books in the registry"})
	BestBid           = prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: "book_best_bid", Help: "Best bid price by security"}, []string{"security"})
	BestOffer         = prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: "book_best_offer", Help: "Best offer price by security"}, []string{"security"})
	Spread            = prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: "book_spread", Help: "Best offer minus best bid by security"}, []string{"security"})
	BidLevels         = prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: "book_bid_levels", Help: "Resting bid levels by security"}, []string{"security"})
	OfferLevels       = prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: "book_offer_levels", Help: "Resting offer levels by security"}, []string{"security"})
)

func Init(logger zerolog.Logger) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	toRegister := []prometheus.Collector{
		FilesProcessedTotal, FilesSkippedTotal, RecordsAppliedTotal, FileProcessSeconds, WatchScansTotal,
		SecuritiesTracked, BestBid, BestOffer, Spread, BidLevels, OfferLevels,
		collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	}
	for _, c := range toRegister { _ = reg.Register(c) }
	logger.Info().Msg("Prometheus metrics initialized")
	return reg
}

func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
