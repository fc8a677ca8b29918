package main

import (
	"context"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"fxbook/internal/api/rest"
	"fxbook/internal/config"
	"fxbook/internal/feed"
	"fxbook/internal/infra/health"
	"fxbook/internal/infra/http/middleware"
	"fxbook/internal/infra/log"
	"fxbook/internal/infra/metrics"
	"fxbook/internal/infra/netutil"
	"fxbook/internal/infra/runner"
	"fxbook/internal/infra/version"
	"fxbook/internal/orderbook"
	"fxbook/internal/report"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_ = godotenv.Load()
	cfg := config.Load()
	logger := log.NewLogger(cfg)

	registry := metrics.Init(logger)

	books := feed.NewRegistry()
	proc := feed.NewProcessor(books, logger)
	proc.OnUpdate = publishBook

	// One-shot mode: apply everything under the data dir, print the summary,
	// exit. Watch mode keeps running and serves the admin endpoints.
	if !cfg.Data.Watch {
		if err := proc.ProcessDir(cfg.Data.Dir, cfg.Data.Pattern); err != nil {
			logger.Fatal().Err(err).Msg("processing failed")
		}
		if err := report.Write(os.Stdout, proc.Stats(), books.Books()); err != nil {
			logger.Error().Err(err).Msg("summary failed")
		}
		return
	}

	// admin endpoints (metrics, status, pprof) behind IP allowlist gate
	adminCIDRs := netutil.MustParseCIDRs(cfg.Server.AdminAllowCIDRs)
	mux := http.NewServeMux()
	mux.Handle("/metrics", middleware.AdminGate(adminCIDRs, metrics.Handler(registry)))
	mux.HandleFunc("/healthz", health.Healthz)
	mux.HandleFunc("/readyz", health.Readyz)
	mux.HandleFunc("/version", version.Handler)
	api := rest.New(proc, books)
	mux.Handle("/status", middleware.AdminGate(adminCIDRs, api.Handler()))
	mux.Handle("/books", middleware.AdminGate(adminCIDRs, api.Handler()))
	if cfg.Server.Pprof {
		mux.Handle("/debug/pprof/", middleware.AdminGate(adminCIDRs, http.HandlerFunc(pprof.Index)))
		mux.Handle("/debug/pprof/cmdline", middleware.AdminGate(adminCIDRs, http.HandlerFunc(pprof.Cmdline)))
		mux.Handle("/debug/pprof/profile", middleware.AdminGate(adminCIDRs, http.HandlerFunc(pprof.Profile)))
		mux.Handle("/debug/pprof/symbol", middleware.AdminGate(adminCIDRs, http.HandlerFunc(pprof.Symbol)))
		mux.Handle("/debug/pprof/trace", middleware.AdminGate(adminCIDRs, http.HandlerFunc(pprof.Trace)))
	}

	handler := middleware.RequestID(middleware.Logger(logger)(mux))
	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout:      time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:       time.Duration(cfg.Server.IdleTimeoutSeconds) * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	logger.Info().Str("addr", cfg.Server.Addr).Str("dir", cfg.Data.Dir).Msg("fxbook started")

	g := &runner.Group{}
	watchErrCh := g.Go(ctx, func(ctx context.Context) error {
		return proc.Watch(ctx, cfg.Data.Dir, cfg.Data.Pattern, time.Duration(cfg.Data.PollIntervalSeconds)*time.Second)
	})

	health.SetReady(true)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-ctx.Done():
	case s := <-sigCh:
		logger.Info().Str("signal", s.String()).Msg("shutdown signal received")
	case err := <-watchErrCh:
		if err != nil {
			logger.Error().Err(err).Msg("watch error")
		}
	}

	health.SetReady(false)
	cancel()
	g.Wait()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	if err := report.Write(os.Stdout, proc.Stats(), books.Books()); err != nil {
		logger.Error().Err(err).Msg("summary failed")
	}
	logger.Info().Msg("shutdown complete")
}

// publishBook refreshes the per-security gauges after every applied record.
// A pricing or signal component would hang off this same hook.
func publishBook(b *orderbook.Book) {
	sec := b.Security()
	if l, ok := b.BestBid(); ok {
		metrics.BestBid.WithLabelValues(sec).Set(l.Price)
	}
	if l, ok := b.BestOffer(); ok {
		metrics.BestOffer.WithLabelValues(sec).Set(l.Price)
	}
	if s, ok := b.Spread(); ok {
		metrics.Spread.WithLabelValues(sec).Set(s)
	}
	metrics.BidLevels.WithLabelValues(sec).Set(float64(b.BidLevels()))
	metrics.OfferLevels.WithLabelValues(sec).Set(float64(b.OfferLevels()))
}
