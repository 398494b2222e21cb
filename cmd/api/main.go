package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"tip-calculator/internal/calculator"
	"tip-calculator/internal/config"
	"tip-calculator/internal/observability"
	"tip-calculator/internal/server"
	"tip-calculator/internal/session"
)

func main() {

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Config, then the logger at the configured level
	dotenvErr := config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	if err := observability.InitLogger(cfg.Telemetry.LogLevel); err != nil {
		panic(err)
	}
	defer observability.SyncLogger()

	if dotenvErr != nil {
		observability.Logger.Warn("ignoring .env", zap.Error(dotenvErr))
	}

	opts, err := cfg.CalculatorOptions()
	if err != nil {
		observability.Logger.Fatal("building calculator options", zap.Error(err))
	}

	// Tracing, OTLP logs, metrics
	telemetryShutdown, err := initTelemetry(ctx, cfg.Telemetry)
	if err != nil {
		panic(err)
	}
	defer telemetryShutdown(context.Background())

	// Sessions
	store := session.NewStore(opts, cfg.SessionTTL, session.WithSettleDelay(cfg.Debounce))
	registry := observability.NewRegistry(store.Collector())
	go store.Run(ctx, time.Minute, func(removed int) {
		calculator.RecordExpired(ctx, removed)
		if removed > 0 {
			observability.Logger.Info("expired idle sessions", zap.Int("removed", removed))
		}
	})

	// Router
	router := server.NewRouter(calculator.NewHandler(store, opts), registry)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		observability.Logger.Info("server started",
			zap.String("addr", cfg.Addr),
			zap.Strings("presets", cfg.Presets),
			zap.String("currency", cfg.Currency),
			zap.Bool("telemetry", cfg.Telemetry.Enabled),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			panic(err)
		}
	}()

	waitForShutdown(srv)
}

func waitForShutdown(srv *http.Server) {

	stop := make(chan os.Signal, 1)

	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		observability.Logger.Error("shutdown", zap.Error(err))
	}
}
