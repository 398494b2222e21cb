package main

import (
	"context"
	"errors"

	"tip-calculator/internal/calculator"
	"tip-calculator/internal/config"
	"tip-calculator/internal/observability"
)

// initTelemetry starts the trace, log and metric providers when enabled and
// registers the calculator's instruments either way. Without providers the
// instruments bind to the OTel no-op globals. The returned func flushes and
// stops every provider that started.
func initTelemetry(ctx context.Context, cfg config.Telemetry) (func(context.Context) error, error) {
	var shutdowns []func(context.Context) error
	shutdown := func(ctx context.Context) error {
		var errs []error
		for i := len(shutdowns) - 1; i >= 0; i-- {
			errs = append(errs, shutdowns[i](ctx))
		}
		return errors.Join(errs...)
	}

	if cfg.Enabled {
		starters := []func(context.Context) (func(context.Context) error, error){
			func(ctx context.Context) (func(context.Context) error, error) {
				return observability.InitTracing(ctx, cfg.SampleRatio)
			},
			observability.InitLogging,
			observability.InitMetrics,
		}
		for _, start := range starters {
			stop, err := start(ctx)
			if err != nil {
				_ = shutdown(ctx)
				return nil, err
			}
			shutdowns = append(shutdowns, stop)
		}
	}

	if err := calculator.InitMetrics(); err != nil {
		_ = shutdown(ctx)
		return nil, err
	}

	return shutdown, nil
}
