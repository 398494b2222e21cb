package calculator

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"tip-calculator/internal/tipcalc"
)

// Metric instruments, initialized once via InitMetrics().
var (
	opsCounter        metric.Int64Counter
	opsHistogram      metric.Float64Histogram
	errorCounter      metric.Int64Counter
	validationCounter metric.Int64Counter
	sessionsOpen      metric.Int64UpDownCounter
	totalGauge        metric.Float64Gauge
)

// InitMetrics registers custom OTel metric instruments for the calculator domain.
// Call this once at startup (after observability.InitMetrics).
func InitMetrics() error {
	meter := otel.Meter("calculator")

	var err error

	opsCounter, err = meter.Int64Counter("tipcalc.operations.total",
		metric.WithDescription("Total number of calculator operations performed"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return fmt.Errorf("creating ops counter: %w", err)
	}

	opsHistogram, err = meter.Float64Histogram("tipcalc.operation.duration",
		metric.WithDescription("Duration of calculator operations in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.5, 1, 5, 10),
	)
	if err != nil {
		return fmt.Errorf("creating ops histogram: %w", err)
	}

	errorCounter, err = meter.Int64Counter("tipcalc.errors.total",
		metric.WithDescription("Total number of failed calculator requests"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return fmt.Errorf("creating error counter: %w", err)
	}

	validationCounter, err = meter.Int64Counter("tipcalc.validation.messages.total",
		metric.WithDescription("Validation messages shown, by field and severity"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return fmt.Errorf("creating validation counter: %w", err)
	}

	sessionsOpen, err = meter.Int64UpDownCounter("tipcalc.sessions.open",
		metric.WithDescription("Calculator sessions opened minus sessions ended"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return fmt.Errorf("creating sessions counter: %w", err)
	}

	totalGauge, err = meter.Float64Gauge("tipcalc.last_total_per_person",
		metric.WithDescription("Total per person from the last settled calculation or quote"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("creating total gauge: %w", err)
	}

	return nil
}

// recordValidation counts every message the result carries.
func recordValidation(ctx context.Context, res tipcalc.Result) {
	record := func(field, msg string, warn bool) {
		if msg == "" {
			return
		}
		severity := tipcalc.Invalid
		if warn {
			severity = tipcalc.Warning
		}
		validationCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String("field", field),
			attribute.String("severity", severity.String()),
		))
	}

	record("bill", res.BillError, false)
	record("tip", res.TipError, res.TipWarning)
	record("people", res.PeopleError, res.PeopleWarning)
}

// RecordExpired accounts for sessions removed by the idle sweeper.
func RecordExpired(ctx context.Context, n int) {
	if n > 0 {
		sessionsOpen.Add(ctx, int64(-n))
	}
}
