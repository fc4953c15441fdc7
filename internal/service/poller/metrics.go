package poller

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Результаты одной проверки для метрик
const (
	resultConfirmed = "confirmed"
	resultPending   = "pending"
	resultError     = "error"
	resultExhausted = "exhausted"
)

// pollMetrics пишет poller_checks_total и poller_confirmation_wait_ms в OTLP
type pollMetrics struct {
	checks metric.Int64Counter
	wait   metric.Float64Histogram
}

func newPollMetrics() *pollMetrics {
	meter := otel.Meter("poller")
	checks, _ := meter.Int64Counter("poller_checks_total", metric.WithDescription("Gateway confirmation checks by result"))
	wait, _ := meter.Float64Histogram("poller_confirmation_wait_ms", metric.WithDescription("Time from poll start to payment confirmation in milliseconds"))
	return &pollMetrics{checks: checks, wait: wait}
}

func (m *pollMetrics) recordCheck(ctx context.Context, result string) {
	if m.checks == nil {
		return
	}
	m.checks.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

func (m *pollMetrics) recordWait(ctx context.Context, d time.Duration) {
	if m.wait == nil {
		return
	}
	m.wait.Record(ctx, float64(d.Milliseconds()))
}
