package database

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// QueryMetrics records count, errors and latency of storage operations.
// Without a configured meter provider the instruments are no-ops.
type QueryMetrics struct {
	system   string
	qTotal   metric.Int64Counter
	qErrors  metric.Int64Counter
	qLatency metric.Float64Histogram
}

// NewQueryMetrics records into the global meter provider.
func NewQueryMetrics(system string) *QueryMetrics {
	return newQueryMetrics(system, otel.GetMeterProvider())
}

func newQueryMetrics(system string, provider metric.MeterProvider) *QueryMetrics {
	meter := provider.Meter("github.com/quhixcal/quhixcal/db")

	qTotal, _ := meter.Int64Counter("db.query.total")
	qErrors, _ := meter.Int64Counter("db.query.errors.total")
	qLatency, _ := meter.Float64Histogram("db.query.duration.ms")

	return &QueryMetrics{system: system, qTotal: qTotal, qErrors: qErrors, qLatency: qLatency}
}

func (m *QueryMetrics) Observe(ctx context.Context, op string, start time.Time, err error) {
	attrs := metric.WithAttributes(
		attribute.String("db.system", m.system),
		attribute.String("db.operation", op),
	)

	m.qTotal.Add(ctx, 1, attrs)
	m.qLatency.Record(ctx, float64(time.Since(start).Milliseconds()), attrs)
	if err != nil {
		m.qErrors.Add(ctx, 1, attrs)
	}
}
