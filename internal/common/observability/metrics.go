package observability

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

type Observability struct {
	meterProvider    *metric.MeterProvider
	meter            otelmetric.Meter
	analysisCounter  otelmetric.Int64Counter
	analysisDuration otelmetric.Float64Histogram
}

func New(serviceName string) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	analysisCounter, _ := meter.Int64Counter(
		"analyses.processed",
		otelmetric.WithDescription("Number of cost analyses processed"),
	)

	analysisDuration, _ := meter.Float64Histogram(
		"analyses.duration",
		otelmetric.WithDescription("Cost analysis duration"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider:    provider,
		meter:            meter,
		analysisCounter:  analysisCounter,
		analysisDuration: analysisDuration,
	}
}

func (o *Observability) RecordAnalysis(ctx context.Context, status string) {
	if o.analysisCounter != nil {
		o.analysisCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("status", status),
		))
	}
}

func (o *Observability) RecordAnalysisDuration(ctx context.Context, duration time.Duration, status string) {
	if o.analysisDuration != nil {
		o.analysisDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("status", status),
		))
	}
}

func (o *Observability) Shutdown() {
	if o.meterProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		o.meterProvider.Shutdown(ctx)
	}
}
