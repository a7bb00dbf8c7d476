package observability

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type generationMetrics struct {
	requestCount    metric.Int64Counter
	requestDuration metric.Float64Histogram
	requestErrors   metric.Int64Counter
}

var (
	generationMetricsOnce sync.Once
	generationMetricsInst *generationMetrics
)

func ensureGenerationMetrics() *generationMetrics {
	generationMetricsOnce.Do(func() {
		meter := otel.Meter(meterName + "/generation")

		requestCount, err := meter.Int64Counter(
			"ai.generation.request.count",
			metric.WithDescription("Number of text generation requests"),
		)
		if err != nil {
			return
		}
		requestDuration, err := meter.Float64Histogram(
			"ai.generation.request.duration",
			metric.WithDescription("Text generation request duration in milliseconds"),
			metric.WithUnit("ms"),
		)
		if err != nil {
			return
		}
		requestErrors, err := meter.Int64Counter(
			"ai.generation.request.errors",
			metric.WithDescription("Number of text generation request errors"),
		)
		if err != nil {
			return
		}

		generationMetricsInst = &generationMetrics{
			requestCount:    requestCount,
			requestDuration: requestDuration,
			requestErrors:   requestErrors,
		}
	})
	return generationMetricsInst
}

// RecordGenerationMetric records one outbound generation call.
func RecordGenerationMetric(ctx context.Context, provider, model string, statusCode int, duration time.Duration, err error) {
	m := ensureGenerationMetrics()
	if m == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("ai.provider", provider),
		attribute.String("ai.model", model),
	}
	if statusCode > 0 {
		attrs = append(attrs, attribute.Int("http.status_code", statusCode))
	}

	m.requestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.requestDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
	if err != nil {
		m.requestErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}
