package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/seqkit/logger"
	"github.com/kbukum/seqkit/version"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: version.Short(),
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the global OpenTelemetry meter provider with an
// OTLP/HTTP exporter. The returned provider must be shut down on exit.
func InitMeter(ctx context.Context, config *MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Instrument names.
const (
	MetricElements      = "pipeline.elements"
	MetricDropped       = "pipeline.dropped"
	MetricBatches       = "pipeline.batches"
	MetricBatchSize     = "pipeline.batch.size"
	MetricErrors        = "pipeline.errors"
	MetricStageDuration = "pipeline.stage.duration"
)

// Metrics holds the instruments recorded by pipeline stages.
type Metrics struct {
	elementsTotal metric.Int64Counter
	droppedTotal  metric.Int64Counter
	batchesTotal  metric.Int64Counter
	batchSize     metric.Int64Histogram
	errorTotal    metric.Int64Counter
	stageDuration metric.Float64Histogram
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	elementsTotal, err := meter.Int64Counter(MetricElements,
		metric.WithDescription("Elements pulled from the source by a stage"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricElements, err)
	}

	droppedTotal, err := meter.Int64Counter(MetricDropped,
		metric.WithDescription("Elements dropped because their remapped key was null"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricDropped, err)
	}

	batchesTotal, err := meter.Int64Counter(MetricBatches,
		metric.WithDescription("Batches flushed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricBatches, err)
	}

	batchSize, err := meter.Int64Histogram(MetricBatchSize,
		metric.WithDescription("Number of elements per flushed batch"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s histogram: %w", MetricBatchSize, err)
	}

	errorTotal, err := meter.Int64Counter(MetricErrors,
		metric.WithDescription("Traversals aborted by a source or stage failure"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricErrors, err)
	}

	stageDuration, err := meter.Float64Histogram(MetricStageDuration,
		metric.WithDescription("Duration of a full traversal in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s histogram: %w", MetricStageDuration, err)
	}

	return &Metrics{
		elementsTotal: elementsTotal,
		droppedTotal:  droppedTotal,
		batchesTotal:  batchesTotal,
		batchSize:     batchSize,
		errorTotal:    errorTotal,
		stageDuration: stageDuration,
	}, nil
}

func stageAttr(stage string) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String(AttrStage, stage))
}

// RecordElement counts one element pulled by stage.
func (m *Metrics) RecordElement(ctx context.Context, stage string) {
	m.elementsTotal.Add(ctx, 1, stageAttr(stage))
}

// RecordDropped counts one element dropped by stage.
func (m *Metrics) RecordDropped(ctx context.Context, stage string) {
	m.droppedTotal.Add(ctx, 1, stageAttr(stage))
}

// RecordBatch records a flushed batch of the given size.
func (m *Metrics) RecordBatch(ctx context.Context, stage string, size int) {
	attrs := stageAttr(stage)
	m.batchesTotal.Add(ctx, 1, attrs)
	m.batchSize.Record(ctx, int64(size), attrs)
}

// RecordError counts a traversal aborted by err.
func (m *Metrics) RecordError(ctx context.Context, stage string, err error) {
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrStage, stage),
		attribute.String(AttrErrorType, fmt.Sprintf("%T", err)),
	))
}

// RecordRun records a completed traversal.
func (m *Metrics) RecordRun(ctx context.Context, stage, status string, duration time.Duration) {
	m.stageDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String(AttrStage, stage),
		attribute.String(AttrStatus, status),
	))
}
