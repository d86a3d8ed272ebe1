package pipeline

import (
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/seqkit/logger"
	"github.com/kbukum/seqkit/observability"
)

// DefaultStageName labels logs, metrics and spans when no name is given.
const DefaultStageName = "pipeline"

// BatchOption configures WrapBatch and the BatchApply family.
type BatchOption func(*batchOptions)

type batchOptions struct {
	stage   string
	log     *logger.Logger
	metrics *observability.Metrics
	tracer  trace.Tracer
}

func newBatchOptions(opts []BatchOption) *batchOptions {
	o := &batchOptions{stage: DefaultStageName}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithStageName sets the label used in logs, metrics and spans.
func WithStageName(name string) BatchOption {
	return func(o *batchOptions) {
		if name != "" {
			o.stage = name
		}
	}
}

// WithLogger writes one debug line per flushed batch to l.
func WithLogger(l *logger.Logger) BatchOption {
	return func(o *batchOptions) { o.log = l }
}

// WithMetrics records pulled elements, dropped elements and flushed batches on m.
func WithMetrics(m *observability.Metrics) BatchOption {
	return func(o *batchOptions) { o.metrics = m }
}

// WithTracer starts one span per batch handed to a BatchFunc.
// It has no effect on WrapBatch, whose batches are consumed by the caller.
func WithTracer(t trace.Tracer) BatchOption {
	return func(o *batchOptions) { o.tracer = t }
}
