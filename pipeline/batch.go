package pipeline

import (
	"context"
	"iter"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/seqkit/errors"
	"github.com/kbukum/seqkit/logger"
	"github.com/kbukum/seqkit/observability"
)

// Batch is an ordered group of consecutive elements. Keys keep their source
// order and duplicates are preserved, so concatenating every batch of a
// source gives back the source.
type Batch[K, V any] []Pair[K, V]

// Len returns the number of elements in the batch.
func (b Batch[K, V]) Len() int { return len(b) }

// Keys returns the keys in order.
func (b Batch[K, V]) Keys() []K {
	keys := make([]K, len(b))
	for i, p := range b {
		keys[i] = p.Key
	}
	return keys
}

// Values returns the values in order.
func (b Batch[K, V]) Values() []V {
	values := make([]V, len(b))
	for i, p := range b {
		values[i] = p.Value
	}
	return values
}

// All iterates the batch in order.
func (b Batch[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, p := range b {
			if !yield(p.Key, p.Value) {
				return
			}
		}
	}
}

// Pipeline returns a pipeline over the batch's elements.
func (b Batch[K, V]) Pipeline() *Pipeline[K, V] {
	return FromPairs([]Pair[K, V](b))
}

// BatchToMap indexes a batch by key. A repeated key keeps its last value.
func BatchToMap[K comparable, V any](b Batch[K, V]) map[K]V {
	m := make(map[K]V, len(b))
	for _, p := range b {
		m[p.Key] = p.Value
	}
	return m
}

// WrapBatch groups consecutive elements of p into batches of size elements,
// keyed 0, 1, 2, ... The last batch holds the remainder and may be smaller;
// an empty source yields no batches. A full batch is emitted when the
// element after it is pulled, or when the source ends.
//
// WrapBatch returns an INVALID_INPUT error if size is below one.
func WrapBatch[K, V any](p *Pipeline[K, V], size int, opts ...BatchOption) (*Pipeline[int, Batch[K, V]], error) {
	if err := validateBatchSize(size); err != nil {
		return nil, err
	}
	o := newBatchOptions(opts)
	return &Pipeline[int, Batch[K, V]]{
		create: func(ctx context.Context) Iterator[int, Batch[K, V]] {
			return &batchIter[K, V]{
				source: p.create(ctx),
				buf:    newBatcher[K, V](size, o),
			}
		},
	}, nil
}

// BatchApply walks p once and hands each batch of size elements to fn in
// order, numbered from 0. The trailing partial batch is dispatched after
// the source ends. An error from the source or from fn stops the walk and
// is returned unchanged.
//
// BatchApply returns an INVALID_INPUT error if size is below one, before
// any element is pulled.
func BatchApply[K, V any](ctx context.Context, p *Pipeline[K, V], size int, fn BatchFunc[K, V], opts ...BatchOption) error {
	return BatchApplyMapped(ctx, p, size, func(key K, value V) (K, V, bool) {
		return key, value, true
	}, fn, opts...)
}

// BatchApplyMapped is BatchApply with each element passed through itemFn
// before it is buffered. For every pulled element the order is: dispatch
// the buffer if it is full, call itemFn, drop the element if itemFn
// reported ok=false, otherwise buffer it. Dropped elements do not count
// toward the batch size.
//
// A nil itemFn or fn is reported as INVALID_INPUT.
func BatchApplyMapped[K, V, K2, V2 any](ctx context.Context, p *Pipeline[K, V], size int, itemFn ItemBiMapFunc[K, V, K2, V2], fn BatchFunc[K2, V2], opts ...BatchOption) error {
	if err := validateBatchSize(size); err != nil {
		return err
	}
	if itemFn == nil {
		return errors.InvalidInput("itemFn", "item function is nil")
	}
	if fn == nil {
		return errors.InvalidInput("fn", "batch function is nil")
	}
	o := newBatchOptions(opts)
	buf := newBatcher[K2, V2](size, o)
	start := time.Now()

	flush := func() error {
		number, batch := buf.take(ctx)
		return dispatchBatch(ctx, o, number, batch, fn)
	}

	err := walk(ctx, p, func(key K, val V) (bool, error) {
		o.recordElement(ctx)
		if buf.full() {
			if err := flush(); err != nil {
				return false, err
			}
		}
		k2, v2, ok := itemFn(key, val)
		if !ok {
			o.recordDropped(ctx)
			return true, nil
		}
		buf.add(k2, v2)
		return true, nil
	})
	if err == nil && buf.len() > 0 {
		err = flush()
	}
	o.finish(ctx, start, buf.number, err)
	return err
}

// batcher holds the working buffer shared by WrapBatch and BatchApply.
type batcher[K, V any] struct {
	size   int
	items  Batch[K, V]
	number int
	opts   *batchOptions
}

func newBatcher[K, V any](size int, opts *batchOptions) *batcher[K, V] {
	return &batcher[K, V]{size: size, opts: opts}
}

func (b *batcher[K, V]) len() int   { return len(b.items) }
func (b *batcher[K, V]) full() bool { return len(b.items) >= b.size }

func (b *batcher[K, V]) add(key K, value V) {
	if b.items == nil {
		b.items = make(Batch[K, V], 0, b.size)
	}
	b.items = append(b.items, Pair[K, V]{Key: key, Value: value})
}

// take returns the buffered batch with its number and starts a new buffer.
func (b *batcher[K, V]) take(ctx context.Context) (int, Batch[K, V]) {
	number, batch := b.number, b.items
	b.items = nil
	b.number++
	b.opts.recordBatch(ctx, number, len(batch))
	return number, batch
}

type batchIter[K, V any] struct {
	source Iterator[K, V]
	buf    *batcher[K, V]
	done   bool
}

func (it *batchIter[K, V]) Next(ctx context.Context) (int, Batch[K, V], bool, error) {
	for !it.done {
		key, val, ok, err := it.source.Next(ctx)
		if err != nil {
			it.buf.opts.recordError(ctx, err)
			return 0, nil, false, err
		}
		if !ok {
			it.done = true
			break
		}
		it.buf.opts.recordElement(ctx)
		if it.buf.full() {
			number, batch := it.buf.take(ctx)
			it.buf.add(key, val)
			return number, batch, true, nil
		}
		it.buf.add(key, val)
	}
	if it.buf.len() > 0 {
		number, batch := it.buf.take(ctx)
		return number, batch, true, nil
	}
	return 0, nil, false, nil
}

func (it *batchIter[K, V]) Close() error { return it.source.Close() }

// --- instrumentation ---

func (o *batchOptions) recordElement(ctx context.Context) {
	if o.metrics != nil {
		o.metrics.RecordElement(ctx, o.stage)
	}
}

func (o *batchOptions) recordDropped(ctx context.Context) {
	if o.metrics != nil {
		o.metrics.RecordDropped(ctx, o.stage)
	}
}

func (o *batchOptions) recordBatch(ctx context.Context, number, size int) {
	if o.metrics != nil {
		o.metrics.RecordBatch(ctx, o.stage, size)
	}
	if o.log != nil {
		o.log.Debug("batch flushed", logger.BatchFields(o.stage, number, size))
	}
}

func (o *batchOptions) recordError(ctx context.Context, err error) {
	if o.metrics != nil {
		o.metrics.RecordError(ctx, o.stage, err)
	}
	if o.log != nil {
		o.log.Error("batch stage failed", logger.MergeWithError(logger.Fields(logger.FieldStage, o.stage), err))
	}
}

// dispatchBatch calls fn for one batch, inside a span when a tracer is set.
func dispatchBatch[K, V any](ctx context.Context, o *batchOptions, number int, batch Batch[K, V], fn BatchFunc[K, V]) error {
	if o.tracer == nil {
		return fn(ctx, number, batch)
	}
	spanCtx, span := o.tracer.Start(ctx, observability.SpanBatchDispatch,
		trace.WithAttributes(
			attribute.String(observability.AttrStage, o.stage),
			attribute.Int(observability.AttrBatchNumber, number),
			attribute.Int(observability.AttrBatchSize, len(batch)),
		),
	)
	err := fn(spanCtx, number, batch)
	observability.EndSpan(span, err)
	return err
}

// finish logs and records the outcome of a BatchApply run.
func (o *batchOptions) finish(ctx context.Context, start time.Time, batches int, err error) {
	d := time.Since(start)
	status := "ok"
	if err != nil {
		status = "error"
		o.recordError(ctx, err)
	}
	if o.metrics != nil {
		o.metrics.RecordRun(ctx, o.stage, status, d)
	}
	if o.log != nil && err == nil {
		o.log.Debug("batch stage completed", logger.MergeWithDuration(
			logger.Fields(logger.FieldStage, o.stage, "batches", batches), d))
	}
}
