// Package pipeline provides composable, pull-based key/value sequence operators.
//
// A Pipeline[K, V] is lazy: no source element is read and no stage function
// runs until a terminal operation pulls. Each stage pulls one element from
// the previous stage per request, so producer and consumer interleave
// element by element and unbounded sources can be processed in bounded
// memory when the consumer stops early (Take, Apply).
//
// Everything runs on the caller's goroutine. The only cancellation points
// are an ApplyFunc returning false and the context passed to the terminal.
//
// # Sources
//
//   - FromSlice, FromPairs, FromMap (ascending key order), FromSeq2
//   - Generate: on-demand, possibly unbounded
//   - From, FromFunc: wrap a hand-written Iterator
//
// # Lazy operators
//
//   - Map: new value, original key
//   - MapIndexed: new value, keys 0, 1, 2, ...
//   - BiMap: new key and new value; a null key drops the element
//   - Filter: keep matching values, re-keyed 0, 1, 2, ...
//   - Tap, Take, Concat
//   - WrapBatch: group consecutive elements into fixed-size batches
//
// # Terminals
//
//   - ExtractField: one field per value, as a slice
//   - Apply: call a function per element, stop when it returns false
//   - ToMap: index values by a computed key, last write wins
//   - Reduce: strict left fold
//   - BatchApply, BatchApplyMapped: hand fixed-size batches to a function
//   - Collect, ForEach, Drain, All
//
// # Usage
//
//	src := pipeline.FromMap(map[string]int{"a": 1, "b": 2, "c": 3})
//	odd := pipeline.Filter(src, func(_ string, n int) bool { return n%2 == 1 })
//	sum, _ := pipeline.Reduce(ctx, odd, 0, pipeline.SumReduceFunc[int, int]())
//
// Batching with instrumentation:
//
//	opts, _ := cfg.Pipeline.BatchOptions(log)
//	err := pipeline.BatchApply(ctx, rows, cfg.Pipeline.BatchSize,
//	    func(ctx context.Context, n int, b pipeline.Batch[int, Row]) error {
//	        return store.Insert(ctx, b.Values())
//	    }, opts...)
package pipeline
