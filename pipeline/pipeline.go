package pipeline

import (
	"cmp"
	"context"
	"iter"
	"maps"
	"slices"
)

// Pair is one element of a key/value sequence.
type Pair[K, V any] struct {
	Key   K
	Value V
}

// Iterator provides pull-based, forward-only access to a key/value sequence.
type Iterator[K, V any] interface {
	// Next returns the next pair. Returns ok=false when exhausted. A non-nil
	// error ends the traversal.
	Next(ctx context.Context) (key K, value V, ok bool, err error)
	// Close releases any resources held by the iterator.
	Close() error
}

// Pipeline is a lazy, pull-based key/value sequence.
// No work happens until a terminal operation pulls from it, and every
// terminal run creates a fresh traversal.
type Pipeline[K, V any] struct {
	create func(ctx context.Context) Iterator[K, V]
}

// Iter returns the raw Iterator for this pipeline. The caller must Close() it.
func (p *Pipeline[K, V]) Iter(ctx context.Context) Iterator[K, V] {
	return p.create(ctx)
}

// --- Constructors ---

// From creates a pipeline from an existing Iterator. The iterator is shared,
// so the pipeline can only be traversed once.
func From[K, V any](it Iterator[K, V]) *Pipeline[K, V] {
	return &Pipeline[K, V]{
		create: func(_ context.Context) Iterator[K, V] {
			return it
		},
	}
}

// FromFunc creates a pipeline from a factory that produces an Iterator.
func FromFunc[K, V any](fn func(ctx context.Context) Iterator[K, V]) *Pipeline[K, V] {
	return &Pipeline[K, V]{create: fn}
}

// FromSlice creates a pipeline over items keyed by their index.
func FromSlice[V any](items []V) *Pipeline[int, V] {
	return &Pipeline[int, V]{
		create: func(_ context.Context) Iterator[int, V] {
			return &sliceIter[V]{items: items}
		},
	}
}

// FromPairs creates a pipeline over explicit pairs. Duplicate keys are kept.
func FromPairs[K, V any](pairs []Pair[K, V]) *Pipeline[K, V] {
	return &Pipeline[K, V]{
		create: func(_ context.Context) Iterator[K, V] {
			return &pairsIter[K, V]{pairs: pairs}
		},
	}
}

// FromMap creates a pipeline over m in ascending key order.
func FromMap[K cmp.Ordered, V any](m map[K]V) *Pipeline[K, V] {
	return &Pipeline[K, V]{
		create: func(_ context.Context) Iterator[K, V] {
			keys := slices.Sorted(maps.Keys(m))
			pairs := make([]Pair[K, V], len(keys))
			for i, k := range keys {
				pairs[i] = Pair[K, V]{Key: k, Value: m[k]}
			}
			return &pairsIter[K, V]{pairs: pairs}
		},
	}
}

// FromSeq2 creates a pipeline over a range-over-func sequence. The sequence
// is pulled one element per Next and stopped on Close.
func FromSeq2[K, V any](seq iter.Seq2[K, V]) *Pipeline[K, V] {
	return &Pipeline[K, V]{
		create: func(_ context.Context) Iterator[K, V] {
			next, stop := iter.Pull2(seq)
			return &pullIter[K, V]{next: next, stop: stop}
		},
	}
}

// Generate creates a pipeline whose i-th value is produced by fn on demand.
// The sequence ends when fn reports ok=false; if it never does, the
// pipeline is unbounded.
func Generate[V any](fn func(ctx context.Context, i int) (V, bool, error)) *Pipeline[int, V] {
	return &Pipeline[int, V]{
		create: func(_ context.Context) Iterator[int, V] {
			return &generateIter[V]{fn: fn}
		},
	}
}

// --- Internal iterators ---

type sliceIter[V any] struct {
	items []V
	index int
}

func (it *sliceIter[V]) Next(_ context.Context) (int, V, bool, error) {
	if it.index >= len(it.items) {
		var zero V
		return 0, zero, false, nil
	}
	i := it.index
	it.index++
	return i, it.items[i], true, nil
}

func (it *sliceIter[V]) Close() error { return nil }

type pairsIter[K, V any] struct {
	pairs []Pair[K, V]
	index int
}

func (it *pairsIter[K, V]) Next(_ context.Context) (K, V, bool, error) {
	if it.index >= len(it.pairs) {
		var (
			zk K
			zv V
		)
		return zk, zv, false, nil
	}
	p := it.pairs[it.index]
	it.index++
	return p.Key, p.Value, true, nil
}

func (it *pairsIter[K, V]) Close() error { return nil }

type pullIter[K, V any] struct {
	next func() (K, V, bool)
	stop func()
}

func (it *pullIter[K, V]) Next(ctx context.Context) (K, V, bool, error) {
	if err := ctx.Err(); err != nil {
		var (
			zk K
			zv V
		)
		return zk, zv, false, err
	}
	k, v, ok := it.next()
	return k, v, ok, nil
}

func (it *pullIter[K, V]) Close() error {
	it.stop()
	return nil
}

type generateIter[V any] struct {
	fn    func(ctx context.Context, i int) (V, bool, error)
	index int
	done  bool
}

func (it *generateIter[V]) Next(ctx context.Context) (int, V, bool, error) {
	var zero V
	if it.done {
		return 0, zero, false, nil
	}
	v, ok, err := it.fn(ctx, it.index)
	if err != nil || !ok {
		it.done = true
		return 0, zero, false, err
	}
	i := it.index
	it.index++
	return i, v, true, nil
}

func (it *generateIter[V]) Close() error { return nil }
