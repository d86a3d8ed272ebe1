package pipeline

import "context"

// Map transforms each value with fn and keeps the original key.
func Map[K, V, R any](p *Pipeline[K, V], fn MapFunc[K, V, R]) *Pipeline[K, R] {
	return &Pipeline[K, R]{
		create: func(ctx context.Context) Iterator[K, R] {
			return &mapIter[K, V, R]{source: p.create(ctx), fn: fn}
		},
	}
}

// MapIndexed transforms each value with fn and re-keys the output with a
// fresh zero-based index, independent of the source keys.
func MapIndexed[K, V, R any](p *Pipeline[K, V], fn MapFunc[K, V, R]) *Pipeline[int, R] {
	return &Pipeline[int, R]{
		create: func(ctx context.Context) Iterator[int, R] {
			return &indexIter[K, R]{source: Map(p, fn).create(ctx)}
		},
	}
}

// BiMap computes a new key and a new value for each element. keyFn runs
// before itemFn and both run for every element; afterwards the element is
// skipped if keyFn reported a null key. New keys are not checked for
// uniqueness.
func BiMap[K, V, K2, V2 any](p *Pipeline[K, V], keyFn KeyFunc[K, V, K2], itemFn MapFunc[K, V, V2]) *Pipeline[K2, V2] {
	return &Pipeline[K2, V2]{
		create: func(ctx context.Context) Iterator[K2, V2] {
			return &biMapIter[K, V, K2, V2]{source: p.create(ctx), keyFn: keyFn, itemFn: itemFn}
		},
	}
}

// Filter keeps the values for which pred is true and re-keys them with a
// fresh zero-based index. pred runs exactly once per source element.
func Filter[K, V any](p *Pipeline[K, V], pred Predicate[K, V]) *Pipeline[int, V] {
	return &Pipeline[int, V]{
		create: func(ctx context.Context) Iterator[int, V] {
			return &indexIter[K, V]{source: &filterIter[K, V]{source: p.create(ctx), fn: pred}}
		},
	}
}

// Tap calls fn as a side-effect for each element, then passes it through unchanged.
func Tap[K, V any](p *Pipeline[K, V], fn func(ctx context.Context, key K, value V) error) *Pipeline[K, V] {
	return &Pipeline[K, V]{
		create: func(ctx context.Context) Iterator[K, V] {
			return &tapIter[K, V]{source: p.create(ctx), fn: fn}
		},
	}
}

// Take yields at most n elements. After the n-th element the source is not
// pulled again, which makes Take the way to bound a generated sequence.
func Take[K, V any](p *Pipeline[K, V], n int) *Pipeline[K, V] {
	return &Pipeline[K, V]{
		create: func(ctx context.Context) Iterator[K, V] {
			return &takeIter[K, V]{source: p.create(ctx), remaining: n}
		},
	}
}

// Concat joins multiple pipelines sequentially, keys included.
func Concat[K, V any](pipelines ...*Pipeline[K, V]) *Pipeline[K, V] {
	return &Pipeline[K, V]{
		create: func(ctx context.Context) Iterator[K, V] {
			return &concatIter[K, V]{ctx: ctx, pipelines: pipelines}
		},
	}
}

// --- Iterator implementations ---

type mapIter[K, V, R any] struct {
	source Iterator[K, V]
	fn     MapFunc[K, V, R]
}

func (it *mapIter[K, V, R]) Next(ctx context.Context) (key K, result R, ok bool, err error) {
	key, val, ok, err := it.source.Next(ctx)
	if err != nil || !ok {
		return key, result, false, err
	}
	out, err := it.fn(ctx, key, val)
	if err != nil {
		return key, result, false, err
	}
	return key, out, true, nil
}

func (it *mapIter[K, V, R]) Close() error { return it.source.Close() }

// indexIter replaces the keys of source with 0, 1, 2, ...
type indexIter[K, V any] struct {
	source Iterator[K, V]
	index  int
}

func (it *indexIter[K, V]) Next(ctx context.Context) (int, V, bool, error) {
	_, val, ok, err := it.source.Next(ctx)
	if err != nil || !ok {
		return 0, val, false, err
	}
	i := it.index
	it.index++
	return i, val, true, nil
}

func (it *indexIter[K, V]) Close() error { return it.source.Close() }

type biMapIter[K, V, K2, V2 any] struct {
	source Iterator[K, V]
	keyFn  KeyFunc[K, V, K2]
	itemFn MapFunc[K, V, V2]
}

func (it *biMapIter[K, V, K2, V2]) Next(ctx context.Context) (newKey K2, newVal V2, ok bool, err error) {
	for {
		key, val, ok, err := it.source.Next(ctx)
		if err != nil || !ok {
			var (
				zk K2
				zv V2
			)
			return zk, zv, false, err
		}
		k2, keep := it.keyFn(key, val)
		v2, err := it.itemFn(ctx, key, val)
		if err != nil {
			var (
				zk K2
				zv V2
			)
			return zk, zv, false, err
		}
		if keep {
			return k2, v2, true, nil
		}
	}
}

func (it *biMapIter[K, V, K2, V2]) Close() error { return it.source.Close() }

type filterIter[K, V any] struct {
	source Iterator[K, V]
	fn     Predicate[K, V]
}

func (it *filterIter[K, V]) Next(ctx context.Context) (key K, val V, ok bool, err error) {
	for {
		key, val, ok, err := it.source.Next(ctx)
		if err != nil || !ok {
			return key, val, false, err
		}
		if it.fn(key, val) {
			return key, val, true, nil
		}
	}
}

func (it *filterIter[K, V]) Close() error { return it.source.Close() }

type tapIter[K, V any] struct {
	source Iterator[K, V]
	fn     func(context.Context, K, V) error
}

func (it *tapIter[K, V]) Next(ctx context.Context) (key K, val V, ok bool, err error) {
	key, val, ok, err = it.source.Next(ctx)
	if err != nil || !ok {
		return key, val, ok, err
	}
	if err := it.fn(ctx, key, val); err != nil {
		return key, val, false, err
	}
	return key, val, true, nil
}

func (it *tapIter[K, V]) Close() error { return it.source.Close() }

type takeIter[K, V any] struct {
	source    Iterator[K, V]
	remaining int
}

func (it *takeIter[K, V]) Next(ctx context.Context) (key K, val V, ok bool, err error) {
	if it.remaining <= 0 {
		return key, val, false, nil
	}
	key, val, ok, err = it.source.Next(ctx)
	if err != nil || !ok {
		return key, val, false, err
	}
	it.remaining--
	return key, val, true, nil
}

func (it *takeIter[K, V]) Close() error { return it.source.Close() }

// concatIter creates each source iterator only when the previous one is
// exhausted, so later pipelines are not started early.
type concatIter[K, V any] struct {
	ctx       context.Context
	pipelines []*Pipeline[K, V]
	current   Iterator[K, V]
	index     int
}

func (it *concatIter[K, V]) Next(ctx context.Context) (key K, val V, ok bool, err error) {
	for it.index < len(it.pipelines) {
		if it.current == nil {
			it.current = it.pipelines[it.index].create(it.ctx)
		}
		key, val, ok, err = it.current.Next(ctx)
		if err != nil {
			return key, val, false, err
		}
		if ok {
			return key, val, true, nil
		}
		if err := it.current.Close(); err != nil {
			return key, val, false, err
		}
		it.current = nil
		it.index++
	}
	return key, val, false, nil
}

func (it *concatIter[K, V]) Close() error {
	if it.current != nil {
		return it.current.Close()
	}
	return nil
}
