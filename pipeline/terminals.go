package pipeline

import (
	"context"
	"iter"
)

// Runnable is a fully-configured pipeline ready to execute.
type Runnable struct {
	run func(ctx context.Context) error
}

// Run executes the pipeline until completion, the first error, or context
// cancellation.
func (r *Runnable) Run(ctx context.Context) error {
	return r.run(ctx)
}

// Drain creates a Runnable that pulls every element and sends it to sink.
func Drain[K, V any](p *Pipeline[K, V], sink func(ctx context.Context, key K, value V) error) *Runnable {
	return &Runnable{
		run: func(ctx context.Context) error {
			return walk(ctx, p, func(key K, val V) (bool, error) {
				return true, sink(ctx, key, val)
			})
		},
	}
}

// ForEach pulls all elements and calls fn for each. Convenience wrapper around Drain.
func ForEach[K, V any](ctx context.Context, p *Pipeline[K, V], fn func(ctx context.Context, key K, value V) error) error {
	return Drain(p, fn).Run(ctx)
}

// Collect runs the pipeline and returns all pairs in traversal order. On
// failure the pairs gathered so far are returned with the error.
func Collect[K, V any](ctx context.Context, p *Pipeline[K, V]) ([]Pair[K, V], error) {
	var result []Pair[K, V]
	err := walk(ctx, p, func(key K, val V) (bool, error) {
		result = append(result, Pair[K, V]{Key: key, Value: val})
		return true, nil
	})
	return result, err
}

// All adapts the pipeline to a range-over-func sequence. A failure is
// yielded once as the error of a zero pair, after which the sequence ends.
//
//	for pair, err := range pipeline.All(ctx, p) {
//	    if err != nil { ... }
//	}
func All[K, V any](ctx context.Context, p *Pipeline[K, V]) iter.Seq2[Pair[K, V], error] {
	return func(yield func(Pair[K, V], error) bool) {
		err := walk(ctx, p, func(key K, val V) (bool, error) {
			return yield(Pair[K, V]{Key: key, Value: val}, nil), nil
		})
		if err != nil {
			yield(Pair[K, V]{}, err)
		}
	}
}

// ExtractField returns fn(value) for every element in traversal order,
// dropping the keys.
func ExtractField[K, V, R any](ctx context.Context, p *Pipeline[K, V], fn ColumnFunc[V, R]) ([]R, error) {
	var result []R
	err := walk(ctx, p, func(_ K, val V) (bool, error) {
		r, err := fn(val)
		if err != nil {
			return false, err
		}
		result = append(result, r)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Apply calls fn for each element in order and stops pulling from the
// source as soon as fn returns false.
func Apply[K, V any](ctx context.Context, p *Pipeline[K, V], fn ApplyFunc[K, V]) error {
	return walk(ctx, p, func(key K, val V) (bool, error) {
		return fn(ctx, key, val)
	})
}

// ToMap drains the pipeline into a map keyed by idFn. Elements for which
// idFn reports a null key are skipped; on key collisions the later element
// wins.
func ToMap[K, V any, K2 comparable](ctx context.Context, p *Pipeline[K, V], idFn KeyFunc[K, V, K2]) (map[K2]V, error) {
	result := make(map[K2]V)
	err := walk(ctx, p, func(key K, val V) (bool, error) {
		if id, ok := idFn(key, val); ok {
			result[id] = val
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Reduce folds the pipeline left to right starting from init. An empty
// pipeline returns init unchanged.
func Reduce[K, V, A any](ctx context.Context, p *Pipeline[K, V], init A, fn ReduceFunc[A, K, V]) (A, error) {
	acc := init
	err := walk(ctx, p, func(key K, val V) (bool, error) {
		acc = fn(acc, key, val)
		return true, nil
	})
	if err != nil {
		var zero A
		return zero, err
	}
	return acc, nil
}

// walk drives one traversal of p, calling visit for each element until the
// source is exhausted, visit returns false, or an error occurs. The
// iterator is always closed; a Close error is reported only if the
// traversal itself succeeded.
func walk[K, V any](ctx context.Context, p *Pipeline[K, V], visit func(K, V) (bool, error)) (err error) {
	it := p.create(ctx)
	defer func() {
		if cerr := it.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	for {
		key, val, ok, err := it.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		cont, err := visit(key, val)
		if err != nil {
			return err
		}
		if !cont {
			return nil
		}
	}
}
