package pipeline

import "context"

// MapFunc computes a new value for one element.
type MapFunc[K, V, R any] func(ctx context.Context, key K, value V) (R, error)

// KeyFunc computes a key for one element. ok=false stands for a null key:
// the operation using it skips the element.
type KeyFunc[K, V, R any] func(key K, value V) (R, bool)

// Predicate reports whether an element is kept.
type Predicate[K, V any] func(key K, value V) bool

// ReduceFunc folds one element into the accumulator.
type ReduceFunc[A, K, V any] func(acc A, key K, value V) A

// ApplyFunc is called for each element by Apply; returning false stops the walk.
type ApplyFunc[K, V any] func(ctx context.Context, key K, value V) (bool, error)

// ColumnFunc extracts one field from a value.
type ColumnFunc[V, R any] func(value V) (R, error)

// ItemBiMapFunc remaps an element before it is buffered by BatchApplyMapped.
// ok=false drops the element.
type ItemBiMapFunc[K, V, K2, V2 any] func(key K, value V) (K2, V2, bool)

// BatchFunc receives each flushed batch together with its zero-based number.
type BatchFunc[K, V any] func(ctx context.Context, number int, batch Batch[K, V]) error
