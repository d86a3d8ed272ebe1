package pipeline

import (
	"context"

	"github.com/google/uuid"
)

// Addable is the set of types SumReduceFunc can add.
type Addable interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr |
		~float32 | ~float64 | ~string
}

// SequentialKeys hands out consecutive integer keys.
// The zero value starts at 0. Not safe for concurrent use.
type SequentialKeys struct {
	next int
}

// NewSequentialKeys returns a counter whose first key is start.
func NewSequentialKeys(start int) *SequentialKeys {
	return &SequentialKeys{next: start}
}

// Next returns the current key and advances the counter.
func (s *SequentialKeys) Next() int {
	k := s.next
	s.next++
	return k
}

// SequentialKeyFunc returns a KeyFunc yielding start, start+1, ... in call
// order, ignoring the element. Every call to SequentialKeyFunc owns a
// separate counter.
func SequentialKeyFunc[K, V any](start int) KeyFunc[K, V, int] {
	keys := NewSequentialKeys(start)
	return func(K, V) (int, bool) {
		return keys.Next(), true
	}
}

// PassThroughFunc returns a MapFunc that yields the value unchanged.
func PassThroughFunc[K, V any]() MapFunc[K, V, V] {
	return func(_ context.Context, _ K, value V) (V, error) {
		return value, nil
	}
}

// PassThroughKeyFunc returns a KeyFunc that yields the element's own key.
func PassThroughKeyFunc[K, V any]() KeyFunc[K, V, K] {
	return func(key K, _ V) (K, bool) {
		return key, true
	}
}

// ValueKeyFunc returns a KeyFunc that uses the value as the key.
func ValueKeyFunc[K, V any]() KeyFunc[K, V, V] {
	return func(_ K, value V) (V, bool) {
		return value, true
	}
}

// UUIDKeyFunc returns a KeyFunc producing a fresh random UUID per element.
func UUIDKeyFunc[K, V any]() KeyFunc[K, V, string] {
	return func(K, V) (string, bool) {
		return uuid.NewString(), true
	}
}

// SimplePredicateFunc returns a predicate that always answers result.
func SimplePredicateFunc[K, V any](result bool) Predicate[K, V] {
	return func(K, V) bool {
		return result
	}
}

// SumReduceFunc returns a ReduceFunc adding each value to the accumulator.
func SumReduceFunc[K any, V Addable]() ReduceFunc[V, K, V] {
	return func(acc V, _ K, value V) V {
		return acc + value
	}
}
