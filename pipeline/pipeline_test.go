package pipeline

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// countingSource returns the unbounded sequence 0, 1, 2, ... keyed by
// index, and a counter of how many elements have been produced.
func countingSource() (*Pipeline[int, int], *int) {
	pulled := new(int)
	return Generate(func(_ context.Context, i int) (int, bool, error) {
		*pulled++
		return i, true, nil
	}), pulled
}

// failingSource yields 0..n-1 and then fails with err.
func failingSource(n int, err error) *Pipeline[int, int] {
	return Generate(func(_ context.Context, i int) (int, bool, error) {
		if i == n {
			return 0, false, err
		}
		return i, true, nil
	})
}

func letters() *Pipeline[string, int] {
	return FromPairs([]Pair[string, int]{{"a", 1}, {"b", 2}, {"c", 3}, {"d", 4}})
}

func TestFromSlice_Collect(t *testing.T) {
	got, err := Collect(context.Background(), FromSlice([]string{"x", "y"}))
	if err != nil {
		t.Fatal(err)
	}
	want := []Pair[int, string]{{0, "x"}, {1, "y"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Collect() mismatch (-want +got):\n%s", diff)
	}
}

func TestFromSlice_Empty(t *testing.T) {
	got, err := Collect(context.Background(), FromSlice([]int{}))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty, got %v", got)
	}
}

func TestFromPairs_KeepsDuplicateKeys(t *testing.T) {
	src := []Pair[string, int]{{"a", 1}, {"a", 2}, {"b", 3}}
	got, err := Collect(context.Background(), FromPairs(src))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(src, got); diff != "" {
		t.Errorf("Collect() mismatch (-want +got):\n%s", diff)
	}
}

func TestFromMap_AscendingKeys(t *testing.T) {
	got, err := Collect(context.Background(), FromMap(map[string]int{"c": 3, "a": 1, "b": 2}))
	if err != nil {
		t.Fatal(err)
	}
	want := []Pair[string, int]{{"a", 1}, {"b", 2}, {"c", 3}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Collect() mismatch (-want +got):\n%s", diff)
	}
}

func TestFrom_Iterator(t *testing.T) {
	it := &pairsIter[string, int]{pairs: []Pair[string, int]{{"k", 7}}}
	got, err := Collect(context.Background(), From[string, int](it))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Key != "k" || got[0].Value != 7 {
		t.Errorf("got %v, want [{k 7}]", got)
	}
}

func TestFromSeq2_StopsOnClose(t *testing.T) {
	stopped := false
	var seq iter.Seq2[int, int] = func(yield func(int, int) bool) {
		defer func() { stopped = true }()
		for i := 0; ; i++ {
			if !yield(i, i*i) {
				return
			}
		}
	}

	got, err := Collect(context.Background(), Take(FromSeq2(seq), 3))
	if err != nil {
		t.Fatal(err)
	}
	want := []Pair[int, int]{{0, 0}, {1, 1}, {2, 4}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Collect() mismatch (-want +got):\n%s", diff)
	}
	if !stopped {
		t.Error("expected the sequence to be stopped when the traversal closed")
	}
}

func TestFromSeq2_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var seq iter.Seq2[string, int] = func(yield func(string, int) bool) { yield("a", 1) }
	_, err := Collect(ctx, FromSeq2(seq))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestGenerate_Bounded(t *testing.T) {
	p := Generate(func(_ context.Context, i int) (string, bool, error) {
		if i == 3 {
			return "", false, nil
		}
		return strings.Repeat("*", i+1), true, nil
	})
	got, err := ExtractField(context.Background(), p, func(s string) (int, error) { return len(s), nil })
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{1, 2, 3}, got); diff != "" {
		t.Errorf("ExtractField() mismatch (-want +got):\n%s", diff)
	}
}

func TestPipeline_FreshTraversalPerRun(t *testing.T) {
	p := Map(letters(), func(_ context.Context, _ string, n int) (int, error) { return n * 10, nil })
	first, err := Collect(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Collect(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second run differs (-first +second):\n%s", diff)
	}
}

func TestMap_KeepsKeys(t *testing.T) {
	double := func(_ context.Context, _ string, n int) (int, error) { return n * 2, nil }

	got, err := ToMap(context.Background(), Map(letters(), double), PassThroughKeyFunc[string, int]())
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]int{"a": 2, "b": 4, "c": 6, "d": 8}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ToMap() mismatch (-want +got):\n%s", diff)
	}
}

func TestMapIndexed_MatchesSequentialBiMap(t *testing.T) {
	ctx := context.Background()

	indexed, err := Collect(ctx, MapIndexed(letters(), PassThroughFunc[string, int]()))
	if err != nil {
		t.Fatal(err)
	}
	bimapped, err := Collect(ctx, BiMap(letters(), SequentialKeyFunc[string, int](0), PassThroughFunc[string, int]()))
	if err != nil {
		t.Fatal(err)
	}

	want := []Pair[int, int]{{0, 1}, {1, 2}, {2, 3}, {3, 4}}
	if diff := cmp.Diff(want, indexed); diff != "" {
		t.Errorf("MapIndexed() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(indexed, bimapped); diff != "" {
		t.Errorf("BiMap() differs from MapIndexed() (-indexed +bimapped):\n%s", diff)
	}
}

func TestMap_Error(t *testing.T) {
	boom := errors.New("bad value")
	p := Map(FromSlice([]int{1, 2, 3}), func(_ context.Context, _ int, n int) (int, error) {
		if n == 2 {
			return 0, boom
		}
		return n, nil
	})
	got, err := Collect(context.Background(), p)
	if !errors.Is(err, boom) {
		t.Fatalf("expected %v, got %v", boom, err)
	}
	if len(got) != 1 || got[0].Value != 1 {
		t.Errorf("expected [1] before error, got %v", got)
	}
}

func TestMap_Lazy(t *testing.T) {
	src, pulled := countingSource()
	calls := 0
	p := Map(src, func(_ context.Context, _ int, n int) (int, error) {
		calls++
		return n + 1, nil
	})

	it := p.Iter(context.Background())
	defer it.Close()

	if *pulled != 0 || calls != 0 {
		t.Fatalf("expected no work before the first pull, got pulled=%d calls=%d", *pulled, calls)
	}
	for i := 0; i < 3; i++ {
		key, val, ok, err := it.Next(context.Background())
		if err != nil || !ok {
			t.Fatalf("Next() = ok=%v err=%v", ok, err)
		}
		if key != i || val != i+1 {
			t.Errorf("Next() = (%d, %d), want (%d, %d)", key, val, i, i+1)
		}
		if *pulled != i+1 || calls != i+1 {
			t.Errorf("after %d pulls: pulled=%d calls=%d", i+1, *pulled, calls)
		}
	}
}

func TestBiMap_CallOrderAndSkip(t *testing.T) {
	var calls []string
	keyFn := func(k string, n int) (string, bool) {
		calls = append(calls, "key:"+k)
		return strings.ToUpper(k), n%2 == 1
	}
	itemFn := func(_ context.Context, k string, n int) (int, error) {
		calls = append(calls, "item:"+k)
		return n * 100, nil
	}

	got, err := Collect(context.Background(), BiMap(letters(), keyFn, itemFn))
	if err != nil {
		t.Fatal(err)
	}

	want := []Pair[string, int]{{"A", 100}, {"C", 300}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("BiMap() mismatch (-want +got):\n%s", diff)
	}
	wantCalls := []string{"key:a", "item:a", "key:b", "item:b", "key:c", "item:c", "key:d", "item:d"}
	if diff := cmp.Diff(wantCalls, calls); diff != "" {
		t.Errorf("call order mismatch (-want +got):\n%s", diff)
	}
}

func TestBiMap_CollidingKeys(t *testing.T) {
	constKey := func(string, int) (string, bool) { return "same", true }
	got, err := Collect(context.Background(), BiMap(letters(), constKey, PassThroughFunc[string, int]()))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 4 {
		t.Errorf("expected all 4 elements under the colliding key, got %v", got)
	}
}

func TestBiMap_ItemErrorOnSkippedElement(t *testing.T) {
	boom := errors.New("item failed")
	nullKey := func(string, int) (string, bool) { return "", false }
	failing := func(context.Context, string, int) (int, error) { return 0, boom }

	_, err := Collect(context.Background(), BiMap(letters(), nullKey, failing))
	if !errors.Is(err, boom) {
		t.Errorf("expected %v even though the key was null, got %v", boom, err)
	}
}

func TestBiMap_Lazy(t *testing.T) {
	src, pulled := countingSource()
	p := BiMap(src, ValueKeyFunc[int, int](), PassThroughFunc[int, int]())

	got, err := Collect(context.Background(), Take(p, 2))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || *pulled != 2 {
		t.Errorf("expected 2 elements from 2 pulls, got %v from %d", got, *pulled)
	}
}

func TestFilter_ConstantPredicates(t *testing.T) {
	ctx := context.Background()

	none, err := Collect(ctx, Filter(letters(), SimplePredicateFunc[string, int](false)))
	if err != nil {
		t.Fatal(err)
	}
	if len(none) != 0 {
		t.Errorf("expected empty, got %v", none)
	}

	all, err := Collect(ctx, Filter(letters(), SimplePredicateFunc[string, int](true)))
	if err != nil {
		t.Fatal(err)
	}
	want := []Pair[int, int]{{0, 1}, {1, 2}, {2, 3}, {3, 4}}
	if diff := cmp.Diff(want, all); diff != "" {
		t.Errorf("Filter(true) mismatch (-want +got):\n%s", diff)
	}
}

func TestFilter_RekeysAndCallsOnce(t *testing.T) {
	calls := 0
	even := func(_ string, n int) bool {
		calls++
		return n%2 == 0
	}
	got, err := Collect(context.Background(), Filter(letters(), even))
	if err != nil {
		t.Fatal(err)
	}
	want := []Pair[int, int]{{0, 2}, {1, 4}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Filter() mismatch (-want +got):\n%s", diff)
	}
	if calls != 4 {
		t.Errorf("expected predicate called once per element, got %d", calls)
	}
}

func TestFilter_Lazy(t *testing.T) {
	src, pulled := countingSource()
	p := Filter(src, func(_ int, n int) bool { return n%2 == 0 })

	got, err := ExtractField(context.Background(), Take(p, 3), func(n int) (int, error) { return n, nil })
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{0, 2, 4}, got); diff != "" {
		t.Errorf("Filter() mismatch (-want +got):\n%s", diff)
	}
	if *pulled != 5 {
		t.Errorf("expected 5 source pulls, got %d", *pulled)
	}
}

func TestTap(t *testing.T) {
	var seen []string
	p := Tap(letters(), func(_ context.Context, k string, _ int) error {
		seen = append(seen, k)
		return nil
	})
	if err := Drain(p, func(context.Context, string, int) error { return nil }).Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"a", "b", "c", "d"}, seen); diff != "" {
		t.Errorf("Tap() mismatch (-want +got):\n%s", diff)
	}
}

func TestTake_Zero(t *testing.T) {
	src, pulled := countingSource()
	got, err := Collect(context.Background(), Take(src, 0))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 || *pulled != 0 {
		t.Errorf("expected nothing pulled, got %v after %d pulls", got, *pulled)
	}
}

func TestConcat_CreatesSourcesLazily(t *testing.T) {
	created := 0
	second := FromFunc(func(ctx context.Context) Iterator[string, int] {
		created++
		return letters().Iter(ctx)
	})

	first, err := Collect(context.Background(), Take(Concat(letters(), second), 2))
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != 2 || created != 0 {
		t.Errorf("expected second source untouched, got %v with %d creations", first, created)
	}

	all, err := Collect(context.Background(), Concat(letters(), second))
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 8 || created != 1 {
		t.Errorf("expected 8 elements from both sources, got %d with %d creations", len(all), created)
	}
}

func TestExtractField(t *testing.T) {
	got, err := ExtractField(context.Background(), letters(), func(n int) (string, error) {
		return fmt.Sprintf("#%d", n), nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"#1", "#2", "#3", "#4"}, got); diff != "" {
		t.Errorf("ExtractField() mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractField_Errors(t *testing.T) {
	boom := errors.New("source failed")
	got, err := ExtractField(context.Background(), failingSource(2, boom), func(n int) (int, error) { return n, nil })
	if !errors.Is(err, boom) || got != nil {
		t.Errorf("expected (nil, %v), got (%v, %v)", boom, got, err)
	}

	bad := errors.New("column failed")
	_, err = ExtractField(context.Background(), letters(), func(int) (int, error) { return 0, bad })
	if !errors.Is(err, bad) {
		t.Errorf("expected %v, got %v", bad, err)
	}
}

func TestApply_StopsEarly(t *testing.T) {
	src, pulled := countingSource()
	var seen []int
	err := Apply(context.Background(), src, func(_ context.Context, _ int, n int) (bool, error) {
		seen = append(seen, n)
		return len(seen) < 2, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{0, 1}, seen); diff != "" {
		t.Errorf("Apply() mismatch (-want +got):\n%s", diff)
	}
	if *pulled != 2 {
		t.Errorf("expected exactly 2 pulls, got %d", *pulled)
	}
}

func TestApply_Error(t *testing.T) {
	boom := errors.New("apply failed")
	calls := 0
	err := Apply(context.Background(), letters(), func(context.Context, string, int) (bool, error) {
		calls++
		return true, boom
	})
	if !errors.Is(err, boom) || calls != 1 {
		t.Errorf("expected %v after 1 call, got %v after %d", boom, err, calls)
	}
}

func TestToMap_LastWriteWinsAndNullSkip(t *testing.T) {
	byParity := func(_ string, n int) (string, bool) {
		if n == 3 {
			return "", false
		}
		if n%2 == 0 {
			return "even", true
		}
		return "odd", true
	}
	got, err := ToMap(context.Background(), letters(), byParity)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]int{"odd": 1, "even": 4}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ToMap() mismatch (-want +got):\n%s", diff)
	}
}

func TestToMap_SourceError(t *testing.T) {
	boom := errors.New("source failed")
	got, err := ToMap(context.Background(), failingSource(1, boom), ValueKeyFunc[int, int]())
	if !errors.Is(err, boom) || got != nil {
		t.Errorf("expected (nil, %v), got (%v, %v)", boom, got, err)
	}
}

func TestReduce(t *testing.T) {
	tests := []struct {
		name string
		src  *Pipeline[string, int]
		init int
		want int
	}{
		{"sum", FromPairs([]Pair[string, int]{{"x", 1}, {"y", 2}, {"z", 3}}), 0, 6},
		{"with start", FromPairs([]Pair[string, int]{{"x", 1}, {"y", 2}, {"z", 3}}), 10, 16},
		{"empty", FromPairs[string, int](nil), 42, 42},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Reduce(context.Background(), tc.src, tc.init, SumReduceFunc[string, int]())
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.want {
				t.Errorf("Reduce() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestReduce_LeftFold(t *testing.T) {
	got, err := Reduce(context.Background(), letters(), "", func(acc string, k string, n int) string {
		return acc + k + fmt.Sprint(n)
	})
	if err != nil {
		t.Fatal(err)
	}
	if got != "a1b2c3d4" {
		t.Errorf("Reduce() = %q, want a1b2c3d4", got)
	}
}

func TestReduce_SourceError(t *testing.T) {
	boom := errors.New("source failed")
	got, err := Reduce(context.Background(), failingSource(3, boom), 0, SumReduceFunc[int, int]())
	if !errors.Is(err, boom) || got != 0 {
		t.Errorf("expected (0, %v), got (%d, %v)", boom, got, err)
	}
}

func TestForEach(t *testing.T) {
	sum := 0
	err := ForEach(context.Background(), letters(), func(_ context.Context, _ string, n int) error {
		sum += n
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if sum != 10 {
		t.Errorf("expected sum 10, got %d", sum)
	}
}

func TestAll(t *testing.T) {
	var keys []string
	for pair, err := range All(context.Background(), letters()) {
		if err != nil {
			t.Fatal(err)
		}
		keys = append(keys, pair.Key)
		if len(keys) == 3 {
			break
		}
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, keys); diff != "" {
		t.Errorf("All() mismatch (-want +got):\n%s", diff)
	}
}

func TestAll_Error(t *testing.T) {
	boom := errors.New("source failed")
	var values []int
	var gotErr error
	for pair, err := range All(context.Background(), failingSource(2, boom)) {
		if err != nil {
			gotErr = err
			continue
		}
		values = append(values, pair.Value)
	}
	if !errors.Is(gotErr, boom) {
		t.Errorf("expected %v, got %v", boom, gotErr)
	}
	if diff := cmp.Diff([]int{0, 1}, values); diff != "" {
		t.Errorf("All() mismatch (-want +got):\n%s", diff)
	}
}
