package bench

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"
)

func TestLookupAlgorithms(t *testing.T) {
	all, err := LookupAlgorithms(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != len(AlgorithmNames()) {
		t.Errorf("empty selection should return all %d algorithms, got %d", len(AlgorithmNames()), len(all))
	}

	algos, err := LookupAlgorithms([]string{"std", " radix ", "std"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(algos) != 2 || algos[0].Name != "std" || algos[1].Name != "radix" {
		t.Errorf("expected [std radix], got %v", algos)
	}

	_, err = LookupAlgorithms([]string{"bogosort"})
	if !errors.Is(err, ErrUnknownAlgorithm) {
		t.Errorf("expected ErrUnknownAlgorithm, got %v", err)
	}
}

func TestAlgorithms_AllSort(t *testing.T) {
	input := []uint32{5, 2, 9, 1, 5, 6, 0, 0xFFFFFFFF}
	expected := []uint32{0, 1, 2, 5, 5, 6, 9, 0xFFFFFFFF}
	for _, algo := range Algorithms() {
		t.Run(algo.Name, func(t *testing.T) {
			got := algo.Sort(slices.Clone(input))
			if !slices.Equal(got, expected) {
				t.Errorf("expected %v, got %v", expected, got)
			}
		})
	}
}

func TestGenerateKeys_Deterministic(t *testing.T) {
	ctx := context.Background()
	n := 3*generateChunk + 17

	a, err := GenerateKeys(ctx, n, 42, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := GenerateKeys(ctx, n, 42, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(a) != n {
		t.Fatalf("expected %d keys, got %d", n, len(a))
	}
	if !slices.Equal(a, b) {
		t.Error("output should not depend on the worker count")
	}

	c, err := GenerateKeys(ctx, n, 43, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if slices.Equal(a, c) {
		t.Error("different seeds should produce different keys")
	}
}

func TestGenerateKeys_Empty(t *testing.T) {
	keys, err := GenerateKeys(context.Background(), 0, 1, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("expected no keys, got %d", len(keys))
	}
}

func TestGenerateKeys_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := GenerateKeys(ctx, 4*generateChunk, 1, 2)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestDigest(t *testing.T) {
	a := []uint32{1, 2, 3}
	if Digest(a) != Digest([]uint32{1, 2, 3}) {
		t.Error("equal slices should have equal digests")
	}
	if Digest(a) == Digest([]uint32{3, 2, 1}) {
		t.Error("digest should depend on order")
	}

	// Spans several internal buffers
	long := make([]uint32, 5000)
	for i := range long {
		long[i] = uint32(i)
	}
	other := slices.Clone(long)
	other[4999]++
	if Digest(long) == Digest(other) {
		t.Error("digest should cover the tail of long slices")
	}
}

func TestResults_RecordAndSnapshot(t *testing.T) {
	r := NewResults([]string{"radix", "std"})

	r.Record(Measurement{Algorithm: "std", Size: 100, Duration: 30 * time.Microsecond, Checked: true, Sorted: true, Verified: true})
	r.Record(Measurement{Algorithm: "radix", Size: 100, Duration: 20 * time.Microsecond, Checked: true, Sorted: true, Verified: true})
	r.Record(Measurement{Algorithm: "radix", Size: 100, Duration: 10 * time.Microsecond, Checked: true, Sorted: true, Verified: true})
	r.Record(Measurement{Algorithm: "radix", Size: 10, Duration: 1 * time.Microsecond, Checked: true, Sorted: true, Verified: false})

	if r.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", r.Len())
	}

	e, ok := r.Get("radix", 100)
	if !ok {
		t.Fatal("expected radix/100 entry")
	}
	if e.Rounds != 2 || e.Best != 10*time.Microsecond || e.Mean() != 15*time.Microsecond {
		t.Errorf("unexpected aggregate: %+v (mean %v)", e, e.Mean())
	}
	if !e.Verified {
		t.Error("radix/100 should be verified")
	}

	small, _ := r.Get("radix", 10)
	if small.Verified {
		t.Error("a failed round should mark the entry unverified")
	}

	if got := r.Speedup("radix", 100); got != 3 {
		t.Errorf("expected speedup 3, got %v", got)
	}
	if got := r.Speedup("radix", 10); got != 0 {
		t.Errorf("expected speedup 0 without baseline, got %v", got)
	}

	snap := r.Snapshot()
	order := make([]string, len(snap))
	for i, e := range snap {
		order[i] = resultKey(e.Algorithm, e.Size)
	}
	want := []string{"radix/10", "radix/100", "std/100"}
	if !slices.Equal(order, want) {
		t.Errorf("expected snapshot order %v, got %v", want, order)
	}
}

func TestResults_ConcurrentReaders(t *testing.T) {
	r := NewResults([]string{"radix"})
	var wg sync.WaitGroup
	done := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
				_ = r.Snapshot()
			}
		}
	}()

	for i := 1; i <= 200; i++ {
		r.Record(Measurement{Algorithm: "radix", Size: i, Duration: time.Duration(i)})
	}
	close(done)
	wg.Wait()

	if r.Len() != 200 {
		t.Errorf("expected 200 entries, got %d", r.Len())
	}
}

func TestNewRunner_Validation(t *testing.T) {
	algos, _ := LookupAlgorithms([]string{"radix"})
	tests := []struct {
		name string
		opts Options
	}{
		{"no sizes", Options{Rounds: 1, Algorithms: algos}},
		{"zero size", Options{Sizes: []int{0}, Rounds: 1, Algorithms: algos}},
		{"too large", Options{Sizes: []int{MaxSize + 1}, Rounds: 1, Algorithms: algos}},
		{"no rounds", Options{Sizes: []int{10}, Algorithms: algos}},
		{"no algorithms", Options{Sizes: []int{10}, Rounds: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewRunner(tt.opts); !errors.Is(err, ErrInvalidOptions) {
				t.Errorf("expected ErrInvalidOptions, got %v", err)
			}
		})
	}
}

func TestRunner_Run(t *testing.T) {
	algos, err := LookupAlgorithms([]string{"radix", "radix-inplace", "std"})
	if err != nil {
		t.Fatal(err)
	}

	var progress []Measurement
	runner, err := NewRunner(Options{
		Sizes:      []int{1, 1000, 20000},
		Rounds:     2,
		Seed:       7,
		Workers:    2,
		Algorithms: algos,
		Verify:     true,
		Progress:   func(m Measurement) { progress = append(progress, m) },
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(progress) != runner.TotalMeasurements() {
		t.Errorf("expected %d progress callbacks, got %d", runner.TotalMeasurements(), len(progress))
	}
	for _, m := range progress {
		if !m.Checked || !m.Sorted || !m.Verified {
			t.Errorf("%s/%d round %d failed verification: %+v", m.Algorithm, m.Size, m.Round, m)
		}
	}

	snap := runner.Results().Snapshot()
	if len(snap) != 9 {
		t.Fatalf("expected 9 entries, got %d", len(snap))
	}
	for _, e := range snap {
		if e.Rounds != 2 {
			t.Errorf("%s/%d: expected 2 rounds, got %d", e.Algorithm, e.Size, e.Rounds)
		}
	}
}

func TestRunner_DetectsBrokenSorter(t *testing.T) {
	broken := Algorithm{
		Name: "broken",
		Sort: func(keys []uint32) []uint32 { return keys },
	}
	runner, err := NewRunner(Options{
		Sizes:      []int{5000},
		Rounds:     1,
		Seed:       1,
		Algorithms: []Algorithm{broken},
		Verify:     true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	e, ok := runner.Results().Get("broken", 5000)
	if !ok {
		t.Fatal("expected an entry for the broken sorter")
	}
	if e.Verified {
		t.Error("unsorted output should not verify")
	}
}

func TestRunner_Cancelled(t *testing.T) {
	algos, _ := LookupAlgorithms([]string{"radix"})
	runner, err := NewRunner(Options{Sizes: []int{100}, Rounds: 1, Algorithms: algos})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := runner.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
