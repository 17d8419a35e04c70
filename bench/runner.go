package bench

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"time"

	"github.com/ChristianF88/radix256/radixsort"
)

// MaxSize bounds a single benchmark input (100M keys, 400 MB per copy).
const MaxSize = 100_000_000

var ErrInvalidOptions = errors.New("bench: invalid options")

// Options configures a Runner.
type Options struct {
	Sizes      []int
	Rounds     int
	Seed       uint64
	Workers    int
	Algorithms []Algorithm
	Verify     bool

	// Progress, when set, is called from the runner goroutine after each
	// measurement.
	Progress func(Measurement)
}

// Runner executes the benchmark matrix sizes x rounds x algorithms.
type Runner struct {
	opts    Options
	results *Results
}

// NewRunner validates opts and creates a Runner.
func NewRunner(opts Options) (*Runner, error) {
	if len(opts.Sizes) == 0 {
		return nil, fmt.Errorf("%w: no sizes", ErrInvalidOptions)
	}
	for _, size := range opts.Sizes {
		if size <= 0 || size > MaxSize {
			return nil, fmt.Errorf("%w: size %d outside 1..%d", ErrInvalidOptions, size, MaxSize)
		}
	}
	if opts.Rounds < 1 {
		return nil, fmt.Errorf("%w: rounds must be at least 1, got %d", ErrInvalidOptions, opts.Rounds)
	}
	if len(opts.Algorithms) == 0 {
		return nil, fmt.Errorf("%w: no algorithms", ErrInvalidOptions)
	}
	if opts.Workers < 1 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}

	names := make([]string, len(opts.Algorithms))
	for i, a := range opts.Algorithms {
		names[i] = a.Name
	}
	return &Runner{
		opts:    opts,
		results: NewResults(names),
	}, nil
}

// Results returns the live registry the runner records into.
func (r *Runner) Results() *Results {
	return r.results
}

// TotalMeasurements returns how many measurements a full Run produces.
func (r *Runner) TotalMeasurements() int {
	return len(r.opts.Sizes) * r.opts.Rounds * len(r.opts.Algorithms)
}

// Run executes every measurement in order. Sizes, rounds and algorithms run
// strictly one after another so timings do not interfere. Cancelling ctx
// stops the run before the next measurement.
func (r *Runner) Run(ctx context.Context) error {
	for _, size := range r.opts.Sizes {
		keys, err := GenerateKeys(ctx, size, r.opts.Seed, r.opts.Workers)
		if err != nil {
			return fmt.Errorf("generating %d keys: %w", size, err)
		}

		var baseline uint64
		if r.opts.Verify {
			expected := slices.Clone(keys)
			slices.Sort(expected)
			baseline = Digest(expected)
		}

		for round := 0; round < r.opts.Rounds; round++ {
			for _, algo := range r.opts.Algorithms {
				if err := ctx.Err(); err != nil {
					return err
				}
				m := r.measure(algo, keys, round, baseline)
				r.results.Record(m)
				if r.opts.Progress != nil {
					r.opts.Progress(m)
				}
			}
		}
	}
	return nil
}

func (r *Runner) measure(algo Algorithm, keys []uint32, round int, baseline uint64) Measurement {
	data := slices.Clone(keys)

	// Keep collection of the previous copy out of the timed region
	runtime.GC()

	start := time.Now()
	out := algo.Sort(data)
	elapsed := time.Since(start)

	m := Measurement{
		Algorithm: algo.Name,
		Size:      len(keys),
		Round:     round,
		Duration:  elapsed,
	}
	if r.opts.Verify {
		m.Checked = true
		m.Sorted = radixsort.IsSorted(out)
		m.Verified = len(out) == len(keys) && Digest(out) == baseline
	}
	return m
}
