// Package bench times radixsort against comparison sorts over random keys.
//
// The harness treats every sorter as a black box: it hands over a fresh
// copy of the same generated input, measures wall-clock time and compares
// the output digest with the baseline's.
package bench

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/ChristianF88/radix256/radixsort"
)

// Baseline is the algorithm every other output is verified against.
const Baseline = "std"

var ErrUnknownAlgorithm = errors.New("bench: unknown algorithm")

// SortFunc sorts keys and returns the sorted slice. Implementations may
// reuse the argument's storage.
type SortFunc func(keys []uint32) []uint32

// Algorithm is a named sorter taking part in a benchmark.
type Algorithm struct {
	Name        string
	Description string
	Sort        SortFunc
}

var registry = []Algorithm{
	{
		Name:        "radix",
		Description: "radixsort.Sort (consumes input, returns sorted slice)",
		Sort:        radixsort.Sort,
	},
	{
		Name:        "radix-inplace",
		Description: "radixsort.SortInPlace",
		Sort: func(keys []uint32) []uint32 {
			radixsort.SortInPlace(keys)
			return keys
		},
	},
	{
		Name:        Baseline,
		Description: "slices.Sort (pdqsort, unstable)",
		Sort: func(keys []uint32) []uint32 {
			slices.Sort(keys)
			return keys
		},
	},
	{
		Name:        "std-stable",
		Description: "slices.SortStableFunc (insertion + symmerge, stable)",
		Sort: func(keys []uint32) []uint32 {
			slices.SortStableFunc(keys, func(a, b uint32) int {
				switch {
				case a < b:
					return -1
				case a > b:
					return 1
				}
				return 0
			})
			return keys
		},
	},
	{
		Name:        "sort-slice",
		Description: "sort.Slice (reflection swapper, less closure)",
		Sort: func(keys []uint32) []uint32 {
			sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
			return keys
		},
	},
}

// Algorithms returns all registered algorithms in display order.
func Algorithms() []Algorithm {
	return slices.Clone(registry)
}

// AlgorithmNames returns the registered names in display order.
func AlgorithmNames() []string {
	names := make([]string, len(registry))
	for i, a := range registry {
		names[i] = a.Name
	}
	return names
}

// LookupAlgorithms resolves names in the given order. An empty list selects
// every registered algorithm. Duplicates are dropped.
func LookupAlgorithms(names []string) ([]Algorithm, error) {
	if len(names) == 0 {
		return Algorithms(), nil
	}

	seen := make(map[string]bool, len(names))
	algos := make([]Algorithm, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if seen[name] {
			continue
		}
		idx := slices.IndexFunc(registry, func(a Algorithm) bool { return a.Name == name })
		if idx < 0 {
			return nil, fmt.Errorf("%w %q (known: %s)", ErrUnknownAlgorithm, name, strings.Join(AlgorithmNames(), ", "))
		}
		seen[name] = true
		algos = append(algos, registry[idx])
	}
	return algos, nil
}
