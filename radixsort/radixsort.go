// Package radixsort implements a base-256 LSD radix sort for uint32 keys.
//
// Both entry points run the same four counting-sort passes (one per byte,
// least significant first) and ping-pong between the input and a single
// scratch buffer of equal length. Sort takes ownership of its argument and
// returns the sorted slice; SortInPlace sorts the caller's slice directly.
package radixsort

const (
	digitBits = 8
	buckets   = 1 << digitBits
	digitMask = buckets - 1
	passes    = 32 / digitBits
)

// Sort sorts keys in ascending order and returns the sorted slice.
// The caller gives up ownership of keys: the returned slice shares its
// backing array, and its previous contents are overwritten.
//
// Slices of length 0 or 1 are returned as is without allocating.
// Otherwise one scratch buffer of len(keys) is allocated for the call.
func Sort(keys []uint32) []uint32 {
	if len(keys) <= 1 {
		return keys
	}

	from, to := keys, make([]uint32, len(keys))
	for pass := 0; pass < passes; pass++ {
		radixPass(from, to, uint(pass*digitBits))
		from, to = to, from
	}

	// Even pass count: the last write landed back in keys.
	return from
}

// SortInPlace sorts keys in ascending order, in place.
// It allocates a scratch buffer of len(keys) for slices longer than one.
func SortInPlace(keys []uint32) {
	if len(keys) <= 1 {
		return
	}

	scratch := make([]uint32, len(keys))

	// Even passes read keys and write scratch, odd passes go the other way,
	// so pass 3 writes the final order into keys.
	for pass := 0; pass < passes; pass++ {
		src, dst := keys, scratch
		if pass%2 == 1 {
			src, dst = scratch, keys
		}
		radixPass(src, dst, uint(pass*digitBits))
	}
}

// IsSorted reports whether keys is in non-decreasing order.
func IsSorted(keys []uint32) bool {
	for i := 1; i < len(keys); i++ {
		if keys[i] < keys[i-1] {
			return false
		}
	}
	return true
}

// radixPass performs one stable counting sort pass on the byte at shift.
// src and dst must have equal length and must not overlap.
func radixPass(src, dst []uint32, shift uint) {
	// Count occurrences of each byte value
	var counts [buckets]int
	for _, v := range src {
		counts[(v>>shift)&digitMask]++
	}

	// Exclusive prefix sums: counts[b] becomes the first slot of bucket b
	total := 0
	for i := range counts {
		count := counts[i]
		counts[i] = total
		total += count
	}

	// Scatter in source order, which keeps equal digits stable
	for _, v := range src {
		b := (v >> shift) & digitMask
		dst[counts[b]] = v
		counts[b]++
	}
}
