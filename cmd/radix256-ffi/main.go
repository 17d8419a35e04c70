// Command radix256-ffi builds the radix sort as a C shared library:
//
//	go build -buildmode=c-shared -o libradix256.so ./cmd/radix256-ffi
//
// Callers in C, Rust or Python (ctypes/cffi) pass their list as a contiguous
// uint32_t buffer which is sorted in place.
package main

/*
#include <stddef.h>
#include <stdint.h>
*/
import "C"

import (
	"unsafe"

	"github.com/ChristianF88/radix256/radixsort"
)

//export radix256_sort
func radix256_sort(data *C.uint32_t, n C.size_t) {
	sortOwned(foreignSlice(data, n))
}

//export radix256_sort_inplace
func radix256_sort_inplace(data *C.uint32_t, n C.size_t) {
	radixsort.SortInPlace(foreignSlice(data, n))
}

// foreignSlice views a caller-owned buffer as a Go slice without copying.
func foreignSlice(data *C.uint32_t, n C.size_t) []uint32 {
	if data == nil || n == 0 {
		return nil
	}
	return unsafe.Slice((*uint32)(unsafe.Pointer(data)), int(n))
}

// sortOwned runs the consuming sort over buf and makes sure the result ends
// up in buf's storage.
func sortOwned(buf []uint32) {
	sorted := radixsort.Sort(buf)
	if len(sorted) > 0 && &sorted[0] != &buf[0] {
		copy(buf, sorted)
	}
}

func main() {}
