//go:build linux

package keyfile

import "golang.org/x/sys/unix"

// adviseSequential hints that every pass streams the mapping front to back.
// Best-effort: errors are ignored.
func adviseSequential(data []byte) {
	if len(data) == 0 {
		return
	}
	_ = unix.Madvise(data, unix.MADV_SEQUENTIAL)
}
