//go:build !linux

package keyfile

// adviseSequential is a no-op on non-Linux platforms.
func adviseSequential(data []byte) {}
