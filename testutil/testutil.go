package testutil

import (
	"encoding/binary"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
)

// RandomKeys returns n pseudo-random keys. The same seed always yields the
// same keys.
func RandomKeys(n int, seed int64) []uint32 {
	rng := rand.New(rand.NewSource(seed))
	keys := make([]uint32, n)
	for i := range keys {
		keys[i] = rng.Uint32()
	}
	return keys
}

// WriteTestKeyFile stores keys as a raw little-endian key file in a
// per-test temporary directory and returns its path.
func WriteTestKeyFile(t *testing.T, keys []uint32) string {
	t.Helper()

	buf := make([]byte, 0, 4*len(keys))
	for _, k := range keys {
		buf = binary.LittleEndian.AppendUint32(buf, k)
	}

	path := filepath.Join(t.TempDir(), "keys.bin")
	if err := os.WriteFile(path, buf, 0644); err != nil {
		t.Fatalf("Failed to write key file: %v", err)
	}
	return path
}

// TempFilePath returns a cross-platform temporary file path
// with the given pattern. Does not create the file.
func TempFilePath(t *testing.T, pattern string) string {
	t.Helper()

	tmpFile, err := os.CreateTemp(t.TempDir(), pattern)
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}

	path := tmpFile.Name()
	tmpFile.Close()
	os.Remove(path) // Remove immediately, just need the path

	return path
}
