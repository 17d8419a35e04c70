// Package keyfile stores key sequences as raw little-endian uint32 arrays
// and sorts such files in place through a memory mapping.
package keyfile

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"unsafe"

	"github.com/ChristianF88/radix256/radixsort"
	"github.com/edsrzf/mmap-go"
)

const keySize = 4

var ErrMisalignedFile = errors.New("keyfile: file size is not a multiple of 4 bytes")

// nativeLittleEndian reports whether a mapped file can be viewed as
// []uint32 directly.
var nativeLittleEndian = binary.NativeEndian.Uint16([]byte{1, 0}) == 1

// Write creates or truncates path and stores keys in it.
func Write(path string, keys []uint32) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create key file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close key file: %w", cerr)
		}
	}()

	w := bufio.NewWriterSize(f, 1<<16)
	var buf [keySize]byte
	for _, k := range keys {
		binary.LittleEndian.PutUint32(buf[:], k)
		if _, err := w.Write(buf[:]); err != nil {
			return fmt.Errorf("write key file: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write key file: %w", err)
	}
	return nil
}

// Read loads every key stored in path.
func Read(path string) ([]uint32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open key file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat key file: %w", err)
	}
	if info.Size()%keySize != 0 {
		return nil, fmt.Errorf("%w: %s has %d bytes", ErrMisalignedFile, path, info.Size())
	}

	keys := make([]uint32, info.Size()/keySize)
	r := bufio.NewReaderSize(f, 1<<16)
	var buf [keySize]byte
	for i := range keys {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, fmt.Errorf("read key file: %w", err)
		}
		keys[i] = binary.LittleEndian.Uint32(buf[:])
	}
	return keys, nil
}

// SortFile sorts the keys stored in path in place and returns how many keys
// it holds. The file is mapped read-write; on little-endian hosts the
// mapping itself is sorted, elsewhere the keys are decoded, sorted and
// written back through the mapping.
func SortFile(path string) (n int, err error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return 0, fmt.Errorf("open key file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat key file: %w", err)
	}
	size := info.Size()
	if size%keySize != 0 {
		return 0, fmt.Errorf("%w: %s has %d bytes", ErrMisalignedFile, path, size)
	}
	if size == 0 {
		// Zero-length mappings are rejected by mmap(2)
		return 0, nil
	}

	m, err := mmap.Map(f, mmap.RDWR, 0)
	if err != nil {
		return 0, fmt.Errorf("mmap key file: %w", err)
	}
	defer func() {
		if uerr := m.Unmap(); uerr != nil {
			err = errors.Join(err, fmt.Errorf("unmap key file: %w", uerr))
		}
	}()

	adviseSequential(m)

	n = int(size / keySize)
	if nativeLittleEndian {
		keys := unsafe.Slice((*uint32)(unsafe.Pointer(&m[0])), n)
		radixsort.SortInPlace(keys)
	} else {
		keys := make([]uint32, n)
		for i := range keys {
			keys[i] = binary.LittleEndian.Uint32(m[i*keySize:])
		}
		keys = radixsort.Sort(keys)
		for i, k := range keys {
			binary.LittleEndian.PutUint32(m[i*keySize:], k)
		}
	}

	if err := m.Flush(); err != nil {
		return n, fmt.Errorf("flush key file: %w", err)
	}
	return n, nil
}
