package pools

import (
	"bytes"
	"sync"
)

const (
	// Buffers that grew past this are dropped instead of pooled
	maxPooledBuffer = 1 << 20
	maxPooledKeys   = 1 << 18
)

// GlobalPools provides centralized memory pooling for the sort service
type GlobalPools struct {
	Buffers   sync.Pool
	KeySlices sync.Pool
}

// Pools is the global instance of memory pools
var Pools = &GlobalPools{
	Buffers: sync.Pool{
		New: func() interface{} {
			buf := &bytes.Buffer{}
			buf.Grow(4096) // one response line for a few hundred keys
			return buf
		},
	},
	KeySlices: sync.Pool{
		New: func() interface{} {
			slice := make([]uint32, 0, 1024)
			return &slice
		},
	},
}

// GetBuffer gets a buffer from the pool and resets it
func (gp *GlobalPools) GetBuffer() *bytes.Buffer {
	buf := gp.Buffers.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

// ReturnBuffer returns a buffer to the pool
func (gp *GlobalPools) ReturnBuffer(buf *bytes.Buffer) {
	if buf.Cap() <= maxPooledBuffer { // Prevent memory bloat
		gp.Buffers.Put(buf)
	}
}

// GetKeySlice gets a key slice of length n, reusing pooled capacity when it
// suffices.
func (gp *GlobalPools) GetKeySlice(n int) []uint32 {
	slicePtr := gp.KeySlices.Get().(*[]uint32)
	if cap(*slicePtr) < n {
		gp.KeySlices.Put(slicePtr)
		return make([]uint32, n)
	}
	return (*slicePtr)[:n]
}

// ReturnKeySlice returns a key slice to the pool
func (gp *GlobalPools) ReturnKeySlice(slice []uint32) {
	if cap(slice) <= maxPooledKeys {
		emptySlice := slice[:0]
		gp.KeySlices.Put(&emptySlice)
	}
}

// Reset clears all pools (useful for testing)
func (gp *GlobalPools) Reset() {
	gp.Buffers = sync.Pool{New: gp.Buffers.New}
	gp.KeySlices = sync.Pool{New: gp.KeySlices.New}
}
