package bench

import (
	"context"
	"encoding/binary"
	"math/rand/v2"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"
)

// generateChunk is the number of keys filled by one generator goroutine.
const generateChunk = 1 << 16

// GenerateKeys returns n uniformly random keys. Chunk i is drawn from a PCG
// stream seeded with (seed, i), so the result depends only on n and seed,
// never on workers.
func GenerateKeys(ctx context.Context, n int, seed uint64, workers int) ([]uint32, error) {
	keys := make([]uint32, n)
	if n == 0 {
		return keys, nil
	}
	if workers < 1 {
		workers = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for start := 0; start < n; start += generateChunk {
		end := min(start+generateChunk, n)
		stream := uint64(start / generateChunk)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewPCG(seed, stream))
			for i := start; i < end; i++ {
				keys[i] = rng.Uint32()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return keys, nil
}

// Digest returns the xxhash64 of keys encoded as little-endian bytes.
// Two slices have equal digests iff (barring collisions) they hold the same
// values in the same order.
func Digest(keys []uint32) uint64 {
	d := xxhash.New()
	var buf [4096]byte
	for len(keys) > 0 {
		n := min(len(keys), len(buf)/4)
		for i, v := range keys[:n] {
			binary.LittleEndian.PutUint32(buf[i*4:], v)
		}
		_, _ = d.Write(buf[:n*4]) // xxhash.Digest.Write never fails
		keys = keys[n:]
	}
	return d.Sum64()
}
