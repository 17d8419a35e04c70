package bench

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/alphadose/haxmap"
)

// Measurement is one timed sort of one input.
type Measurement struct {
	Algorithm string
	Size      int
	Round     int
	Duration  time.Duration
	// Checked is false when verification was disabled.
	Checked  bool
	Sorted   bool
	Verified bool // output digest equals the baseline digest
}

// Entry aggregates all rounds of one algorithm at one size.
type Entry struct {
	Algorithm string
	Size      int
	Rounds    int
	Best      time.Duration
	Total     time.Duration
	Checked   bool
	Verified  bool // every checked round matched the baseline
}

// Mean returns the average duration over all recorded rounds.
func (e Entry) Mean() time.Duration {
	if e.Rounds == 0 {
		return 0
	}
	return e.Total / time.Duration(e.Rounds)
}

// KeysPerSecond returns throughput based on the best round.
func (e Entry) KeysPerSecond() float64 {
	if e.Best <= 0 {
		return 0
	}
	return float64(e.Size) / e.Best.Seconds()
}

// Results collects measurements by algorithm and size. Reads are lock-free
// and may run concurrently with Record; writers are serialized.
type Results struct {
	mu      sync.Mutex
	entries *haxmap.Map[string, Entry]
	order   []string // algorithm display order, fixed at construction
}

// NewResults creates an empty registry. algorithms fixes the order used by
// Snapshot.
func NewResults(algorithms []string) *Results {
	return &Results{
		entries: haxmap.New[string, Entry](64),
		order:   slices.Clone(algorithms),
	}
}

func resultKey(algorithm string, size int) string {
	return fmt.Sprintf("%s/%d", algorithm, size)
}

// Record folds m into the entry for its algorithm and size.
func (r *Results) Record(m Measurement) Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := resultKey(m.Algorithm, m.Size)
	e, ok := r.entries.Get(key)
	if !ok {
		e = Entry{
			Algorithm: m.Algorithm,
			Size:      m.Size,
			Best:      m.Duration,
			Checked:   m.Checked,
			Verified:  true,
		}
	}
	e.Rounds++
	e.Total += m.Duration
	if m.Duration < e.Best {
		e.Best = m.Duration
	}
	if m.Checked {
		e.Checked = true
		e.Verified = e.Verified && m.Sorted && m.Verified
	}
	r.entries.Set(key, e)
	return e
}

// Get returns the entry for algorithm at size.
func (r *Results) Get(algorithm string, size int) (Entry, bool) {
	return r.entries.Get(resultKey(algorithm, size))
}

// Len returns the number of algorithm/size entries.
func (r *Results) Len() int {
	return int(r.entries.Len())
}

// Snapshot returns all entries ordered by size, then algorithm display order.
func (r *Results) Snapshot() []Entry {
	entries := make([]Entry, 0, r.Len())
	r.entries.ForEach(func(_ string, e Entry) bool {
		entries = append(entries, e)
		return true
	})

	rank := func(name string) int {
		if i := slices.Index(r.order, name); i >= 0 {
			return i
		}
		return len(r.order)
	}
	slices.SortFunc(entries, func(a, b Entry) int {
		if a.Size != b.Size {
			return a.Size - b.Size
		}
		if ra, rb := rank(a.Algorithm), rank(b.Algorithm); ra != rb {
			return ra - rb
		}
		if a.Algorithm < b.Algorithm {
			return -1
		}
		if a.Algorithm > b.Algorithm {
			return 1
		}
		return 0
	})
	return entries
}

// Speedup returns how many times faster algorithm ran than the baseline at
// size, using best rounds. It is 0 when either entry is missing.
func (r *Results) Speedup(algorithm string, size int) float64 {
	e, ok := r.Get(algorithm, size)
	if !ok || e.Best <= 0 {
		return 0
	}
	base, ok := r.Get(Baseline, size)
	if !ok {
		return 0
	}
	return float64(base.Best) / float64(e.Best)
}
