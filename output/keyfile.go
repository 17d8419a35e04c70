package output

import (
	"encoding/json"
	"fmt"
	"time"
)

// KeyFileOutput reports one in-place file sort
type KeyFileOutput struct {
	Metadata      Metadata `json:"metadata"`
	File          string   `json:"file"`
	Keys          int      `json:"keys"`
	SortUS        int64    `json:"sort_us"`
	KeysPerSecond float64  `json:"keys_per_second"`
	Digest        string   `json:"digest"`
	Sorted        *bool    `json:"sorted,omitempty"`
}

// NewKeyFileOutput fills the report for a sort of n keys that took elapsed.
func NewKeyFileOutput(file string, n int, elapsed time.Duration, digest uint64, startTime time.Time) *KeyFileOutput {
	out := &KeyFileOutput{
		Metadata: NewJSONOutput("sort", startTime).Metadata,
		File:     file,
		Keys:     n,
		SortUS:   elapsed.Microseconds(),
		Digest:   fmt.Sprintf("%016x", digest),
	}
	if elapsed > 0 {
		out.KeysPerSecond = float64(n) / elapsed.Seconds()
	}
	return out
}

// ToJSON converts the output to pretty-printed JSON
func (k *KeyFileOutput) ToJSON() ([]byte, error) {
	return json.MarshalIndent(k, "", "  ")
}

// ToCompactJSON converts the output to compact JSON
func (k *KeyFileOutput) ToCompactJSON() ([]byte, error) {
	return json.Marshal(k)
}
