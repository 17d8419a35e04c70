package output

import (
	"encoding/json"
	"runtime"
	"sync"
	"time"

	"github.com/ChristianF88/radix256/bench"
	"github.com/ChristianF88/radix256/version"
)

// JSONOutput represents the complete benchmark output structure
type JSONOutput struct {
	Metadata Metadata       `json:"metadata"`
	Config   RunParameters  `json:"config"`
	Results  []ResultRecord `json:"results"`
	Warnings []Warning      `json:"warnings"`
	Errors   []Error        `json:"errors"`

	// Mutex for thread-safe warning/error appending
	mu sync.Mutex `json:"-"`
}

// Metadata contains information about the benchmark run
type Metadata struct {
	GeneratedAt  time.Time `json:"generated_at"`
	AnalysisType string    `json:"analysis_type"`
	Version      string    `json:"version"`
	DurationMS   int64     `json:"duration_ms"`
	GoVersion    string    `json:"go_version"`
	GOMAXPROCS   int       `json:"gomaxprocs"`
}

// RunParameters echoes the configuration the results were produced with
type RunParameters struct {
	Sizes      []int    `json:"sizes"`
	Rounds     int      `json:"rounds"`
	Seed       uint64   `json:"seed"`
	Workers    int      `json:"workers"`
	Algorithms []string `json:"algorithms"`
	Verify     bool     `json:"verify"`
}

// ResultRecord is the aggregate of one algorithm at one input size
type ResultRecord struct {
	Algorithm     string  `json:"algorithm"`
	Size          int     `json:"size"`
	Rounds        int     `json:"rounds"`
	BestUS        int64   `json:"best_us"`
	MeanUS        int64   `json:"mean_us"`
	KeysPerSecond float64 `json:"keys_per_second"`
	// SpeedupVsBaseline is best(baseline)/best(algorithm); 0 when the
	// baseline did not run.
	SpeedupVsBaseline float64 `json:"speedup_vs_baseline,omitempty"`
	Verified          *bool   `json:"verified,omitempty"`
}

// Warning represents a warning message
type Warning struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Count   int    `json:"count,omitempty"`
}

// Error represents an error message
type Error struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Count   int    `json:"count,omitempty"`
}

// NewJSONOutput creates a new JSONOutput with default metadata
func NewJSONOutput(analysisType string, startTime time.Time) *JSONOutput {
	return &JSONOutput{
		Metadata: Metadata{
			GeneratedAt:  time.Now().UTC(),
			AnalysisType: analysisType,
			Version:      version.Version,
			DurationMS:   time.Since(startTime).Milliseconds(),
			GoVersion:    runtime.Version(),
			GOMAXPROCS:   runtime.GOMAXPROCS(0),
		},
		Results:  []ResultRecord{},
		Warnings: []Warning{},
		Errors:   []Error{},
	}
}

// SetParameters records the runner options in the report.
func (j *JSONOutput) SetParameters(opts bench.Options) {
	names := make([]string, len(opts.Algorithms))
	for i, a := range opts.Algorithms {
		names[i] = a.Name
	}
	j.Config = RunParameters{
		Sizes:      opts.Sizes,
		Rounds:     opts.Rounds,
		Seed:       opts.Seed,
		Workers:    opts.Workers,
		Algorithms: names,
		Verify:     opts.Verify,
	}
}

// AddResults converts every registry entry into a result record and adds an
// error for each entry that failed verification.
func (j *JSONOutput) AddResults(results *bench.Results) {
	for _, e := range results.Snapshot() {
		rec := ResultRecord{
			Algorithm:         e.Algorithm,
			Size:              e.Size,
			Rounds:            e.Rounds,
			BestUS:            e.Best.Microseconds(),
			MeanUS:            e.Mean().Microseconds(),
			KeysPerSecond:     e.KeysPerSecond(),
			SpeedupVsBaseline: results.Speedup(e.Algorithm, e.Size),
		}
		if e.Checked {
			verified := e.Verified
			rec.Verified = &verified
			if !verified {
				j.AddError("verification", "output of "+e.Algorithm+" does not match the baseline", e.Size)
			}
		}
		j.Results = append(j.Results, rec)
	}
}

// ToJSON converts the output to pretty-printed JSON
func (j *JSONOutput) ToJSON() ([]byte, error) {
	return json.MarshalIndent(j, "", "  ")
}

// ToCompactJSON converts the output to compact JSON
func (j *JSONOutput) ToCompactJSON() ([]byte, error) {
	return json.Marshal(j)
}

// AddWarning adds a warning to the output (thread-safe)
func (j *JSONOutput) AddWarning(warningType, message string, count int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Warnings = append(j.Warnings, Warning{
		Type:    warningType,
		Message: message,
		Count:   count,
	})
}

// AddError adds an error to the output (thread-safe)
func (j *JSONOutput) AddError(errorType, message string, count int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Errors = append(j.Errors, Error{
		Type:    errorType,
		Message: message,
		Count:   count,
	})
}

// UpdateDuration updates the duration in metadata
func (j *JSONOutput) UpdateDuration(startTime time.Time) {
	j.Metadata.DurationMS = time.Since(startTime).Milliseconds()
}
