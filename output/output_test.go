package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ChristianF88/radix256/bench"
)

func sampleResults() *bench.Results {
	r := bench.NewResults([]string{"radix", "std"})
	r.Record(bench.Measurement{Algorithm: "radix", Size: 1000, Duration: 20 * time.Microsecond, Checked: true, Sorted: true, Verified: true})
	r.Record(bench.Measurement{Algorithm: "std", Size: 1000, Duration: 60 * time.Microsecond, Checked: true, Sorted: true, Verified: true})
	r.Record(bench.Measurement{Algorithm: "radix", Size: 1000000, Duration: 8 * time.Millisecond, Checked: true, Sorted: true, Verified: true})
	r.Record(bench.Measurement{Algorithm: "std", Size: 1000000, Duration: 64 * time.Millisecond, Checked: true, Sorted: true, Verified: true})
	return r
}

func TestJSONOutput_ToJSON_RoundTrip(t *testing.T) {
	out := NewJSONOutput("bench", time.Now())
	algos, _ := bench.LookupAlgorithms([]string{"radix", "std"})
	out.SetParameters(bench.Options{
		Sizes:      []int{1000, 1000000},
		Rounds:     1,
		Seed:       42,
		Workers:    4,
		Algorithms: algos,
		Verify:     true,
	})
	out.AddResults(sampleResults())

	pretty, err := out.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON error: %v", err)
	}
	if !strings.Contains(string(pretty), "\n  ") {
		t.Error("ToJSON should be indented")
	}

	var restored JSONOutput
	if err := json.Unmarshal(pretty, &restored); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if restored.Metadata.AnalysisType != "bench" {
		t.Errorf("AnalysisType = %q, want bench", restored.Metadata.AnalysisType)
	}
	if len(restored.Config.Algorithms) != 2 || restored.Config.Algorithms[1] != "std" {
		t.Errorf("Config.Algorithms = %v", restored.Config.Algorithms)
	}
	if len(restored.Results) != 4 {
		t.Fatalf("len(Results) = %d, want 4", len(restored.Results))
	}

	first := restored.Results[0]
	if first.Algorithm != "radix" || first.Size != 1000 || first.BestUS != 20 {
		t.Errorf("unexpected first record %+v", first)
	}
	if first.SpeedupVsBaseline != 3 {
		t.Errorf("SpeedupVsBaseline = %v, want 3", first.SpeedupVsBaseline)
	}
	if first.Verified == nil || !*first.Verified {
		t.Error("expected first record to be verified")
	}
	if kps := first.KeysPerSecond; kps < 49_999_999 || kps > 50_000_001 {
		t.Errorf("KeysPerSecond = %v, want 5e7", kps)
	}

	compact, err := out.ToCompactJSON()
	if err != nil {
		t.Fatalf("ToCompactJSON error: %v", err)
	}
	if strings.Contains(string(compact), "\n") {
		t.Error("compact JSON should not contain newlines")
	}
}

func TestJSONOutput_AddResults_Unverified(t *testing.T) {
	r := bench.NewResults([]string{"radix"})
	r.Record(bench.Measurement{Algorithm: "radix", Size: 10, Duration: time.Microsecond, Checked: true, Sorted: false})
	r.Record(bench.Measurement{Algorithm: "radix", Size: 20, Duration: time.Microsecond})

	out := NewJSONOutput("bench", time.Now())
	out.AddResults(r)

	if len(out.Errors) != 1 || out.Errors[0].Count != 10 {
		t.Errorf("expected one verification error for size 10, got %+v", out.Errors)
	}
	if out.Results[1].Verified != nil {
		t.Error("unchecked results should omit the verified flag")
	}
}

func TestJSONOutput_AddWarning_Concurrent(t *testing.T) {
	out := NewJSONOutput("bench", time.Now())

	const goroutines = 10
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(id int) {
			defer wg.Done()
			out.AddWarning("concurrent", fmt.Sprintf("warning from goroutine %d", id), id)
		}(i)
	}
	wg.Wait()

	if len(out.Warnings) != goroutines {
		t.Errorf("len(Warnings) = %d, want %d", len(out.Warnings), goroutines)
	}

	seen := make(map[int]bool)
	for _, w := range out.Warnings {
		seen[w.Count] = true
	}
	for i := 0; i < goroutines; i++ {
		if !seen[i] {
			t.Errorf("missing warning from goroutine %d", i)
		}
	}
}

func TestJSONOutput_AddError_Concurrent(t *testing.T) {
	out := NewJSONOutput("bench", time.Now())

	const goroutines = 10
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(id int) {
			defer wg.Done()
			out.AddError("concurrent", fmt.Sprintf("error from goroutine %d", id), id)
		}(i)
	}
	wg.Wait()

	if len(out.Errors) != goroutines {
		t.Errorf("len(Errors) = %d, want %d", len(out.Errors), goroutines)
	}
}

func TestTimingSeries(t *testing.T) {
	records := []ResultRecord{
		{Algorithm: "radix", Size: 1000000, BestUS: 8000},
		{Algorithm: "radix", Size: 1000, BestUS: 20},
		{Algorithm: "std", Size: 1000, BestUS: 60},
	}
	sizes, series := timingSeries(records)

	if len(sizes) != 2 || sizes[0] != 1000 || sizes[1] != 1000000 {
		t.Fatalf("sizes = %v, want [1000 1000000]", sizes)
	}
	if len(series) != 2 || series[0].name != "radix" || series[1].name != "std" {
		t.Fatalf("unexpected series %+v", series)
	}
	if series[0].points[1].Value != 8.0 {
		t.Errorf("radix at 1M = %v ms, want 8", series[0].points[1].Value)
	}
	if series[1].points[1].Value != nil {
		t.Errorf("std has no 1M point, got %v", series[1].points[1].Value)
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		input int
		want  string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1K"},
		{1500, "1500"},
		{100000, "100K"},
		{1000000, "1M"},
		{100000000, "100M"},
	}
	for _, tt := range tests {
		if got := FormatSize(tt.input); got != tt.want {
			t.Errorf("FormatSize(%d) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestPlotTimings(t *testing.T) {
	out := NewJSONOutput("bench", time.Now())
	out.AddResults(sampleResults())

	path := filepath.Join(t.TempDir(), "bench.html")
	if err := PlotTimings(out, path); err != nil {
		t.Fatalf("PlotTimings error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading chart: %v", err)
	}
	html := string(data)
	for _, want := range []string{"radix256 benchmark", "radix", "1M"} {
		if !strings.Contains(html, want) {
			t.Errorf("chart HTML missing %q", want)
		}
	}
}

func TestPlotTimings_Empty(t *testing.T) {
	out := NewJSONOutput("bench", time.Now())
	if err := PlotTimings(out, filepath.Join(t.TempDir(), "x.html")); err == nil {
		t.Error("expected an error for an empty report")
	}
}
