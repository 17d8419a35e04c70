package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/ChristianF88/radix256/bench"
	"github.com/ChristianF88/radix256/config"
	"github.com/ChristianF88/radix256/ingestor"
	"github.com/ChristianF88/radix256/keyfile"
	"github.com/ChristianF88/radix256/output"
	"github.com/ChristianF88/radix256/radixsort"
	"github.com/ChristianF88/radix256/tui"
)

// ============================================================================
// CONFIGURATION STRUCTS
// ============================================================================

// OutputConfig contains output formatting options
type OutputConfig struct {
	Compact bool
	Plain   bool
	TUI     bool
}

// ============================================================================
// MAIN ENTRY POINTS
// ============================================================================

// Bench runs the benchmark described by cfg and prints the report. It
// returns an error when the run failed or any output did not verify.
func Bench(cfg *config.Config, outputConfig OutputConfig) error {
	opts, err := cfg.BenchOptions()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if outputConfig.TUI {
		return executeTUI(ctx, opts, cfg.Output.PlotPath)
	}
	return executeBench(ctx, opts, cfg.Output.PlotPath, outputConfig)
}

// Generate writes count random keys to path.
func Generate(path string, count int, seed uint64) error {
	keys, err := bench.GenerateKeys(context.Background(), count, seed, runtime.GOMAXPROCS(0))
	if err != nil {
		return err
	}
	if err := keyfile.Write(path, keys); err != nil {
		return err
	}
	fmt.Printf("Wrote %s keys to %s (digest %016x)\n", formatNumber(len(keys)), path, bench.Digest(keys))
	return nil
}

// SortKeyFile sorts the key file at path in place and prints timing and the
// digest of the result.
func SortKeyFile(path string, check bool, outputConfig OutputConfig) error {
	start := time.Now()

	n, err := keyfile.SortFile(path)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	keys, err := keyfile.Read(path)
	if err != nil {
		return err
	}
	result := output.NewKeyFileOutput(path, n, elapsed, bench.Digest(keys), start)
	if check {
		sorted := radixsort.IsSorted(keys)
		result.Sorted = &sorted
	}

	if outputConfig.Plain {
		outputKeyFilePlain(result)
	} else {
		var jsonBytes []byte
		if outputConfig.Compact {
			jsonBytes, err = result.ToCompactJSON()
		} else {
			jsonBytes, err = result.ToJSON()
		}
		if err != nil {
			return fmt.Errorf("failed to marshal JSON output: %w", err)
		}
		fmt.Println(string(jsonBytes))
	}

	if result.Sorted != nil && !*result.Sorted {
		return fmt.Errorf("%s is not sorted after sorting", path)
	}
	return nil
}

// Serve runs the sort service until SIGINT or SIGTERM.
func Serve(cfg *config.ServeConfig) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return executeServe(ctx, cfg)
}

// ============================================================================
// CORE EXECUTION LOGIC
// ============================================================================

func executeBench(ctx context.Context, opts bench.Options, plotPath string, outputConfig OutputConfig) error {
	start := time.Now()

	if outputConfig.Plain {
		opts.Progress = func(m bench.Measurement) {
			fmt.Fprintf(os.Stderr, "  %-14s n=%-11s round %d  %v\n", m.Algorithm, formatNumber(m.Size), m.Round+1, m.Duration)
		}
	}

	runner, err := bench.NewRunner(opts)
	if err != nil {
		return err
	}

	result := output.NewJSONOutput("bench", start)
	result.SetParameters(opts)

	runErr := runner.Run(ctx)
	result.AddResults(runner.Results())
	if runErr != nil {
		result.AddError("run", runErr.Error(), 0)
	}

	if plotPath != "" && len(result.Results) > 0 {
		plotStart := time.Now()
		if err := output.PlotTimings(result, plotPath); err != nil {
			result.AddError("plot", err.Error(), 0)
		} else {
			result.AddWarning("info", fmt.Sprintf("Timing chart generated in %v at %s", time.Since(plotStart), plotPath), 0)
		}
	}

	result.UpdateDuration(start)
	outputResult(result, outputConfig)

	if runErr != nil {
		return runErr
	}
	if len(result.Errors) > 0 {
		return fmt.Errorf("benchmark finished with %d error(s)", len(result.Errors))
	}
	return nil
}

// executeTUI runs the live benchmark view
func executeTUI(ctx context.Context, opts bench.Options, plotPath string) error {
	app, err := tui.NewApp(opts)
	if err != nil {
		return err
	}

	if err := app.Run(ctx); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	if report := app.Report(); report != nil && plotPath != "" && len(report.Results) > 0 {
		if err := output.PlotTimings(report, plotPath); err != nil {
			return err
		}
		fmt.Printf("Timing chart written to %s\n", plotPath)
	}
	return nil
}

// executeServe runs the sort service until ctx is cancelled or the server
// stops on its own.
func executeServe(ctx context.Context, cfg *config.ServeConfig) error {
	sink := os.Stdout
	if cfg.OutFile != "" {
		f, err := os.OpenFile(cfg.OutFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open outFile: %w", err)
		}
		defer f.Close()
		sink = f
	}

	svc, err := ingestor.NewSortService(cfg.Addr, cfg.Timeout, sink)
	if err != nil {
		return fmt.Errorf("error creating sort service: %w", err)
	}
	if err := svc.Accept(); err != nil {
		svc.Close()
		return err
	}
	log.Printf("Sort service listening on %s", svc.Addr())

	select {
	case <-ctx.Done():
		log.Printf("Shutting down sort service")
	case <-svc.Done():
		log.Printf("Sort service stopped")
	}

	closeErr := svc.Close()
	stats := svc.Stats()
	log.Printf("Processed %d batches, %d events (%d invalid), %d keys",
		stats.Batches, stats.Events, stats.Invalid, stats.Keys)

	return closeErr
}

// ============================================================================
// OUTPUT FUNCTIONS - Unified output handling
// ============================================================================

// outputResult is the unified output function that handles all output formats
func outputResult(jsonOutput *output.JSONOutput, outputConfig OutputConfig) {
	if outputConfig.Plain {
		outputPlain(jsonOutput)
		return
	}

	var jsonBytes []byte
	var err error

	if outputConfig.Compact {
		jsonBytes, err = jsonOutput.ToCompactJSON()
	} else {
		jsonBytes, err = jsonOutput.ToJSON()
	}

	if err != nil {
		fmt.Printf(`{"error": "failed to marshal JSON output: %v"}`, err)
		return
	}
	fmt.Println(string(jsonBytes))
}

const (
	heavyRule = "═══════════════════════════════════════════════════════════════════════════════"
	lightRule = "───────────────────────────────────────────────────────────────────────────────"
)

// outputPlain formats the JSON output as human-readable plain text
func outputPlain(jsonOutput *output.JSONOutput) {
	fmt.Printf("%s\n", heavyRule)
	fmt.Printf("                            radix256 Benchmark Results\n")
	fmt.Printf("%s\n\n", heavyRule)

	fmt.Printf("📊 RUN OVERVIEW\n")
	fmt.Printf("%s\n", lightRule)
	fmt.Printf("Generated:       %s\n", jsonOutput.Metadata.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Printf("Duration:        %d ms\n", jsonOutput.Metadata.DurationMS)
	fmt.Printf("Go:              %s (GOMAXPROCS %d)\n", jsonOutput.Metadata.GoVersion, jsonOutput.Metadata.GOMAXPROCS)
	fmt.Printf("Algorithms:      %s\n", strings.Join(jsonOutput.Config.Algorithms, ", "))
	fmt.Printf("Rounds:          %d\n", jsonOutput.Config.Rounds)
	fmt.Printf("Seed:            %d\n", jsonOutput.Config.Seed)
	fmt.Printf("Verify:          %t\n", jsonOutput.Config.Verify)
	fmt.Printf("\n")

	lastSize := -1
	for _, r := range jsonOutput.Results {
		if r.Size != lastSize {
			if lastSize >= 0 {
				fmt.Printf("\n")
			}
			fmt.Printf("⚡ n = %s\n", formatNumber(r.Size))
			fmt.Printf("...............................................................................\n")
			fmt.Printf("  %-14s %12s %12s %12s %8s %8s\n", "algorithm", "best", "mean", "Mkeys/s", "vs std", "ok")
			lastSize = r.Size
		}
		speedup := "-"
		if r.SpeedupVsBaseline > 0 && r.Algorithm != bench.Baseline {
			speedup = fmt.Sprintf("%.2fx", r.SpeedupVsBaseline)
		}
		verified := "-"
		if r.Verified != nil {
			verified = "yes"
			if !*r.Verified {
				verified = "NO"
			}
		}
		fmt.Printf("  %-14s %12s %12s %12.1f %8s %8s\n",
			r.Algorithm,
			time.Duration(r.BestUS)*time.Microsecond,
			time.Duration(r.MeanUS)*time.Microsecond,
			r.KeysPerSecond/1e6,
			speedup,
			verified)
	}
	fmt.Printf("\n")

	if len(jsonOutput.Warnings) > 0 || len(jsonOutput.Errors) > 0 {
		fmt.Printf("⚠️  DIAGNOSTICS\n")
		fmt.Printf("%s\n", lightRule)

		if len(jsonOutput.Warnings) > 0 {
			fmt.Printf("Warnings:\n")
			for _, warning := range jsonOutput.Warnings {
				fmt.Printf("  • %s\n", warning.Message)
			}
		}

		if len(jsonOutput.Errors) > 0 {
			fmt.Printf("Errors:\n")
			for _, err := range jsonOutput.Errors {
				fmt.Printf("  • %s\n", err.Message)
			}
		}
		fmt.Printf("\n")
	}

	fmt.Printf("%s\n", heavyRule)
}

func outputKeyFilePlain(result *output.KeyFileOutput) {
	fmt.Printf("File:        %s\n", result.File)
	fmt.Printf("Keys:        %s\n", formatNumber(result.Keys))
	fmt.Printf("Sort time:   %v\n", time.Duration(result.SortUS)*time.Microsecond)
	fmt.Printf("Throughput:  %s keys/sec\n", formatNumber(int(result.KeysPerSecond)))
	fmt.Printf("Digest:      %s\n", result.Digest)
	if result.Sorted != nil {
		fmt.Printf("Sorted:      %t\n", *result.Sorted)
	}
}

// formatNumber adds thousand separators to numbers
func formatNumber(n int) string {
	str := fmt.Sprintf("%d", n)
	if len(str) <= 3 {
		return str
	}

	var result strings.Builder
	for i, digit := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result.WriteString(",")
		}
		result.WriteRune(digit)
	}
	return result.String()
}
