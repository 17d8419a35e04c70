package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ChristianF88/radix256/bench"
	"github.com/ChristianF88/radix256/output"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const (
	pageProgress = "progress"
	pageResults  = "results"

	// refreshInterval throttles results table redraws while measurements land
	refreshInterval = 250 * time.Millisecond
)

// App represents the live benchmark TUI
type App struct {
	app          *tview.Application
	pages        *tview.Pages
	progressView *tview.TextView
	resultsTable *tview.Table
	diagnostics  *tview.TextView
	statusBar    *tview.TextView

	opts   bench.Options
	runner *bench.Runner
	cancel context.CancelFunc
	start  time.Time

	// Shared mutable state protected by mu (accessed from the runner goroutine)
	mu     sync.Mutex
	last   bench.Measurement
	report *output.JSONOutput
	runErr error

	completed     atomic.Int64
	benchComplete atomic.Bool
	lastRefresh   atomic.Int64 // unix nanos of the last table refresh
}

// NewApp creates the TUI and the runner it drives. opts.Progress is replaced
// by the TUI's own callback.
func NewApp(opts bench.Options) (*App, error) {
	a := &App{
		app:   tview.NewApplication(),
		pages: tview.NewPages(),
	}
	opts.Progress = a.onMeasurement
	runner, err := bench.NewRunner(opts)
	if err != nil {
		return nil, err
	}
	a.opts = opts
	a.runner = runner
	a.setupUI()
	return a, nil
}

func (a *App) setupUI() {
	a.progressView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false).
		SetWrap(false)
	a.progressView.SetBorder(true).SetTitle(" radix256 Benchmark Progress ").SetTitleAlign(tview.AlignCenter)

	a.resultsTable = tview.NewTable().
		SetBorders(false).
		SetFixed(1, 0)
	a.resultsTable.SetBorder(true).SetTitle(" Results ").SetTitleAlign(tview.AlignLeft)

	a.diagnostics = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	a.diagnostics.SetBorder(true).SetTitle(" Diagnostics ").SetTitleAlign(tview.AlignLeft)

	a.statusBar = tview.NewTextView().
		SetDynamicColors(true).
		SetText(statusText(pageProgress, false))
	a.statusBar.SetBorder(false)

	progress := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.progressView, 0, 1, true).
		AddItem(a.statusBar, 1, 0, false)

	results := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.resultsTable, 0, 3, true).
		AddItem(a.diagnostics, 6, 0, false).
		AddItem(a.statusBar, 1, 0, false)

	a.pages.AddPage(pageProgress, progress, true, true)
	a.pages.AddPage(pageResults, results, true, false)

	a.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Rune() {
		case 'q', 'Q':
			if a.cancel != nil {
				a.cancel()
			}
			a.app.Stop()
			return nil
		case 'r', 'R':
			a.switchTo(pageResults)
			return nil
		case 'p', 'P':
			a.switchTo(pageProgress)
			return nil
		}
		return event
	})

	a.app.SetRoot(a.pages, true)
}

func (a *App) switchTo(page string) {
	a.pages.SwitchToPage(page)
	a.statusBar.SetText(statusText(page, a.benchComplete.Load()))
	if page == pageResults {
		fillResultsTable(a.resultsTable, a.runner.Results())
	}
}

// Run starts the benchmark in the background and blocks until the user
// quits. Quitting cancels a benchmark that is still running.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	defer cancel()

	a.start = time.Now()
	a.progressView.SetText(buildProgressText(a.opts, bench.Measurement{}, 0, a.runner.TotalMeasurements(), 0))

	go a.runBenchmark(ctx)

	if err := a.app.Run(); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.runErr != nil && !errors.Is(a.runErr, context.Canceled) {
		return a.runErr
	}
	return nil
}

func (a *App) runBenchmark(ctx context.Context) {
	err := a.runner.Run(ctx)

	report := output.NewJSONOutput("bench", a.start)
	report.SetParameters(a.opts)
	report.AddResults(a.runner.Results())
	if err != nil {
		report.AddError("run", err.Error(), 0)
	}
	report.UpdateDuration(a.start)

	a.mu.Lock()
	a.report = report
	a.runErr = err
	a.mu.Unlock()
	a.benchComplete.Store(true)

	a.app.QueueUpdateDraw(func() {
		fillResultsTable(a.resultsTable, a.runner.Results())
		a.diagnostics.SetText(buildDiagnosticsText(report))
		a.pages.SwitchToPage(pageResults)
		a.statusBar.SetText(statusText(pageResults, true))
	})
}

// onMeasurement runs on the runner goroutine after every measurement.
func (a *App) onMeasurement(m bench.Measurement) {
	done := int(a.completed.Add(1))

	a.mu.Lock()
	a.last = m
	a.mu.Unlock()

	text := buildProgressText(a.opts, m, done, a.runner.TotalMeasurements(), time.Since(a.start))

	now := time.Now().UnixNano()
	refresh := now-a.lastRefresh.Load() >= int64(refreshInterval) || done == a.runner.TotalMeasurements()
	if refresh {
		a.lastRefresh.Store(now)
	}

	a.app.QueueUpdateDraw(func() {
		a.progressView.SetText(text)
		if refresh {
			fillResultsTable(a.resultsTable, a.runner.Results())
		}
	})
}

// Report returns the final report once the benchmark finished, nil before.
func (a *App) Report() *output.JSONOutput {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.report
}

func buildProgressText(opts bench.Options, last bench.Measurement, done, total int, elapsed time.Duration) string {
	var sb strings.Builder
	sb.WriteString("\n[white::b]radix256 Benchmark[white::-]\n\n")

	fmt.Fprintf(&sb, "%s %d/%d\n\n", progressBar(done, total, 40), done, total)

	if done > 0 {
		status := "[green]ok[white]"
		if last.Checked && !(last.Sorted && last.Verified) {
			status = "[red]MISMATCH[white]"
		} else if !last.Checked {
			status = "[dim]unchecked[white]"
		}
		fmt.Fprintf(&sb, "[dim]Last:[white] %s  n=%d  round %d  %v  %s\n",
			last.Algorithm, last.Size, last.Round+1, last.Duration, status)
	} else {
		sb.WriteString("[yellow]▶[white] Generating keys...\n")
	}

	names := make([]string, len(opts.Algorithms))
	for i, algo := range opts.Algorithms {
		names[i] = algo.Name
	}
	sizes := make([]string, len(opts.Sizes))
	for i, s := range opts.Sizes {
		sizes[i] = output.FormatSize(s)
	}

	fmt.Fprintf(&sb, "\n[dim]Algorithms:[white] %s\n", strings.Join(names, ", "))
	fmt.Fprintf(&sb, "[dim]Sizes:[white] %s\n", strings.Join(sizes, ", "))
	fmt.Fprintf(&sb, "[dim]Rounds:[white] %d  [dim]Seed:[white] %d  [dim]Verify:[white] %t\n", opts.Rounds, opts.Seed, opts.Verify)
	fmt.Fprintf(&sb, "[dim]Elapsed:[white] %v\n", elapsed.Round(time.Millisecond))
	return sb.String()
}

func progressBar(done, total, width int) string {
	if total <= 0 {
		return "|" + strings.Repeat(" ", width) + "|"
	}
	if done > total {
		done = total
	}
	filled := done * width / total
	return "|" + strings.Repeat("=", filled) + strings.Repeat(" ", width-filled) + "|"
}

var resultsHeader = []string{"Algorithm", "Size", "Rounds", "Best", "Mean", "Mkeys/s", "vs std", "Verified"}

// fillResultsTable redraws the table from a registry snapshot.
func fillResultsTable(table *tview.Table, results *bench.Results) {
	table.Clear()
	for col, h := range resultsHeader {
		table.SetCell(0, col, tview.NewTableCell(h).
			SetTextColor(tcell.ColorYellow).
			SetSelectable(false).
			SetExpansion(1))
	}

	for i, e := range results.Snapshot() {
		row := i + 1
		speedup := "-"
		if s := results.Speedup(e.Algorithm, e.Size); s > 0 && e.Algorithm != bench.Baseline {
			speedup = fmt.Sprintf("%.2fx", s)
		}
		verified, color := "-", tcell.ColorWhite
		if e.Checked {
			if e.Verified {
				verified, color = "yes", tcell.ColorGreen
			} else {
				verified, color = "NO", tcell.ColorRed
			}
		}

		cells := []string{
			e.Algorithm,
			output.FormatSize(e.Size),
			fmt.Sprintf("%d", e.Rounds),
			e.Best.String(),
			e.Mean().String(),
			fmt.Sprintf("%.1f", e.KeysPerSecond()/1e6),
			speedup,
			verified,
		}
		for col, text := range cells {
			cell := tview.NewTableCell(text).SetExpansion(1)
			if col == len(cells)-1 {
				cell.SetTextColor(color)
			}
			table.SetCell(row, col, cell)
		}
	}
}

func buildDiagnosticsText(report *output.JSONOutput) string {
	if len(report.Errors) == 0 && len(report.Warnings) == 0 {
		return fmt.Sprintf("[green]All checked results match the %s baseline.[white]\nCompleted in %d ms", bench.Baseline, report.Metadata.DurationMS)
	}
	var sb strings.Builder
	for _, e := range report.Errors {
		fmt.Fprintf(&sb, "[red]%s:[white] %s", e.Type, e.Message)
		if e.Count > 0 {
			fmt.Fprintf(&sb, " (n=%d)", e.Count)
		}
		sb.WriteString("\n")
	}
	for _, w := range report.Warnings {
		fmt.Fprintf(&sb, "[yellow]%s:[white] %s\n", w.Type, w.Message)
	}
	return sb.String()
}

func statusText(page string, complete bool) string {
	if page == pageResults {
		if complete {
			return "[green]Benchmark complete![white] | 'p': progress, 'q': quit"
		}
		return "[yellow]Benchmark running...[white] | 'p': progress, 'q': quit"
	}
	if complete {
		return "[green]Benchmark complete![white] | 'r': results, 'q': quit"
	}
	return "[yellow]Benchmark running...[white] | 'r': results, 'q': quit"
}
