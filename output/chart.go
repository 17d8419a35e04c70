package output

import (
	"fmt"
	"os"
	"slices"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

// PlotTimings renders an interactive HTML line chart of best sort time per
// input size, one series per algorithm.
func PlotTimings(report *JSONOutput, filename string) error {
	if len(report.Results) == 0 {
		return fmt.Errorf("no results to plot")
	}

	sizes, series := timingSeries(report.Results)

	xLabels := make([]string, len(sizes))
	for i, size := range sizes {
		xLabels[i] = FormatSize(size)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle:       "radix256 benchmark",
			Width:           "160vh",
			Height:          "90vh",
			Theme:           types.ThemeVintage,
			BackgroundColor: "transparent",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Sort time by input size (best of rounds)",
			Subtitle: fmt.Sprintf("%s, GOMAXPROCS=%d", report.Metadata.GoVersion, report.Metadata.GOMAXPROCS),
			Left:     "center",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(true),
			Top:  "bottom",
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Trigger: "axis",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: "keys",
			Type: "category",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "best (ms)",
			Type: "log",
		}),
	)

	line.SetXAxis(xLabels)
	for _, s := range series {
		line.AddSeries(s.name, s.points)
	}

	page := components.NewPage()
	page.SetLayout(components.PageFlexLayout)
	page.AddCharts(line)

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("could not create chart file %s: %w", filename, err)
	}
	defer f.Close()

	if err := page.Render(f); err != nil {
		return fmt.Errorf("rendering chart: %w", err)
	}
	return nil
}

type lineSeries struct {
	name   string
	points []opts.LineData
}

// timingSeries pivots result records into ascending sizes and one series per
// algorithm in first-seen order. Missing points are left empty.
func timingSeries(results []ResultRecord) ([]int, []lineSeries) {
	var sizes []int
	var names []string
	best := make(map[string]map[int]float64)
	for _, r := range results {
		if !slices.Contains(sizes, r.Size) {
			sizes = append(sizes, r.Size)
		}
		if _, ok := best[r.Algorithm]; !ok {
			names = append(names, r.Algorithm)
			best[r.Algorithm] = make(map[int]float64)
		}
		best[r.Algorithm][r.Size] = float64(r.BestUS) / 1000
	}
	slices.Sort(sizes)

	series := make([]lineSeries, len(names))
	for i, name := range names {
		points := make([]opts.LineData, len(sizes))
		for j, size := range sizes {
			if ms, ok := best[name][size]; ok {
				points[j] = opts.LineData{Value: ms, Name: FormatSize(size)}
			}
		}
		series[i] = lineSeries{name: name, points: points}
	}
	return sizes, series
}

// FormatSize renders 1000 as "1K", 1000000 as "1M" and leaves other values
// as plain integers.
func FormatSize(n int) string {
	switch {
	case n >= 1_000_000 && n%1_000_000 == 0:
		return strconv.Itoa(n/1_000_000) + "M"
	case n >= 1_000 && n%1_000 == 0:
		return strconv.Itoa(n/1_000) + "K"
	}
	return strconv.Itoa(n)
}
