// Package report renders pipeline statistics as an HTML page of
// charts: CPI over time, stall and flush causes, and branch
// prediction accuracy.
package report

import (
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/twosigma/frost-sub002/timing/pipeline"
)

// CycleSample is one cumulative reading of the pipeline counters,
// taken at Cycle.
type CycleSample struct {
	Cycle                uint64
	Instructions         uint64
	Stalls               uint64
	LoadUseStalls        uint64
	ExecStalls           uint64
	MemStalls            uint64
	Flushes              uint64
	TrapFlushes          uint64
	ReturnRedirects      uint64
	BranchResolutions    uint64
	BranchMispredictions uint64
}

// Series is a sequence of samples in cycle order. Samples are
// cumulative, so the last one carries the run's totals.
type Series []CycleSample

// Snapshot is everything a report needs.
type Snapshot struct {
	// Program names the run in the page title.
	Program string
	// Series holds the samples behind the time charts.
	Series Series
}

// SampleOf flattens pipeline statistics into one cumulative sample.
func SampleOf(stats pipeline.Statistics) CycleSample {
	return CycleSample{
		Cycle:                stats.Cycles,
		Instructions:         stats.Instructions,
		Stalls:               stats.Stalls,
		LoadUseStalls:        stats.LoadUseStalls,
		ExecStalls:           stats.ExecStalls,
		MemStalls:            stats.MemStalls,
		Flushes:              stats.Flushes,
		TrapFlushes:          stats.TrapFlushes,
		ReturnRedirects:      stats.ReturnRedirects,
		BranchResolutions:    stats.BranchResolutions,
		BranchMispredictions: stats.BranchMispredictions,
	}
}

// Render writes the HTML report for snap to w.
func Render(w io.Writer, snap Snapshot) error {
	page := components.NewPage()
	page.PageTitle = pageTitle(snap.Program)
	page.SetLayout(components.PageFlexLayout)
	page.AddCharts(
		cpiChart(snap.Series),
		stallChart(snap.Series),
		accuracyChart(snap.Series),
	)
	return page.Render(w)
}

func pageTitle(program string) string {
	if program == "" {
		return "pipeline report"
	}
	return "pipeline report: " + program
}

func cpiChart(series Series) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "CPI over time",
			Subtitle: "cumulative and per-interval cycles per instruction",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "cycle"}),
	)

	cumulative, interval := cpiData(series)
	line.SetXAxis(xLabels(series)).
		AddSeries("cumulative", cumulative).
		AddSeries("interval", interval).
		SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
	return line
}

func stallChart(series Series) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Stall and flush causes",
			Subtitle: "run totals per cause",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	var last CycleSample
	if len(series) > 0 {
		last = series[len(series)-1]
	}
	bar.SetXAxis(stallCauses).AddSeries("count", stallValues(last))
	return bar
}

func accuracyChart(series Series) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Branch prediction accuracy",
			Subtitle: "percent of resolved branches predicted correctly",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "cycle"}),
	)

	line.SetXAxis(xLabels(series)).
		AddSeries("accuracy", accuracyData(series)).
		SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
	return line
}

func xLabels(series Series) []string {
	x := make([]string, len(series))
	for i, s := range series {
		x[i] = strconv.FormatUint(s.Cycle, 10)
	}
	return x
}

func cpiData(series Series) (cumulative, interval []opts.LineData) {
	cumulative = make([]opts.LineData, len(series))
	interval = make([]opts.LineData, len(series))
	var prev CycleSample
	for i, s := range series {
		cumulative[i] = opts.LineData{Value: ratio(s.Cycle, s.Instructions)}
		interval[i] = opts.LineData{
			Value: ratio(s.Cycle-prev.Cycle, s.Instructions-prev.Instructions),
		}
		prev = s
	}
	return cumulative, interval
}

func accuracyData(series Series) []opts.LineData {
	data := make([]opts.LineData, len(series))
	for i, s := range series {
		data[i] = opts.LineData{Value: accuracy(s)}
	}
	return data
}

var stallCauses = []string{
	"load-use", "execute busy", "memory busy",
	"branch flush", "trap flush", "return redirect",
}

func stallValues(s CycleSample) []opts.BarData {
	return []opts.BarData{
		{Value: s.LoadUseStalls},
		{Value: s.ExecStalls},
		{Value: s.MemStalls},
		{Value: s.Flushes},
		{Value: s.TrapFlushes},
		{Value: s.ReturnRedirects},
	}
}

func ratio(cycles, instructions uint64) float64 {
	if instructions == 0 {
		return 0
	}
	return float64(cycles) / float64(instructions)
}

func accuracy(s CycleSample) float64 {
	if s.BranchResolutions == 0 {
		return 0
	}
	correct := s.BranchResolutions - s.BranchMispredictions
	return float64(correct) / float64(s.BranchResolutions) * 100
}
