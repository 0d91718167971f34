// Package render draws glucose charts as PNG files.
package render

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"glucograph/internal/clarity"
	"glucograph/internal/stats"
)

// ErrNoReadings means there is nothing to plot; no output file is created.
var ErrNoReadings = errors.New("no readings to plot")

type Options struct {
	Width  int
	Height int
}

// Y axis snaps to a 25 mg/dL grid with headroom above the highest value.
const yGridInterval = 25

var (
	glucoseColor = drawing.ColorFromHex("44dd44")
	p5Color      = drawing.ColorFromHex("dd3333")
	p25Color     = drawing.ColorFromHex("3333dd")
	p75Color     = drawing.ColorFromHex("333388")
	p95Color     = drawing.ColorFromHex("883333")
)

// TimeSeriesFile renders the time-series chart to path, overwriting any
// previous run's output.
func TimeSeriesFile(path string, readings []clarity.Reading, opts Options) error {
	if len(readings) == 0 {
		return ErrNoReadings
	}
	return writeFile(path, func(w io.Writer) error {
		return WriteTimeSeries(w, readings, opts)
	})
}

// HourlyFile renders the hourly-stats chart to path.
func HourlyFile(path string, hourly []stats.HourlyStat, opts Options) error {
	if len(hourly) == 0 {
		return ErrNoReadings
	}
	return writeFile(path, func(w io.Writer) error {
		return WriteHourly(w, hourly, opts)
	})
}

// WriteTimeSeries plots glucose level over time: time on the x axis, mg/dL
// on the y axis.
func WriteTimeSeries(w io.Writer, readings []clarity.Reading, opts Options) error {
	if len(readings) == 0 {
		return ErrNoReadings
	}

	xs := make([]time.Time, len(readings))
	ys := make([]float64, len(readings))
	for i, r := range readings {
		xs[i] = r.Time
		ys[i] = r.MgDL
	}
	if len(xs) == 1 {
		// go-chart cannot derive an x range from a single value.
		xs = append(xs, xs[0].Add(5*time.Minute))
		ys = append(ys, ys[0])
	}

	yMax := snapToGrid(maxOf(ys))
	ch := chart.Chart{
		Title:      "Glucose Levels",
		Width:      opts.Width,
		Height:     opts.Height,
		Background: chart.Style{Padding: chart.Box{Top: 24, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:           "Time",
			ValueFormatter: chart.TimeValueFormatterWithFormat("01-02 15:04"),
		},
		YAxis: chart.YAxis{
			Name:  "Glucose Value (mg/dL)",
			Range: &chart.ContinuousRange{Min: 0, Max: yMax},
			Ticks: gridTicks(yMax),
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Glucose",
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: glucoseColor,
					StrokeWidth: 1.5,
					DotColor:    glucoseColor,
					DotWidth:    2,
				},
			},
		},
	}
	return ch.Render(chart.PNG, w)
}

// WriteHourly plots the per-hour mean and percentile levels: hour of day on
// the x axis, mg/dL on the y axis, one line per statistic.
func WriteHourly(w io.Writer, hourly []stats.HourlyStat, opts Options) error {
	if len(hourly) == 0 {
		return ErrNoReadings
	}

	n := len(hourly)
	hours := make([]float64, n)
	means := make([]float64, n)
	p5 := make([]float64, n)
	p25 := make([]float64, n)
	p75 := make([]float64, n)
	p95 := make([]float64, n)
	for i, h := range hourly {
		hours[i] = float64(h.Hour)
		means[i] = h.Mean
		p5[i] = h.P5
		p25[i] = h.P25
		p75[i] = h.P75
		p95[i] = h.P95
	}
	if n == 1 {
		hours = append(hours, hours[0]+1)
		means = append(means, means[0])
		p5 = append(p5, p5[0])
		p25 = append(p25, p25[0])
		p75 = append(p75, p75[0])
		p95 = append(p95, p95[0])
	}

	line := func(name string, col drawing.Color, ys []float64) chart.Series {
		return chart.ContinuousSeries{
			Name:    name,
			XValues: hours,
			YValues: ys,
			Style:   chart.Style{StrokeColor: col, StrokeWidth: 1.5},
		}
	}

	yMax := snapToGrid(maxOf(p95))
	ch := chart.Chart{
		Title:      "Hourly Mean Glucose Levels",
		Width:      opts.Width,
		Height:     opts.Height,
		Background: chart.Style{Padding: chart.Box{Top: 24, Left: 16, Right: 16, Bottom: 48}},
		XAxis: chart.XAxis{
			Name:  "Hour of the Day",
			Range: &chart.ContinuousRange{Min: 0, Max: 23},
			Ticks: hourTicks(),
		},
		YAxis: chart.YAxis{
			Name:  "Glucose Value (mg/dL)",
			Range: &chart.ContinuousRange{Min: 0, Max: yMax},
			Ticks: gridTicks(yMax),
		},
		Series: []chart.Series{
			line("5th Percentile", p5Color, p5),
			line("25th Percentile", p25Color, p25),
			line("75th Percentile", p75Color, p75),
			line("95th Percentile", p95Color, p95),
			line("Mean Glucose", glucoseColor, means),
		},
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch.Render(chart.PNG, w)
}

func writeFile(path string, render func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	if err := render(f); err != nil {
		if closeErr := f.Close(); closeErr != nil {
			slog.Error("close chart file", "error", closeErr)
		}
		return fmt.Errorf("render chart: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close chart file: %w", err)
	}
	return nil
}

func maxOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		m = math.Max(m, v)
	}
	return m
}

func snapToGrid(v float64) float64 {
	return v + 2*yGridInterval - math.Mod(v, yGridInterval)
}

func gridTicks(max float64) []chart.Tick {
	var ticks []chart.Tick
	for v := 0.0; v <= max; v += yGridInterval {
		ticks = append(ticks, chart.Tick{Value: v, Label: strconv.Itoa(int(v))})
	}
	return ticks
}

func hourTicks() []chart.Tick {
	ticks := make([]chart.Tick, 24)
	for h := 0; h < 24; h++ {
		ticks[h] = chart.Tick{Value: float64(h), Label: strconv.Itoa(h)}
	}
	return ticks
}
