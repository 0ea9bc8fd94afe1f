// Package charts renders exploratory PNG charts from observation
// tables.
package charts

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/wcharczuk/go-chart/v2"

	"pwsarchive/internal/obs"
)

// yRange returns an explicit axis range when every plotted sample
// shares one value. Tick generation cannot divide a zero-extent range.
func yRange(min, max float64) chart.Range {
	if min == max {
		return &chart.ContinuousRange{Min: min - 1, Max: max + 1}
	}
	return nil
}

// TemperatureByHour draws the mean of a column per hour of day, one
// line per calendar month, and writes the result as PNG.
func TemperatureByHour(w io.Writer, t *obs.Table, column string) error {
	p, err := t.MeanByHourMonth(column)
	if err != nil {
		return err
	}

	var series []chart.Series
	yMin, yMax := math.Inf(1), math.Inf(-1)
	for j, m := range p.Months {
		var xs, ys []float64
		for i, h := range p.Hours {
			if v := p.Cells[i][j]; !math.IsNaN(v) {
				xs = append(xs, float64(h))
				ys = append(ys, v)
				yMin = math.Min(yMin, v)
				yMax = math.Max(yMax, v)
			}
		}
		if len(xs) == 0 {
			continue
		}
		series = append(series, chart.ContinuousSeries{
			Name:    m.String(),
			XValues: xs,
			YValues: ys,
		})
	}
	if len(series) == 0 {
		return fmt.Errorf("no numeric samples in %q", column)
	}

	graph := chart.Chart{
		XAxis: chart.XAxis{
			Name:           "Hour of day",
			ValueFormatter: chart.IntValueFormatter,
			Range:          &chart.ContinuousRange{Min: 0, Max: 23},
		},
		YAxis: chart.YAxis{
			Name:  column,
			Range: yRange(yMin, yMax),
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return graph.Render(chart.PNG, w)
}

// RainByWaterYear draws monthly rain totals down the water year, one
// line per calendar year. With cumulative set each line carries its
// running total instead.
func RainByWaterYear(w io.Writer, t *obs.Table, column string, cumulative bool) error {
	p, err := t.MonthlyRainByYear(column, cumulative)
	if err != nil {
		return err
	}

	ticks := make([]chart.Tick, len(p.Months))
	for i, m := range p.Months {
		ticks[i] = chart.Tick{Value: float64(i), Label: m.String()[:3]}
	}

	var series []chart.Series
	yMin, yMax := math.Inf(1), math.Inf(-1)
	for j, y := range p.Years {
		var xs, ys []float64
		for i := range p.Months {
			if v := p.Cells[i][j]; !math.IsNaN(v) {
				xs = append(xs, float64(i))
				ys = append(ys, v)
				yMin = math.Min(yMin, v)
				yMax = math.Max(yMax, v)
			}
		}
		if len(xs) == 0 {
			continue
		}
		series = append(series, chart.ContinuousSeries{
			Name:    strconv.Itoa(y),
			XValues: xs,
			YValues: ys,
		})
	}
	if len(series) == 0 {
		return fmt.Errorf("no numeric samples in %q", column)
	}

	graph := chart.Chart{
		XAxis: chart.XAxis{
			Ticks: ticks,
			Range: &chart.ContinuousRange{Min: 0, Max: 11},
		},
		YAxis: chart.YAxis{
			Name:  "Rain (in)",
			Range: yRange(yMin, yMax),
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return graph.Render(chart.PNG, w)
}

// HourOverlay draws one scatter series per selected hour of day
// (start, start+step, ...) across the table's days. Intended for
// hourly-resampled tables and slow-moving columns like solar
// radiation.
func HourOverlay(w io.Writer, t *obs.Table, column string, start, step int) error {
	if start < 0 || start > 23 {
		return fmt.Errorf("start hour %d out of range", start)
	}
	if step < 1 {
		return fmt.Errorf("step %d must be positive", step)
	}

	p, err := t.ByDayHour(column)
	if err != nil {
		return err
	}

	hourIdx := make(map[int]int, len(p.Hours))
	for j, h := range p.Hours {
		hourIdx[h] = j
	}

	var series []chart.Series
	yMin, yMax := math.Inf(1), math.Inf(-1)
	for h := start; h < 24; h += step {
		j, ok := hourIdx[h]
		if !ok {
			continue
		}
		var xs []time.Time
		var ys []float64
		for i, d := range p.Days {
			if v := p.Cells[i][j]; !math.IsNaN(v) {
				xs = append(xs, d)
				ys = append(ys, v)
				yMin = math.Min(yMin, v)
				yMax = math.Max(yMax, v)
			}
		}
		if len(xs) == 0 {
			continue
		}
		series = append(series, chart.TimeSeries{
			Name:    fmt.Sprintf("%02d:00", h),
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeWidth: chart.Disabled,
				DotWidth:    4,
			},
		})
	}
	if len(series) == 0 {
		return fmt.Errorf("no numeric samples in %q", column)
	}

	graph := chart.Chart{
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:  column,
			Range: yRange(yMin, yMax),
		},
		Series: series,
	}
	if len(p.Days) == 1 {
		// One day of data leaves the time axis without extent.
		d := p.Days[0]
		graph.XAxis.Range = &chart.ContinuousRange{
			Min: float64(d.Add(-12 * time.Hour).UnixNano()),
			Max: float64(d.Add(12 * time.Hour).UnixNano()),
		}
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return graph.Render(chart.PNG, w)
}
