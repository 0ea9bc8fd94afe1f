package obs

import (
	"fmt"
	"math"
	"sort"
	"time"

	"pwsarchive/internal/common"
)

// HourMonthPivot holds a column's mean value for every observed
// hour-of-day and calendar-month pairing. Cells with no samples are
// NaN.
type HourMonthPivot struct {
	Hours  []int
	Months []time.Month
	Cells  [][]float64 // [hour][month]
}

// MeanByHourMonth averages the named column per hour-of-day and month,
// combining the same month across years. Hours and months with no
// samples at all are dropped. It is an error when the column is absent
// or no row carries a parsed timestamp.
func (t *Table) MeanByHourMonth(column string) (*HourMonthPivot, error) {
	idx := t.columnIndex(column)
	if idx < 0 {
		return nil, fmt.Errorf("no %q column", column)
	}

	var sum [24][13]float64
	var cnt [24][13]int
	timestamped := false
	for _, r := range t.Rows {
		if r.Time.IsZero() {
			continue
		}
		timestamped = true
		if idx >= len(r.Values) {
			continue
		}
		v, ok := common.ParseFloat(r.Values[idx])
		if !ok {
			continue
		}
		h := r.Time.Hour()
		m := int(r.Time.Month())
		sum[h][m] += v
		cnt[h][m]++
	}
	if !timestamped {
		return nil, fmt.Errorf("no timestamped rows")
	}

	p := &HourMonthPivot{}
	for h := 0; h < 24; h++ {
		for m := 1; m <= 12; m++ {
			if cnt[h][m] > 0 {
				p.Hours = append(p.Hours, h)
				break
			}
		}
	}
	for m := 1; m <= 12; m++ {
		for h := 0; h < 24; h++ {
			if cnt[h][m] > 0 {
				p.Months = append(p.Months, time.Month(m))
				break
			}
		}
	}

	p.Cells = make([][]float64, len(p.Hours))
	for i, h := range p.Hours {
		p.Cells[i] = make([]float64, len(p.Months))
		for j, m := range p.Months {
			if c := cnt[h][m]; c > 0 {
				p.Cells[i][j] = sum[h][m] / float64(c)
			} else {
				p.Cells[i][j] = math.NaN()
			}
		}
	}
	return p, nil
}

// DayHourPivot arranges a column's values with one row per calendar
// date and one column per hour-of-day. Cells with no sample are NaN.
type DayHourPivot struct {
	Days  []time.Time
	Hours []int
	Cells [][]float64 // [day][hour]
}

// ByDayHour pivots the named column into a date-by-hour matrix.
// Intended for hourly-resampled tables; a second sample for the same
// date and hour is an error, as is an absent column or a table without
// timestamped rows.
func (t *Table) ByDayHour(column string) (*DayHourPivot, error) {
	idx := t.columnIndex(column)
	if idx < 0 {
		return nil, fmt.Errorf("no %q column", column)
	}

	type cell struct {
		day  time.Time
		hour int
	}
	values := make(map[cell]float64)
	daySet := make(map[time.Time]bool)
	hourSet := make(map[int]bool)
	for _, r := range t.Rows {
		if r.Time.IsZero() {
			continue
		}
		y, m, d := r.Time.Date()
		k := cell{day: time.Date(y, m, d, 0, 0, 0, 0, r.Time.Location()), hour: r.Time.Hour()}
		if _, dup := values[k]; dup {
			return nil, fmt.Errorf("duplicate sample for %s hour %d", k.day.Format("2006-01-02"), k.hour)
		}
		v := math.NaN()
		if idx < len(r.Values) {
			if f, ok := common.ParseFloat(r.Values[idx]); ok {
				v = f
			}
		}
		values[k] = v
		daySet[k.day] = true
		hourSet[k.hour] = true
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("no timestamped rows")
	}

	p := &DayHourPivot{}
	for d := range daySet {
		p.Days = append(p.Days, d)
	}
	sort.Slice(p.Days, func(i, j int) bool { return p.Days[i].Before(p.Days[j]) })
	for h := 0; h < 24; h++ {
		if hourSet[h] {
			p.Hours = append(p.Hours, h)
		}
	}

	p.Cells = make([][]float64, len(p.Days))
	for i, d := range p.Days {
		p.Cells[i] = make([]float64, len(p.Hours))
		for j, h := range p.Hours {
			if v, ok := values[cell{day: d, hour: h}]; ok {
				p.Cells[i][j] = v
			} else {
				p.Cells[i][j] = math.NaN()
			}
		}
	}
	return p, nil
}

// MonthYearPivot holds monthly totals with one row per month, ordered
// for a water year starting in October, and one column per calendar
// year. Cells outside the observed span are NaN.
type MonthYearPivot struct {
	Months []time.Month
	Years  []int
	Cells  [][]float64 // [month][year]
}

// waterYearStart is the month the rainfall-accounting year begins.
const waterYearStart = time.October

// MonthlyRainByYear reduces the named column to monthly totals: the
// last reading of each calendar day (the source accumulates rain
// within a day) summed per month, pivoted month-by-year with rows
// reordered to the water year. Months inside the observed span with no
// readings total zero. With cumulative set, each year's column carries
// running totals down the water year.
func (t *Table) MonthlyRainByYear(column string, cumulative bool) (*MonthYearPivot, error) {
	idx := t.columnIndex(column)
	if idx < 0 {
		return nil, fmt.Errorf("no %q column", column)
	}

	// Last parseable reading per calendar day, plus the observed span.
	daily := make(map[int]float64) // keyed by linear day ordinal
	spanStart, spanEnd := 0, 0
	seen := false
	for _, r := range t.Rows {
		if r.Time.IsZero() {
			continue
		}
		ym := monthOrdinal(r.Time)
		if !seen || ym < spanStart {
			spanStart = ym
		}
		if !seen || ym > spanEnd {
			spanEnd = ym
		}
		seen = true
		if idx >= len(r.Values) {
			continue
		}
		if v, ok := common.ParseFloat(r.Values[idx]); ok {
			daily[dayOrdinal(r.Time)] = v
		}
	}
	if !seen {
		return nil, fmt.Errorf("no timestamped rows")
	}

	// Monthly sums over the days that reported.
	monthly := make(map[int]float64)
	for day, v := range daily {
		monthly[day/32] += v
	}

	p := &MonthYearPivot{}
	for m := 0; m < 12; m++ {
		p.Months = append(p.Months, time.Month((int(waterYearStart)-1+m)%12+1))
	}
	for y := spanStart / 12; y <= spanEnd/12; y++ {
		p.Years = append(p.Years, y)
	}

	p.Cells = make([][]float64, len(p.Months))
	for i, m := range p.Months {
		p.Cells[i] = make([]float64, len(p.Years))
		for j, y := range p.Years {
			ym := y*12 + int(m) - 1
			if ym < spanStart || ym > spanEnd {
				p.Cells[i][j] = math.NaN()
				continue
			}
			p.Cells[i][j] = monthly[ym]
		}
	}

	if cumulative {
		for j := range p.Years {
			running := 0.0
			for i := range p.Months {
				if v := p.Cells[i][j]; !math.IsNaN(v) {
					running += v
					p.Cells[i][j] = running
				}
			}
		}
	}
	return p, nil
}

// monthOrdinal maps a timestamp to a linear month index (year*12+month).
func monthOrdinal(ts time.Time) int {
	return ts.Year()*12 + int(ts.Month()) - 1
}

// dayOrdinal maps a timestamp to a linear day index whose /32 quotient
// is the month ordinal.
func dayOrdinal(ts time.Time) int {
	return monthOrdinal(ts)*32 + ts.Day()
}
