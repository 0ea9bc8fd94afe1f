package obs

import (
	"time"

	"pwsarchive/internal/common"
)

// Agg selects how a column's samples are combined into an hourly value.
type Agg int

const (
	// AggFirst keeps the first non-empty sample in the hour.
	AggFirst Agg = iota
	// AggMean averages the numeric samples in the hour.
	AggMean
	// AggLast keeps the last non-empty sample in the hour. Suits
	// counters that accumulate within a period.
	AggLast
	// AggMax keeps the largest numeric sample in the hour.
	AggMax
)

// ResampleHourly buckets the rows into hour-aligned bins covering the
// contiguous span from the first to the last observed hour, and
// combines each column's samples with the method named for it
// (AggFirst when a column has no entry). Hours inside the span with no
// samples produce rows of empty values. Rows without a parsed
// timestamp are ignored.
func (t *Table) ResampleHourly(methods map[string]Agg) *Table {
	out := &Table{KeyColumn: t.KeyColumn, Columns: t.Columns}

	buckets := make(map[time.Time][]Row)
	var first, last time.Time
	for _, r := range t.Rows {
		if r.Time.IsZero() {
			continue
		}
		h := r.Time.Truncate(time.Hour)
		if first.IsZero() || h.Before(first) {
			first = h
		}
		if h.After(last) {
			last = h
		}
		buckets[h] = append(buckets[h], r)
	}
	if first.IsZero() {
		return out
	}

	for h := first; !h.After(last); h = h.Add(time.Hour) {
		row := Row{
			Time:   h,
			Key:    h.Format(TimeLayout),
			Values: make([]string, len(t.Columns)),
		}
		rows := buckets[h]
		for i, col := range t.Columns {
			method := methods[col]
			row.Values[i] = aggregate(rows, i, method)
		}
		out.Rows = append(out.Rows, row)
	}

	return out
}

// aggregate combines one column's samples from the rows of a single
// bucket. An empty result means no usable sample.
func aggregate(rows []Row, col int, method Agg) string {
	switch method {
	case AggMean:
		var sum float64
		var n int
		for _, r := range rows {
			if col >= len(r.Values) {
				continue
			}
			if v, ok := common.ParseFloat(r.Values[col]); ok {
				sum += v
				n++
			}
		}
		if n == 0 {
			return ""
		}
		return common.FormatFloat(sum / float64(n))

	case AggMax:
		var max float64
		found := false
		for _, r := range rows {
			if col >= len(r.Values) {
				continue
			}
			if v, ok := common.ParseFloat(r.Values[col]); ok {
				if !found || v > max {
					max = v
					found = true
				}
			}
		}
		if !found {
			return ""
		}
		return common.FormatFloat(max)

	case AggLast:
		for i := len(rows) - 1; i >= 0; i-- {
			if col < len(rows[i].Values) && rows[i].Values[col] != "" {
				return rows[i].Values[col]
			}
		}
		return ""

	default: // AggFirst
		for _, r := range rows {
			if col < len(r.Values) && r.Values[col] != "" {
				return r.Values[col]
			}
		}
		return ""
	}
}
