package obs

import (
	"fmt"
	"time"
)

// TimeLayout is the timestamp form used by the observation source and
// by persisted archives.
const TimeLayout = "2006-01-02 15:04:05"

// KeyColumnName is the field the source keys its rows by.
const KeyColumnName = "Time"

// Row is a single observation sample. Key preserves the raw key-column
// text exactly as the source returned it; Time is that text parsed as
// a timestamp, or the zero time when it does not parse (the source is
// known to emit a markup artifact as its last line, which flows
// through here unparsed).
type Row struct {
	Time   time.Time
	Key    string
	Values []string // aligned with Table.Columns
}

// Table is an ordered set of observation rows with named columns. The
// field set is whatever the source returned; nothing here assumes a
// particular schema. KeyColumn names the column rows are keyed by,
// Columns lists the remaining fields in source order.
type Table struct {
	KeyColumn string
	Columns   []string
	Rows      []Row
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// columnIndex returns the position of the named column in Columns, or
// -1 when absent.
func (t *Table) columnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the table carries the named column.
func (t *Table) HasColumn(name string) bool {
	return t.columnIndex(name) >= 0
}

// Concat joins daily tables into one range table, preserving the order
// of the input tables and of the rows within each. Columns are unioned
// by name in first-seen order; rows from tables missing a column carry
// an empty value there. Joining nothing is an error.
func Concat(tables []*Table) (*Table, error) {
	if len(tables) == 0 {
		return nil, fmt.Errorf("no tables to concatenate")
	}

	out := &Table{KeyColumn: tables[0].KeyColumn}
	index := make(map[string]int)
	for _, t := range tables {
		for _, c := range t.Columns {
			if _, ok := index[c]; !ok {
				index[c] = len(out.Columns)
				out.Columns = append(out.Columns, c)
			}
		}
	}

	for _, t := range tables {
		aligned := len(t.Columns) == len(out.Columns)
		if aligned {
			for i, c := range t.Columns {
				if out.Columns[i] != c {
					aligned = false
					break
				}
			}
		}

		for _, r := range t.Rows {
			if aligned {
				out.Rows = append(out.Rows, r)
				continue
			}
			values := make([]string, len(out.Columns))
			for i, c := range t.Columns {
				if i < len(r.Values) {
					values[index[c]] = r.Values[i]
				}
			}
			out.Rows = append(out.Rows, Row{Time: r.Time, Key: r.Key, Values: values})
		}
	}

	return out, nil
}

// Between returns the rows whose timestamps fall within [from, to],
// inclusive, preserving order. Rows without a parsed timestamp are
// excluded.
func (t *Table) Between(from, to time.Time) *Table {
	out := &Table{KeyColumn: t.KeyColumn, Columns: t.Columns}
	for _, r := range t.Rows {
		if r.Time.IsZero() {
			continue
		}
		if r.Time.Before(from) || r.Time.After(to) {
			continue
		}
		out.Rows = append(out.Rows, r)
	}
	return out
}

// Localize reinterprets every parsed timestamp as wall-clock time in
// the given location, leaving the raw key text untouched.
func (t *Table) Localize(loc *time.Location) *Table {
	out := &Table{KeyColumn: t.KeyColumn, Columns: t.Columns, Rows: make([]Row, len(t.Rows))}
	for i, r := range t.Rows {
		out.Rows[i] = r
		if r.Time.IsZero() {
			continue
		}
		y, m, d := r.Time.Date()
		h, min, s := r.Time.Clock()
		out.Rows[i].Time = time.Date(y, m, d, h, min, s, r.Time.Nanosecond(), loc)
	}
	return out
}
