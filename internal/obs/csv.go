package obs

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"

	"pwsarchive/internal/common"
)

// ReadCSV parses delimited text with a header row into a table keyed
// by the named column. The column set is taken from the header as-is.
// Rows shorter than the header are padded with empty values; rows
// longer than the header are an error. Blank lines are skipped.
func ReadCSV(r io.Reader, keyColumn string) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("missing header row")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	keyIdx := -1
	for i, name := range header {
		if name == keyColumn {
			keyIdx = i
			break
		}
	}
	if keyIdx < 0 {
		return nil, fmt.Errorf("header has no %q column", keyColumn)
	}

	t := &Table{
		KeyColumn: keyColumn,
		Columns:   make([]string, 0, len(header)-1),
	}
	for i, name := range header {
		if i != keyIdx {
			t.Columns = append(t.Columns, name)
		}
	}

	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(rec) > len(header) {
			return nil, fmt.Errorf("line %d has %d fields, header has %d", line, len(rec), len(header))
		}

		row := Row{Values: make([]string, len(t.Columns))}
		vi := 0
		for i, field := range rec {
			if i == keyIdx {
				row.Key = field
				continue
			}
			row.Values[vi] = field
			vi++
		}
		if ts, err := time.Parse(TimeLayout, row.Key); err == nil {
			row.Time = ts
		}
		t.Rows = append(t.Rows, row)
	}

	return t, nil
}

// ReadFile loads a persisted archive back into a table keyed by the
// source's time column.
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := ReadCSV(f, KeyColumnName)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// WriteCSV writes the table as comma-separated text: a header naming
// the key column first, then one row per observation with the raw key
// and values exactly as received.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, len(t.Columns)+1)
	header = append(header, t.KeyColumn)
	header = append(header, t.Columns...)
	if err := cw.Write(header); err != nil {
		return err
	}

	record := make([]string, len(header))
	for _, r := range t.Rows {
		record[0] = r.Key
		for i := range t.Columns {
			if i < len(r.Values) {
				record[i+1] = r.Values[i]
			} else {
				record[i+1] = ""
			}
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteFile persists the table to the given path, replacing any
// existing file.
func (t *Table) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := t.WriteCSV(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ClearNegative blanks every cell in the named column whose value
// parses negative. The source reports missing temperatures as negative
// sentinel readings; loaders convert them to missing before analysis.
func (t *Table) ClearNegative(column string) *Table {
	idx := t.columnIndex(column)
	if idx < 0 {
		return t
	}

	out := &Table{KeyColumn: t.KeyColumn, Columns: t.Columns, Rows: make([]Row, len(t.Rows))}
	for i, r := range t.Rows {
		out.Rows[i] = r
		if idx >= len(r.Values) {
			continue
		}
		if v, ok := common.ParseFloat(r.Values[idx]); ok && v < 0 {
			values := make([]string, len(r.Values))
			copy(values, r.Values)
			values[idx] = ""
			out.Rows[i].Values = values
		}
	}
	return out
}
