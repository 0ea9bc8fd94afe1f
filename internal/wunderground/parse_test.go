package wunderground

import (
	"errors"
	"strings"
	"testing"
)

func TestRepairThenParseCounts(t *testing.T) {
	raw := rawPayload(sampleRow, sampleRow, sampleRow)

	repaired := Repair(raw)
	tbl, err := ParseDaily(repaired)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Row count equals the data lines in the corrected text, artifact
	// line included.
	dataLines := strings.Count(repaired, "\n")
	if tbl.Len() != dataLines {
		t.Errorf("expected %d rows, got %d", dataLines, tbl.Len())
	}

	headerFields := strings.Split(rawHeader, ",")
	if len(tbl.Columns) != len(headerFields)-1 {
		t.Errorf("expected %d columns, got %d", len(headerFields)-1, len(tbl.Columns))
	}
	for i, want := range headerFields[1:] {
		if tbl.Columns[i] != want {
			t.Errorf("column %d: expected %q, got %q", i, want, tbl.Columns[i])
		}
	}
}

func TestParseDailyKeepsSourceOrder(t *testing.T) {
	row1 := strings.Replace(sampleRow, "00:05:00", "00:10:00", 1)
	row2 := sampleRow // earlier timestamp second on purpose
	tbl, err := ParseDaily(Repair(rawPayload(row1, row2)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(tbl.Rows[0].Key, "00:10:00") {
		t.Errorf("rows must keep source order, got first key %q", tbl.Rows[0].Key)
	}
}

func TestParseDailyArtifactRow(t *testing.T) {
	tbl, err := ParseDaily(Repair(rawPayload(sampleRow)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	last := tbl.Rows[tbl.Len()-1]
	if last.Key != "<br>" {
		t.Fatalf("expected trailing artifact row, got key %q", last.Key)
	}
	if !last.Time.IsZero() {
		t.Errorf("artifact row must not parse as a timestamp")
	}
}

func TestParseDailyMissingTimeColumn(t *testing.T) {
	_, err := ParseDaily("TemperatureF,Humidity\n41.5,92")
	if !errors.Is(err, ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
}

func TestParseDailyOverlongRow(t *testing.T) {
	_, err := ParseDaily("Time,A\n2020-01-01 00:05:00,1,2")
	if !errors.Is(err, ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
}

func TestParseDailyEmptyPayload(t *testing.T) {
	_, err := ParseDaily(Repair("\n"))
	if !errors.Is(err, ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
}
