package obs

import (
	"math"
	"testing"
	"time"
)

func TestMeanByHourMonth(t *testing.T) {
	tbl := &Table{
		KeyColumn: "Time",
		Columns:   []string{"TemperatureF"},
		Rows: []Row{
			row("2020-01-01 08:05:00", "40.0"),
			row("2020-01-02 08:35:00", "44.0"),
			row("2020-02-01 08:15:00", "50.0"),
			row("2020-02-01 14:15:00", "60.0"),
		},
	}

	p, err := tbl.MeanByHourMonth("TemperatureF")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Hours) != 2 || p.Hours[0] != 8 || p.Hours[1] != 14 {
		t.Fatalf("unexpected hours: %v", p.Hours)
	}
	if len(p.Months) != 2 || p.Months[0] != time.January || p.Months[1] != time.February {
		t.Fatalf("unexpected months: %v", p.Months)
	}

	if !approx(p.Cells[0][0], 42.0) {
		t.Errorf("hour 8 January: expected 42.0, got %v", p.Cells[0][0])
	}
	if !approx(p.Cells[0][1], 50.0) {
		t.Errorf("hour 8 February: expected 50.0, got %v", p.Cells[0][1])
	}
	if !math.IsNaN(p.Cells[1][0]) {
		t.Errorf("hour 14 January: expected NaN, got %v", p.Cells[1][0])
	}
	if !approx(p.Cells[1][1], 60.0) {
		t.Errorf("hour 14 February: expected 60.0, got %v", p.Cells[1][1])
	}
}

func TestMeanByHourMonthMissingColumn(t *testing.T) {
	tbl := &Table{KeyColumn: "Time", Columns: []string{"A"}}
	if _, err := tbl.MeanByHourMonth("TemperatureF"); err == nil {
		t.Fatal("expected error for missing column")
	}
}

func TestByDayHour(t *testing.T) {
	tbl := &Table{
		KeyColumn: "Time",
		Columns:   []string{"SolarRadiationWatts/m^2"},
		Rows: []Row{
			row("2020-01-01 10:00:00", "310"),
			row("2020-01-01 12:00:00", "520"),
			row("2020-01-02 10:00:00", "290"),
		},
	}

	p, err := tbl.ByDayHour("SolarRadiationWatts/m^2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Days) != 2 {
		t.Fatalf("expected 2 days, got %d", len(p.Days))
	}
	if len(p.Hours) != 2 || p.Hours[0] != 10 || p.Hours[1] != 12 {
		t.Fatalf("unexpected hours: %v", p.Hours)
	}
	if !approx(p.Cells[0][0], 310) || !approx(p.Cells[0][1], 520) {
		t.Errorf("day 1 cells wrong: %v", p.Cells[0])
	}
	if !math.IsNaN(p.Cells[1][1]) {
		t.Errorf("missing day2 hour12: expected NaN, got %v", p.Cells[1][1])
	}
}

func TestByDayHourDuplicateSample(t *testing.T) {
	tbl := &Table{
		KeyColumn: "Time",
		Columns:   []string{"SolarRadiationWatts/m^2"},
		Rows: []Row{
			row("2020-01-01 10:05:00", "310"),
			row("2020-01-01 10:35:00", "320"),
		},
	}
	if _, err := tbl.ByDayHour("SolarRadiationWatts/m^2"); err == nil {
		t.Fatal("expected duplicate day/hour error")
	}
}

func TestMonthlyRainByYear(t *testing.T) {
	tbl := &Table{
		KeyColumn: "Time",
		Columns:   []string{"dailyrainin"},
		Rows: []Row{
			// Two readings on one day: the later one is the day's total.
			row("2019-12-30 10:00:00", "0.2"),
			row("2019-12-30 23:55:00", "0.5"),
			row("2019-12-31 12:00:00", "0.3"),
			row("2020-01-02 09:00:00", "1.0"),
			// Extends the span into February without a usable reading.
			row("2020-02-01 09:00:00", ""),
		},
	}

	p, err := tbl.MonthlyRainByYear("dailyrainin", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.Months[0] != time.October || p.Months[11] != time.September {
		t.Fatalf("expected water-year month order, got %v", p.Months)
	}
	if len(p.Years) != 2 || p.Years[0] != 2019 || p.Years[1] != 2020 {
		t.Fatalf("unexpected years: %v", p.Years)
	}

	monthIdx := func(m time.Month) int {
		for i, pm := range p.Months {
			if pm == m {
				return i
			}
		}
		t.Fatalf("month %v missing", m)
		return -1
	}

	if got := p.Cells[monthIdx(time.December)][0]; !approx(got, 0.8) {
		t.Errorf("December 2019: expected 0.8, got %v", got)
	}
	if got := p.Cells[monthIdx(time.January)][1]; !approx(got, 1.0) {
		t.Errorf("January 2020: expected 1.0, got %v", got)
	}
	if got := p.Cells[monthIdx(time.February)][1]; !approx(got, 0.0) {
		t.Errorf("February 2020 inside span: expected 0, got %v", got)
	}
	if got := p.Cells[monthIdx(time.October)][0]; !math.IsNaN(got) {
		t.Errorf("October 2019 outside span: expected NaN, got %v", got)
	}
	if got := p.Cells[monthIdx(time.March)][1]; !math.IsNaN(got) {
		t.Errorf("March 2020 outside span: expected NaN, got %v", got)
	}
}

func TestMonthlyRainByYearCumulative(t *testing.T) {
	tbl := &Table{
		KeyColumn: "Time",
		Columns:   []string{"dailyrainin"},
		Rows: []Row{
			row("2019-12-31 12:00:00", "0.3"),
			row("2020-01-15 12:00:00", "1.0"),
			row("2020-02-10 12:00:00", "0.5"),
		},
	}

	p, err := tbl.MonthlyRainByYear("dailyrainin", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	monthIdx := func(m time.Month) int {
		for i, pm := range p.Months {
			if pm == m {
				return i
			}
		}
		return -1
	}

	if got := p.Cells[monthIdx(time.January)][1]; !approx(got, 1.0) {
		t.Errorf("January 2020 running total: expected 1.0, got %v", got)
	}
	if got := p.Cells[monthIdx(time.February)][1]; !approx(got, 1.5) {
		t.Errorf("February 2020 running total: expected 1.5, got %v", got)
	}
	if got := p.Cells[monthIdx(time.December)][0]; !approx(got, 0.3) {
		t.Errorf("December 2019 running total: expected 0.3, got %v", got)
	}
}
