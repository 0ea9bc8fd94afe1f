package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"pwsarchive/internal/archive"
	"pwsarchive/internal/obs"
	"pwsarchive/internal/store"
)

// newTestApp seeds an archive directory with two days of ten-minute
// samples for KCASANFR1 and builds the app around it.
func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	table := &obs.Table{
		KeyColumn: obs.KeyColumnName,
		Columns:   []string{"TemperatureF", "dailyrainin", "SolarRadiationWatts/m^2"},
	}
	for d := 1; d <= 2; d++ {
		sample := 0
		for h := 6; h <= 18; h++ {
			for m := 0; m < 60; m += 10 {
				ts := time.Date(2020, time.January, d, h, m, 0, 0, time.UTC)
				table.Rows = append(table.Rows, obs.Row{
					Time: ts,
					Key:  ts.Format(obs.TimeLayout),
					Values: []string{
						fmt.Sprintf("%g", 40+float64(h)/2),
						fmt.Sprintf("%g", 0.01*float64(sample)),
						fmt.Sprintf("%g", float64(h*10)),
					},
				})
				sample++
			}
		}
	}

	dir := archive.Dir{Path: t.TempDir()}
	if err := table.WriteFile(dir.FilePath("KCASANFR1")); err != nil {
		t.Fatal(err)
	}

	collector := archive.NewCollector(nil, archive.RetryPolicy{Delay: time.Millisecond}, dir)
	service := archive.NewService(collector, store.NewMemoryStore(0), dir)
	return NewApp(service)
}

type errorEnvelope struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil), -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestStationsEndpoint(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/stations", nil), -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var body struct {
		Stations []string `json:"stations"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Stations) != 1 || body.Stations[0] != "KCASANFR1" {
		t.Fatalf("stations = %v", body.Stations)
	}
}

func TestObservationsEndpoint(t *testing.T) {
	app := newTestApp(t)

	url := "/api/v1/stations/KCASANFR1/observations?from=2020-01-01&to=2020-01-02"
	resp, err := app.Test(httptest.NewRequest("GET", url, nil), -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var body struct {
		Station string   `json:"station"`
		Columns []string `json:"columns"`
		Rows    []struct {
			Time   string            `json:"time"`
			Values map[string]string `json:"values"`
		} `json:"rows"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Station != "KCASANFR1" {
		t.Fatalf("station = %q", body.Station)
	}
	// Six samples per hour for 06:00 through 18:50 on the first day;
	// the second day starts after the window closes.
	if len(body.Rows) != 78 {
		t.Fatalf("got %d rows, want 78", len(body.Rows))
	}
	if body.Rows[0].Time != "2020-01-01 06:00:00" {
		t.Fatalf("first row time = %q", body.Rows[0].Time)
	}
	if body.Rows[0].Values["TemperatureF"] != "43" {
		t.Fatalf("first row temperature = %q", body.Rows[0].Values["TemperatureF"])
	}
}

func TestObservationsValidation(t *testing.T) {
	app := newTestApp(t)

	for _, url := range []string{
		"/api/v1/stations/KCASANFR1/observations",
		"/api/v1/stations/KCASANFR1/observations?from=2020-01-02&to=2020-01-01",
		"/api/v1/stations/KCASANFR1/observations?from=yesterday&to=2020-01-02",
	} {
		resp, err := app.Test(httptest.NewRequest("GET", url, nil), -1)
		if err != nil {
			t.Fatalf("request %s: %v", url, err)
		}
		if resp.StatusCode != fiber.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", url, resp.StatusCode)
		}
		var body errorEnvelope
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
		if !body.Error || body.Message == "" {
			t.Errorf("%s: envelope = %+v", url, body)
		}
	}
}

func TestObservationsUnknownStation(t *testing.T) {
	app := newTestApp(t)

	url := "/api/v1/stations/KNOWHERE0/observations?from=2020-01-01&to=2020-01-02"
	resp, err := app.Test(httptest.NewRequest("GET", url, nil), -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestHourlyEndpoint(t *testing.T) {
	app := newTestApp(t)

	url := "/api/v1/stations/KCASANFR1/hourly?from=2020-01-01&to=2020-01-02"
	resp, err := app.Test(httptest.NewRequest("GET", url, nil), -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var body struct {
		Rows []struct {
			Time string `json:"time"`
		} `json:"rows"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// Hours 06:00 through 18:00 on the first day.
	if len(body.Rows) != 13 {
		t.Fatalf("got %d hourly rows, want 13", len(body.Rows))
	}
	if body.Rows[0].Time != "2020-01-01 06:00:00" {
		t.Fatalf("first hourly row = %q", body.Rows[0].Time)
	}
}

func TestChartEndpoints(t *testing.T) {
	app := newTestApp(t)

	for _, url := range []string{
		"/api/v1/stations/KCASANFR1/charts/temperature",
		"/api/v1/stations/KCASANFR1/charts/rainfall",
		"/api/v1/stations/KCASANFR1/charts/rainfall?cumulative=true",
		"/api/v1/stations/KCASANFR1/charts/solar",
		"/api/v1/stations/KCASANFR1/charts/solar?start=6&step=6",
	} {
		resp, err := app.Test(httptest.NewRequest("GET", url, nil), -1)
		if err != nil {
			t.Fatalf("request %s: %v", url, err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("%s: status = %d", url, resp.StatusCode)
		}
		if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
			t.Errorf("%s: content type = %q", url, ct)
		}
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			t.Fatalf("read %s: %v", url, err)
		}
		if !bytes.HasPrefix(body, []byte("\x89PNG")) {
			t.Errorf("%s: body is not a PNG", url)
		}
	}
}

func TestSolarChartBadParams(t *testing.T) {
	app := newTestApp(t)

	for _, url := range []string{
		"/api/v1/stations/KCASANFR1/charts/solar?step=lots",
		"/api/v1/stations/KCASANFR1/charts/solar?start=-1",
	} {
		resp, err := app.Test(httptest.NewRequest("GET", url, nil), -1)
		if err != nil {
			t.Fatalf("request %s: %v", url, err)
		}
		if resp.StatusCode != fiber.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", url, resp.StatusCode)
		}
	}
}
