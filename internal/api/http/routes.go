package httpapi

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"pwsarchive/internal/archive"
	"pwsarchive/internal/charts"
	"pwsarchive/internal/obs"
	"pwsarchive/internal/store"
	"pwsarchive/internal/wunderground"
)

var validate = validator.New()

// chartHorizon is the open upper bound used when a chart covers the
// whole archive.
var chartHorizon = time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC)

// NewApp builds the Fiber application: error envelope, middleware,
// health endpoint, API routes.
func NewApp(service *archive.Service) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "pwsarchive",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "pwsarchive",
		})
	})

	RegisterRoutes(app, service)
	return app
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *archive.Service) {
	v1 := app.Group("/api/v1")

	v1.Get("/stations", func(c *fiber.Ctx) error {
		stations, err := service.Stations()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to list stations")
		}
		return c.JSON(fiber.Map{"stations": stations})
	})

	v1.Get("/stations/:station/observations", func(c *fiber.Ctx) error {
		var req rangeQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		station := c.Params("station")
		table, err := service.Observations(station, req.From, req.To)
		if err != nil {
			return serviceError(err)
		}
		return c.JSON(tableResponse(station, req, table))
	})

	v1.Get("/stations/:station/hourly", func(c *fiber.Ctx) error {
		var req rangeQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		station := c.Params("station")
		table, err := service.Hourly(station, req.From, req.To)
		if err != nil {
			return serviceError(err)
		}
		return c.JSON(tableResponse(station, req, table))
	})

	chartGroup := v1.Group("/stations/:station/charts")

	chartGroup.Get("/temperature", func(c *fiber.Ctx) error {
		return renderChart(c, service, func(w io.Writer, t *obs.Table) error {
			return charts.TemperatureByHour(w, t, wunderground.ColTemperature)
		})
	})

	chartGroup.Get("/rainfall", func(c *fiber.Ctx) error {
		cumulative := c.QueryBool("cumulative", false)
		return renderChart(c, service, func(w io.Writer, t *obs.Table) error {
			return charts.RainByWaterYear(w, t, wunderground.ColDailyRain, cumulative)
		})
	})

	chartGroup.Get("/solar", func(c *fiber.Ctx) error {
		start, err := queryInt(c, "start", 8)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		step, err := queryInt(c, "step", 4)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return renderChart(c, service, func(w io.Writer, t *obs.Table) error {
			return charts.HourOverlay(w, t, wunderground.ColSolarRadiation, start, step)
		})
	})
}

// renderChart resamples a station's whole archive hourly, hands the
// table to the renderer, and replies with the PNG.
func renderChart(c *fiber.Ctx, service *archive.Service, render func(io.Writer, *obs.Table) error) error {
	hourly, err := service.Hourly(c.Params("station"), time.Time{}, chartHorizon)
	if err != nil {
		return serviceError(err)
	}

	var buf bytes.Buffer
	if err := render(&buf, hourly); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	c.Type("png")
	return c.Send(buf.Bytes())
}

func serviceError(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "no archive for requested station")
	}
	return fiber.NewError(fiber.StatusInternalServerError, "failed to read archive")
}

// tableResponse renders a table as JSON rows keyed by column name.
func tableResponse(station string, req rangeQuery, t *obs.Table) fiber.Map {
	rows := make([]fiber.Map, 0, t.Len())
	for _, r := range t.Rows {
		values := make(map[string]string, len(t.Columns))
		for i, col := range t.Columns {
			if i < len(r.Values) {
				values[col] = r.Values[i]
			}
		}
		rows = append(rows, fiber.Map{"time": r.Key, "values": values})
	}
	return fiber.Map{
		"station": station,
		"from":    req.From,
		"to":      req.To,
		"columns": t.Columns,
		"rows":    rows,
	}
}

// rangeQuery holds the time window for the table endpoints.
type rangeQuery struct {
	From time.Time `validate:"required"`
	To   time.Time `validate:"required,gtefield=From"`
}

func (q *rangeQuery) bind(c *fiber.Ctx) error {
	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	q.From = from
	q.To = to
	return nil
}

// parseTime accepts a calendar date (midnight UTC) or RFC3339.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse("2006-01-02", s); err == nil {
		return ts, nil
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	return time.Time{}, errors.New("invalid time format; use yyyy-mm-dd or RFC3339")
}

func queryInt(c *fiber.Ctx, key string, def int) (int, error) {
	v := c.Query(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s parameter", key)
	}
	return n, nil
}
