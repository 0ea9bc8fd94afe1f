// Package influx uploads range tables to InfluxDB.
package influx

import (
	"fmt"
	"time"

	client "github.com/influxdata/influxdb/client/v2"
	log "github.com/sirupsen/logrus"

	"pwsarchive/internal/common"
	"pwsarchive/internal/obs"
)

// Config points the exporter at an InfluxDB instance.
type Config struct {
	Addr     string
	Username string
	Password string
	Database string
}

// Writer uploads observation tables as points in the "weather"
// measurement, tagged with the station and the provider.
type Writer struct {
	client      client.Client
	database    string
	measurement string
}

// NewWriter connects to InfluxDB and verifies it responds.
func NewWriter(cfg Config) (*Writer, error) {
	c, err := client.NewHTTPClient(client.HTTPConfig{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
	})
	if err != nil {
		return nil, err
	}
	if _, _, err := c.Ping(1 * time.Second); err != nil {
		c.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Addr, err)
	}

	database := cfg.Database
	if database == "" {
		database = "weather"
	}
	return &Writer{client: c, database: database, measurement: "weather"}, nil
}

// WriteTable uploads one point per timestamped row. Numeric cells
// become float fields and the rest string fields; empty cells and rows
// without a parsed timestamp are skipped.
func (w *Writer) WriteTable(station string, t *obs.Table) error {
	bp, err := client.NewBatchPoints(client.BatchPointsConfig{
		Database:  w.database,
		Precision: "ns",
	})
	if err != nil {
		return err
	}

	tags := map[string]string{
		"station":  station,
		"provider": "wunderground",
	}

	skipped := 0
	for _, r := range t.Rows {
		if r.Time.IsZero() {
			skipped++
			continue
		}
		fields := make(map[string]interface{}, len(t.Columns))
		for i, col := range t.Columns {
			if i >= len(r.Values) || r.Values[i] == "" {
				continue
			}
			if v, ok := common.ParseFloat(r.Values[i]); ok {
				fields[col] = v
			} else {
				fields[col] = r.Values[i]
			}
		}
		if len(fields) == 0 {
			skipped++
			continue
		}
		p, err := client.NewPoint(w.measurement, tags, fields, r.Time)
		if err != nil {
			return fmt.Errorf("point for %q: %w", r.Key, err)
		}
		bp.AddPoint(p)
	}
	if skipped > 0 {
		log.Debugf("skipped %d rows without a timestamp or data", skipped)
	}

	if err := w.client.Write(bp); err != nil {
		return fmt.Errorf("write %d points: %w", len(bp.Points()), err)
	}
	log.Infof("uploaded %d points for %s", len(bp.Points()), station)
	return nil
}

// Close releases the underlying client.
func (w *Writer) Close() error {
	return w.client.Close()
}
