package archive

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"

	"pwsarchive/internal/obs"
	"pwsarchive/internal/store"
	"pwsarchive/internal/wunderground"
)

// Store caches range tables between refreshes.
type Store interface {
	Put(station string, t *obs.Table)
	Get(station string) (*obs.Table, error)
	Stations() []string
}

// Service orchestrates collection, the in-memory cache, and the
// archive directory for the HTTP layer and the scheduler.
type Service struct {
	collector *Collector
	store     Store
	dir       Dir
}

// NewService creates a new Service.
func NewService(collector *Collector, st Store, dir Dir) *Service {
	return &Service{
		collector: collector,
		store:     st,
		dir:       dir,
	}
}

// Refresh collects the trailing lookback window for a station and
// caches the result. A lookback of one covers today only.
func (s *Service) Refresh(ctx context.Context, station string, lookbackDays int) (*obs.Table, error) {
	if lookbackDays <= 0 {
		lookbackDays = 1
	}
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -(lookbackDays - 1))

	table, err := s.collector.Collect(ctx, station, start, end)
	if err != nil {
		return nil, err
	}
	s.store.Put(station, table)
	log.Infof("refreshed %s: %d rows over %d days", station, table.Len(), lookbackDays)
	return table, nil
}

// Table returns a station's range table from the cache, falling back
// to the archive directory. A directory hit repopulates the cache.
func (s *Service) Table(station string) (*obs.Table, error) {
	if table, err := s.store.Get(station); err == nil {
		return table, nil
	}
	table, err := s.dir.Load(station)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", store.ErrNotFound, station)
		}
		return nil, err
	}
	s.store.Put(station, table)
	return table, nil
}

// Observations returns a station's rows within [from, to] inclusive.
func (s *Service) Observations(station string, from, to time.Time) (*obs.Table, error) {
	table, err := s.Table(station)
	if err != nil {
		return nil, err
	}
	return table.Between(from, to), nil
}

// Hourly returns the hourly resample of a station's observations
// within [from, to], with negative temperature sentinels cleared
// before aggregation.
func (s *Service) Hourly(station string, from, to time.Time) (*obs.Table, error) {
	table, err := s.Observations(station, from, to)
	if err != nil {
		return nil, err
	}
	cleaned := table.ClearNegative(wunderground.ColTemperature)
	return cleaned.ResampleHourly(wunderground.HourlyAggregation()), nil
}

// Stations lists every station known to the cache or the archive
// directory, sorted and without duplicates.
func (s *Service) Stations() ([]string, error) {
	seen := make(map[string]bool)
	for _, station := range s.store.Stations() {
		seen[station] = true
	}
	archived, err := s.dir.Stations()
	if err != nil {
		return nil, err
	}
	for _, station := range archived {
		seen[station] = true
	}
	stations := make([]string, 0, len(seen))
	for station := range seen {
		stations = append(stations, station)
	}
	sort.Strings(stations)
	return stations, nil
}
