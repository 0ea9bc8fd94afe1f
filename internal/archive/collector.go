package archive

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"

	"pwsarchive/internal/obs"
	"pwsarchive/internal/wunderground"
)

// Fetcher retrieves one station-day of observations.
type Fetcher interface {
	FetchDay(ctx context.Context, station string, day time.Time) (*obs.Table, error)
}

// Collector drives a Fetcher over a calendar range and persists the
// combined table to an archive directory.
type Collector struct {
	fetcher Fetcher
	retry   RetryPolicy
	dir     Dir

	// timer overrides the retry wait in tests. nil means real clocks.
	timer backoff.Timer
}

func NewCollector(fetcher Fetcher, retry RetryPolicy, dir Dir) *Collector {
	return &Collector{fetcher: fetcher, retry: retry, dir: dir}
}

// Collect fetches every day from start through end inclusive, in
// ascending order, and returns the concatenated table after writing it
// to the archive directory. Connection failures on a day are retried
// per the policy before the walk moves on; any other failure abandons
// the run with nothing written.
func (c *Collector) Collect(ctx context.Context, station string, start, end time.Time) (*obs.Table, error) {
	first := midnight(start)
	last := midnight(end)
	if last.Before(first) {
		return nil, fmt.Errorf("end date %s precedes start date %s",
			last.Format(dateLayout), first.Format(dateLayout))
	}

	var dailies []*obs.Table
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		if day.Day()%10 == 0 {
			log.Infof("working on date %s", day.Format(dateLayout))
		}
		daily, err := c.fetchDay(ctx, station, day)
		if err != nil {
			return nil, err
		}
		dailies = append(dailies, daily)
	}

	table, err := obs.Concat(dailies)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(c.dir.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}
	path := c.dir.FilePath(station)
	if err := table.WriteFile(path); err != nil {
		return nil, fmt.Errorf("persist archive: %w", err)
	}
	log.Infof("wrote %d rows to %s", table.Len(), path)
	return table, nil
}

// fetchDay calls the fetcher until it succeeds, sleeping out
// connection failures. Every other error is final.
func (c *Collector) fetchDay(ctx context.Context, station string, day time.Time) (*obs.Table, error) {
	var daily *obs.Table
	operation := func() error {
		t, err := c.fetcher.FetchDay(ctx, station, day)
		if err != nil {
			if errors.Is(err, wunderground.ErrConnection) {
				return err
			}
			return backoff.Permanent(err)
		}
		daily = t
		return nil
	}
	notify := func(err error, _ time.Duration) {
		log.Warnf("got connection error on %s: %v", day.Format(dateLayout), err)
		log.Infof("will retry in %s", c.retry.Delay)
	}

	err := backoff.RetryNotifyWithTimer(operation, c.retry.backOff(ctx), notify, c.timer)
	if err != nil {
		return nil, fmt.Errorf("fetch %s on %s: %w", station, day.Format(dateLayout), err)
	}
	return daily, nil
}

const dateLayout = "2006-01-02"

func midnight(ts time.Time) time.Time {
	y, m, d := ts.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, ts.Location())
}
