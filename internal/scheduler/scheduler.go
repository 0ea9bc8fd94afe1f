package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	log "github.com/sirupsen/logrus"

	"pwsarchive/internal/archive"
)

// Scheduler periodically refreshes the archive for configured stations.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   *archive.Service
	stations  []string
	interval  time.Duration
	lookback  int
}

// New creates a new Scheduler.
func New(stations []string, interval time.Duration, lookbackDays int, service *archive.Service) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		service:   service,
		stations:  stations,
		interval:  interval,
		lookback:  lookbackDays,
	}
}

// Start schedules the periodic refresh and starts the underlying
// scheduler. Stations refresh one at a time so the source never sees
// more than a single outstanding request.
func (s *Scheduler) Start(ctx context.Context) error {
	if len(s.stations) == 0 {
		log.Info("scheduler: no stations configured; nothing to schedule")
		return nil
	}

	interval := s.interval
	if interval <= 0 {
		interval = 6 * time.Hour
	}

	_, err := s.scheduler.Every(interval).Do(func() {
		log.Info("scheduler: refreshing station archives")
		for _, station := range s.stations {
			if ctx.Err() != nil {
				return
			}
			if _, err := s.service.Refresh(ctx, station, s.lookback); err != nil {
				log.Errorf("scheduler: refresh failed for %s: %v", station, err)
			}
		}
		log.Info("scheduler: refresh complete")
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
