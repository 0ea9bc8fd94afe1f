package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	httpapi "pwsarchive/internal/api/http"
	"pwsarchive/internal/archive"
	"pwsarchive/internal/common"
	"pwsarchive/internal/config"
	"pwsarchive/internal/scheduler"
	"pwsarchive/internal/store"
	"pwsarchive/internal/wunderground"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := common.InitLogger(cfg.LogLevel); err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}

	// Shared HTTP client for outbound source calls.
	client := wunderground.NewClient(&http.Client{Timeout: cfg.HTTPTimeout})
	client.BaseURL = cfg.HistoryURL
	client.UserAgent = cfg.UserAgent

	// Archive directory, collector, and in-memory cache behind one
	// service.
	dir := archive.Dir{Path: cfg.ArchiveDir}
	collector := archive.NewCollector(client, archive.RetryPolicy{Delay: cfg.RetryDelay}, dir)
	memStore := store.NewMemoryStore(cfg.CacheMaxAge)
	service := archive.NewService(collector, memStore, dir)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Scheduler that periodically refreshes station archives.
	sched := scheduler.New(cfg.Stations, cfg.RefreshInterval, cfg.LookbackDays, service)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := httpapi.NewApp(service)

	// Start server with graceful shutdown
	go func() {
		if err := app.Listen(cfg.Addr); err != nil {
			log.Errorf("fiber server stopped: %v", err)
		}
	}()
	log.Infof("listening on %s", cfg.Addr)

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Errorf("error during shutdown: %v", err)
	}
}
