package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"pwsarchive/internal/wunderground"
)

type AppConfig struct {
	// Addr is the dashboard API listen address.
	Addr string

	// ArchiveDir is where range tables are persisted.
	ArchiveDir string

	// Source endpoint and the identity presented to it.
	HistoryURL string
	UserAgent  string

	// HTTPTimeout bounds a single outbound request. Zero means no
	// timeout, the collection default.
	HTTPTimeout time.Duration

	// RetryDelay is the fixed wait between attempts on a failing day.
	RetryDelay time.Duration

	// RefreshInterval controls how often the scheduler re-collects.
	RefreshInterval time.Duration

	// LookbackDays is the trailing window a scheduled refresh covers.
	LookbackDays int

	// Stations to refresh.
	Stations []string

	// In-memory cache retention (0 = keep forever).
	CacheMaxAge time.Duration

	LogLevel string

	// InfluxDB export; an empty Addr disables it.
	InfluxAddr     string
	InfluxUsername string
	InfluxPassword string
	InfluxDatabase string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Infof("no .env file loaded: %v", err)
	}

	cfg := &AppConfig{
		Addr:       getenvDefault("ADDR", ":8080"),
		ArchiveDir: getenvDefault("ARCHIVE_DIR", "."),
		HistoryURL: getenvDefault("HISTORY_URL", wunderground.DefaultBaseURL),
		UserAgent:  getenvDefault("USER_AGENT", wunderground.DefaultUserAgent),
		LogLevel:   getenvDefault("LOG_LEVEL", "info"),

		InfluxAddr:     os.Getenv("INFLUX_ADDR"),
		InfluxUsername: os.Getenv("INFLUX_USERNAME"),
		InfluxPassword: os.Getenv("INFLUX_PASSWORD"),
		InfluxDatabase: getenvDefault("INFLUX_DATABASE", "weather"),
	}

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 0); err != nil {
		return nil, err
	}
	if cfg.RetryDelay, err = getenvDuration("RETRY_DELAY", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", 6*time.Hour); err != nil {
		return nil, err
	}
	if cfg.CacheMaxAge, err = getenvDuration("CACHE_MAX_AGE", 0); err != nil {
		return nil, err
	}
	cfg.LookbackDays = getenvInt("LOOKBACK_DAYS", 7)

	stations, err := loadStations(os.Getenv("STATIONS"), getenvDefault("STATIONS_FILE", "stations.yaml"))
	if err != nil {
		return nil, err
	}
	cfg.Stations = stations

	return cfg, nil
}

type stationsFile struct {
	Stations []string `yaml:"stations"`
}

// loadStations merges the comma-separated STATIONS variable with the
// optional YAML stations file. A missing file is fine; an unreadable
// or malformed one is not.
func loadStations(envList, path string) ([]string, error) {
	var stations []string
	seen := make(map[string]bool)
	add := func(id string) {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		stations = append(stations, id)
	}

	for _, id := range strings.Split(envList, ",") {
		add(id)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return stations, nil
		}
		return nil, fmt.Errorf("read stations file: %w", err)
	}
	var f stationsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse stations file %s: %w", path, err)
	}
	for _, id := range f.Stations {
		add(id)
	}
	return stations, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
