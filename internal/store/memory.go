package store

import (
	"errors"
	"sort"
	"sync"
	"time"

	"pwsarchive/internal/obs"
)

var (
	// ErrNotFound is returned when no table is cached for a station.
	ErrNotFound = errors.New("no archive for station")
)

// entry pairs a cached range table with its refresh time.
type entry struct {
	table     *obs.Table
	updatedAt time.Time
}

// MemoryStore is a concurrency-safe in-memory cache of range tables
// keyed by station.
type MemoryStore struct {
	mu sync.RWMutex

	// key: station ID, value: cached table
	data map[string]entry

	// optional max age before an entry is treated as stale
	maxAge time.Duration
}

// NewMemoryStore creates a new MemoryStore. If maxAge is <= 0, entries
// never expire.
func NewMemoryStore(maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:   make(map[string]entry),
		maxAge: maxAge,
	}
}

// Put replaces the cached table for a station.
func (s *MemoryStore) Put(station string, t *obs.Table) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[station] = entry{table: t, updatedAt: time.Now()}
}

// Get returns the cached table for a station. Expired entries are
// evicted and reported as missing.
func (s *MemoryStore) Get(station string) (*obs.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.data[station]
	if !ok {
		return nil, ErrNotFound
	}
	if s.expired(e) {
		delete(s.data, station)
		return nil, ErrNotFound
	}
	return e.table, nil
}

// Stations lists the stations with a live cache entry, sorted.
func (s *MemoryStore) Stations() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stations []string
	for station, e := range s.data {
		if s.expired(e) {
			continue
		}
		stations = append(stations, station)
	}
	sort.Strings(stations)
	return stations
}

func (s *MemoryStore) expired(e entry) bool {
	return s.maxAge > 0 && time.Since(e.updatedAt) > s.maxAge
}
