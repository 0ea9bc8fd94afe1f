package archive

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"pwsarchive/internal/obs"
)

// fileSuffix is the archive naming convention. The "rainfall_hourly"
// part is historical; the file holds the full observation table, not
// an hourly resample.
const fileSuffix = "_rainfall_hourly.csv"

// FileName returns the archive file name for a station.
func FileName(station string) string {
	return station + fileSuffix
}

// Dir is a directory holding one archive file per station.
type Dir struct {
	Path string
}

// FilePath returns the archive path for a station.
func (d Dir) FilePath(station string) string {
	return filepath.Join(d.Path, FileName(station))
}

// Stations lists the stations with an archive file, sorted. A missing
// directory reads as empty rather than failing.
func (d Dir) Stations() ([]string, error) {
	entries, err := os.ReadDir(d.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var stations []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		station := strings.TrimSuffix(e.Name(), fileSuffix)
		if station == e.Name() || station == "" {
			continue
		}
		stations = append(stations, station)
	}
	sort.Strings(stations)
	return stations, nil
}

// Load reads a station's archive file.
func (d Dir) Load(station string) (*obs.Table, error) {
	return obs.ReadFile(d.FilePath(station))
}
