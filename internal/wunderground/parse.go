package wunderground

import (
	"fmt"
	"strings"

	"pwsarchive/internal/obs"
)

// ParseDaily reads a repaired payload into a table keyed by the
// source's time column. The column set is taken from the header as-is;
// nothing here assumes a particular station schema. Structural
// problems wrap ErrParse.
func ParseDaily(text string) (*obs.Table, error) {
	t, err := obs.ReadCSV(strings.NewReader(text), obs.KeyColumnName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return t, nil
}
