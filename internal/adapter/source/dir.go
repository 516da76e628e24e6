// Package source locates the newest forecast dataset for the holder to
// load.
package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Dir scans a directory for forecast files named
// forecast_YYYYMMDDHH_000.nc. The release hour is embedded in the name,
// so lexicographic order is release order.
type Dir struct {
	dir string
}

// NewDir builds a directory source.
func NewDir(dir string) *Dir {
	return &Dir{dir: dir}
}

// Latest returns the path of the newest forecast file.
func (d *Dir) Latest(_ context.Context) (string, error) {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return "", fmt.Errorf("failed to read dataset directory: %w", err)
	}

	var newest string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, "forecast_") || !strings.HasSuffix(name, ".nc") {
			continue
		}
		if name > newest {
			newest = name
		}
	}

	if newest == "" {
		return "", fmt.Errorf("no forecast datasets in %s", d.dir)
	}
	return filepath.Join(d.dir, newest), nil
}
