package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/khazidhea/jua-warnings-api/internal/grid"
)

// ErrNoDataset is returned while no snapshot has been loaded yet.
var ErrNoDataset = errors.New("no dataset loaded")

// Snapshot binds one loaded dataset to its service and the forecast
// window fixed at load time. Snapshots are immutable and swapped whole.
type Snapshot struct {
	Path    string
	Name    string
	Service *ForecastService
	From    time.Time
	To      time.Time
}

// Source locates the newest forecast dataset file.
type Source interface {
	Latest(ctx context.Context) (string, error)
}

// Loader reads a dataset file into memory.
type Loader func(path string) (*grid.Dataset, error)

// DatasetHolder keeps the active snapshot behind an atomic pointer so
// request handlers never observe a half-loaded dataset and never block
// on a refresh.
type DatasetHolder struct {
	source  Source
	load    Loader
	horizon time.Duration
	logger  *slog.Logger

	current atomic.Pointer[Snapshot]
	now     func() time.Time
}

// NewDatasetHolder builds a holder. The horizon is the length of the
// forecast window opened at every dataset load.
func NewDatasetHolder(source Source, load Loader, horizon time.Duration, logger *slog.Logger) *DatasetHolder {
	return &DatasetHolder{
		source:  source,
		load:    load,
		horizon: horizon,
		logger:  logger,
		now:     time.Now,
	}
}

// Current returns the active snapshot, or ErrNoDataset before the first
// successful refresh.
func (h *DatasetHolder) Current() (*Snapshot, error) {
	snap := h.current.Load()
	if snap == nil {
		return nil, ErrNoDataset
	}
	return snap, nil
}

// Refresh locates the newest dataset and swaps it in. The previous
// snapshot stays active when anything fails. Reloading the path that is
// already active is skipped.
func (h *DatasetHolder) Refresh(ctx context.Context) error {
	path, err := h.source.Latest(ctx)
	if err != nil {
		return fmt.Errorf("locate dataset: %w", err)
	}

	if cur := h.current.Load(); cur != nil && cur.Path == path {
		h.logger.Debug("dataset unchanged", "path", path)
		return nil
	}

	started := time.Now()
	ds, err := h.load(path)
	if err != nil {
		return fmt.Errorf("load dataset %s: %w", path, err)
	}

	from := h.now().UTC().Truncate(time.Hour)
	snap := &Snapshot{
		Path:    path,
		Name:    filepath.Base(path),
		Service: NewForecastService(ds),
		From:    from,
		To:      from.Add(h.horizon),
	}
	h.current.Store(snap)

	h.logger.Info("dataset loaded",
		"dataset", snap.Name,
		"window_from", snap.From,
		"window_to", snap.To,
		"elapsed", time.Since(started))

	return nil
}
