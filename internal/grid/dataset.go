// Package grid holds forecast fields as dense arrays over regular
// longitude, latitude and time axes, and extracts per-point time series
// by nearest-neighbour selection.
package grid

import (
	"fmt"
	"sort"
	"time"
)

// Dataset is an immutable stack of gridded variables sharing the same
// axes. Longitudes use the [0, 360) convention, latitudes may run in
// either direction, times are ascending UTC instants.
type Dataset struct {
	lons  []float64
	lats  []float64
	times []time.Time
	vars  map[string][]float64
}

// NewDataset validates the axes and variable shapes and builds a dataset.
// Each variable must hold len(times)*len(lats)*len(lons) values laid out
// time-major, then latitude, then longitude.
func NewDataset(lons, lats []float64, times []time.Time, vars map[string][]float64) (*Dataset, error) {
	if len(lons) == 0 {
		return nil, fmt.Errorf("longitude axis is empty")
	}
	if len(lats) == 0 {
		return nil, fmt.Errorf("latitude axis is empty")
	}
	if len(times) == 0 {
		return nil, fmt.Errorf("time axis is empty")
	}

	if !isMonotonic(lons) {
		return nil, fmt.Errorf("longitude axis must be strictly monotonic")
	}
	if !isMonotonic(lats) {
		return nil, fmt.Errorf("latitude axis must be strictly monotonic")
	}
	for i := 1; i < len(times); i++ {
		if !times[i].After(times[i-1]) {
			return nil, fmt.Errorf("time axis must be strictly increasing")
		}
	}

	want := len(times) * len(lats) * len(lons)
	for name, data := range vars {
		if len(data) != want {
			return nil, fmt.Errorf("variable %s has %d values, expected %d", name, len(data), want)
		}
	}

	return &Dataset{lons: lons, lats: lats, times: times, vars: vars}, nil
}

// Lons returns the longitude axis. Callers must not modify it.
func (d *Dataset) Lons() []float64 { return d.lons }

// Lats returns the latitude axis. Callers must not modify it.
func (d *Dataset) Lats() []float64 { return d.lats }

// Times returns the time axis. Callers must not modify it.
func (d *Dataset) Times() []time.Time { return d.times }

// TimeBounds returns the first and last instants of the time axis.
func (d *Dataset) TimeBounds() (time.Time, time.Time) {
	return d.times[0], d.times[len(d.times)-1]
}

// VarNames returns the stored variable names in sorted order.
func (d *Dataset) VarNames() []string {
	names := make([]string, 0, len(d.vars))
	for name := range d.vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasVar reports whether the dataset stores the named variable.
func (d *Dataset) HasVar(name string) bool {
	_, ok := d.vars[name]
	return ok
}

// Var returns the named variable laid out time-major, then latitude,
// then longitude. Callers must not modify the returned slice.
func (d *Dataset) Var(name string) ([]float64, bool) {
	data, ok := d.vars[name]
	return data, ok
}

// SelectNearest resolves each query point to its nearest grid cell and
// extracts the named variables over the part of the time axis that falls
// within [from, to]. Longitudes must already be in the [0, 360) grid
// convention. Each axis is matched independently, so the resolved cell is
// the combination of the nearest longitude and the nearest latitude. An
// empty time intersection yields a series with no samples.
func (d *Dataset) SelectNearest(lons, lats []float64, from, to time.Time, names []string) (*PointSeries, error) {
	if len(lons) != len(lats) {
		return nil, fmt.Errorf("got %d longitudes and %d latitudes", len(lons), len(lats))
	}

	nx, ny := len(d.lons), len(d.lats)

	xs := make([]int, len(lons))
	ys := make([]int, len(lats))
	matchedLons := make([]float64, len(lons))
	matchedLats := make([]float64, len(lats))
	for i := range lons {
		xs[i] = NearestIndex(d.lons, lons[i])
		ys[i] = NearestIndex(d.lats, lats[i])
		matchedLons[i] = d.lons[xs[i]]
		matchedLats[i] = d.lats[ys[i]]
	}

	lo, hi := clipTimeRange(d.times, from, to)

	var times []time.Time
	if lo <= hi {
		times = make([]time.Time, hi-lo+1)
		copy(times, d.times[lo:hi+1])
	}

	values := make(map[string][][]float64, len(names))
	for _, name := range names {
		data, ok := d.vars[name]
		if !ok {
			return nil, fmt.Errorf("variable %s not in dataset", name)
		}

		rows := make([][]float64, len(times))
		for t := range times {
			row := make([]float64, len(lons))
			for p := range row {
				row[p] = data[((lo+t)*ny+ys[p])*nx+xs[p]]
			}
			rows[t] = row
		}
		values[name] = rows
	}

	return &PointSeries{
		Lons:   matchedLons,
		Lats:   matchedLats,
		Times:  times,
		Values: values,
	}, nil
}

// clipTimeRange returns the inclusive index range of axis instants inside
// [from, to]. The range is empty when lo > hi.
func clipTimeRange(times []time.Time, from, to time.Time) (int, int) {
	lo := sort.Search(len(times), func(i int) bool {
		return !times[i].Before(from)
	})
	hi := sort.Search(len(times), func(i int) bool {
		return times[i].After(to)
	}) - 1

	return lo, hi
}
