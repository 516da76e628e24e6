package grid

import (
	"math"
	"time"
)

// PointSeries holds variable values extracted at a set of grid points
// over a shared time axis. Lons and Lats are the resolved grid
// coordinates, still in the [0, 360) longitude convention. Values maps a
// variable name to rows indexed [time][point]. Missing samples are NaN.
type PointSeries struct {
	Lons   []float64
	Lats   []float64
	Times  []time.Time
	Values map[string][][]float64
}

// NumPoints returns the number of extracted points.
func (s *PointSeries) NumPoints() int { return len(s.Lons) }

// Reindex rebuilds the series on a denser time axis running from the
// first to the last existing instant in increments of step. Instants
// that match an existing sample keep its values, all others are NaN.
// The receiver is returned unchanged when it has no samples or when
// step is not positive.
func (s *PointSeries) Reindex(step time.Duration) *PointSeries {
	if len(s.Times) == 0 || step <= 0 {
		return s
	}

	native := make(map[int64]int, len(s.Times))
	for i, t := range s.Times {
		native[t.Unix()] = i
	}

	start, end := s.Times[0], s.Times[len(s.Times)-1]
	var times []time.Time
	for t := start; !t.After(end); t = t.Add(step) {
		times = append(times, t)
	}

	n := s.NumPoints()
	values := make(map[string][][]float64, len(s.Values))
	for name, rows := range s.Values {
		resampled := make([][]float64, len(times))
		for i, t := range times {
			row := make([]float64, n)
			if j, ok := native[t.Unix()]; ok {
				copy(row, rows[j])
			} else {
				for p := range row {
					row[p] = math.NaN()
				}
			}
			resampled[i] = row
		}
		values[name] = resampled
	}

	return &PointSeries{
		Lons:   s.Lons,
		Lats:   s.Lats,
		Times:  times,
		Values: values,
	}
}
