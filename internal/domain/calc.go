package domain

import (
	"math"
	"time"
)

// LonToGrid maps a [-180, 180] longitude onto the [0, 360) axis
// convention used by the stored fields.
func LonToGrid(lon float64) float64 {
	if lon < 0 {
		return lon + 360
	}
	return lon
}

// LonFromGrid maps a [0, 360) axis longitude back to [-180, 180].
// The grid value 180.0 stays 180.0.
func LonFromGrid(lon float64) float64 {
	if lon > 180 {
		return lon - 360
	}
	return lon
}

// WindSpeed returns the magnitude of the (u, v) wind vector.
func WindSpeed(u, v float64) float64 {
	return math.Sqrt(u*u + v*v)
}

// WindDirection returns the direction the wind blows from, in degrees
// clockwise from north. Results lie in (0, 360] with a north wind
// reported as 360. Calm wind (u and v both zero) is 0.
func WindDirection(u, v float64) float64 {
	if u == 0 && v == 0 {
		return 0
	}

	dir := 90 - math.Atan2(-v, -u)*180/math.Pi
	if dir <= 0 {
		dir += 360
	}
	return dir
}

// WindSpeedSeries computes wind speed rows from u and v component rows.
func WindSpeedSeries(u, v [][]float64) [][]float64 {
	out := make([][]float64, len(u))
	for i := range u {
		row := make([]float64, len(u[i]))
		for p := range row {
			row[p] = WindSpeed(u[i][p], v[i][p])
		}
		out[i] = row
	}
	return out
}

// WindDirectionSeries computes wind direction rows from u and v
// component rows.
func WindDirectionSeries(u, v [][]float64) [][]float64 {
	out := make([][]float64, len(u))
	for i := range u {
		row := make([]float64, len(u[i]))
		for p := range row {
			row[p] = WindDirection(u[i][p], v[i][p])
		}
		out[i] = row
	}
	return out
}

// FillLinear replaces interior NaN runs in place with values
// interpolated linearly in time between the surrounding samples.
// Leading and trailing gaps are left as NaN.
func FillLinear(times []time.Time, rows [][]float64) {
	if len(rows) == 0 {
		return
	}

	for p := 0; p < len(rows[0]); p++ {
		prev := -1
		for i := 0; i < len(rows); i++ {
			if math.IsNaN(rows[i][p]) {
				continue
			}
			if prev >= 0 && i-prev > 1 {
				t0 := times[prev].Unix()
				span := float64(times[i].Unix() - t0)
				v0, v1 := rows[prev][p], rows[i][p]
				for j := prev + 1; j < i; j++ {
					frac := float64(times[j].Unix()-t0) / span
					rows[j][p] = v0 + (v1-v0)*frac
				}
			}
			prev = i
		}
	}
}

// FillBackfillAverage spreads accumulated samples over the gap before
// them: every valid value is divided by steps, then each gap takes the
// next valid value. Trailing gaps stay NaN. Rows are changed in place.
func FillBackfillAverage(rows [][]float64, steps float64) {
	if len(rows) == 0 {
		return
	}

	for p := 0; p < len(rows[0]); p++ {
		for i := range rows {
			if !math.IsNaN(rows[i][p]) {
				rows[i][p] /= steps
			}
		}

		next := math.NaN()
		for i := len(rows) - 1; i >= 0; i-- {
			if math.IsNaN(rows[i][p]) {
				rows[i][p] = next
			} else {
				next = rows[i][p]
			}
		}
	}
}
