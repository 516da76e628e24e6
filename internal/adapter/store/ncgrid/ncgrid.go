// Package ncgrid loads forecast NetCDF files into grid datasets.
package ncgrid

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/fhs/go-netcdf/netcdf"

	"github.com/khazidhea/jua-warnings-api/internal/domain"
	"github.com/khazidhea/jua-warnings-api/internal/grid"
)

// Candidate axis variable names, tried in order.
var (
	lonNames  = []string{"longitude", "lon", "x"}
	latNames  = []string{"latitude", "lat", "y"}
	timeNames = []string{"time", "valid_time"}
)

// Load reads a forecast NetCDF file into a grid dataset. Every known
// parameter variable laid out (time, latitude, longitude) is loaded
// with scale_factor and add_offset applied; fill values become NaN.
func Load(path string) (*grid.Dataset, error) {
	nc, err := netcdf.OpenFile(path, netcdf.NOWRITE)
	if err != nil {
		return nil, fmt.Errorf("failed to open NetCDF file: %w", err)
	}
	defer func() { _ = nc.Close() }()

	lonVar, err := findVar(nc, lonNames)
	if err != nil {
		return nil, err
	}
	lons, err := readAxis(lonVar)
	if err != nil {
		return nil, fmt.Errorf("failed to read longitude axis: %w", err)
	}

	latVar, err := findVar(nc, latNames)
	if err != nil {
		return nil, err
	}
	lats, err := readAxis(latVar)
	if err != nil {
		return nil, fmt.Errorf("failed to read latitude axis: %w", err)
	}

	timeVar, err := findVar(nc, timeNames)
	if err != nil {
		return nil, err
	}
	rawTimes, err := readAxis(timeVar)
	if err != nil {
		return nil, fmt.Errorf("failed to read time axis: %w", err)
	}
	times, err := decodeTimes(timeVar, rawTimes)
	if err != nil {
		return nil, err
	}

	nt, ny, nx := len(times), len(lats), len(lons)
	want := nt * ny * nx

	vars := make(map[string][]float64)
	for _, name := range candidateVars() {
		v, err := nc.Var(name)
		if err != nil {
			continue
		}

		if err := checkShape(v, nt, ny, nx); err != nil {
			return nil, fmt.Errorf("variable %s: %w", name, err)
		}

		data, err := readField(v, want)
		if err != nil {
			return nil, fmt.Errorf("failed to read variable %s: %w", name, err)
		}
		vars[name] = data
	}

	if len(vars) == 0 {
		return nil, fmt.Errorf("no forecast variables found in %s", path)
	}

	return grid.NewDataset(lons, lats, times, vars)
}

// candidateVars returns the dataset variable names any catalog
// parameter can depend on.
func candidateVars() []string {
	seen := make(map[string]bool)
	var names []string
	for _, spec := range domain.Catalog {
		for _, key := range spec.DataKeys {
			if !seen[key] {
				seen[key] = true
				names = append(names, key)
			}
		}
	}
	return names
}

// findVar returns the first variable present among the candidate names.
func findVar(nc netcdf.Dataset, names []string) (netcdf.Var, error) {
	for _, name := range names {
		if v, err := nc.Var(name); err == nil {
			return v, nil
		}
	}
	return netcdf.Var{}, fmt.Errorf("no variable found among %v", names)
}

// checkShape verifies a variable is laid out (time, latitude, longitude).
func checkShape(v netcdf.Var, nt, ny, nx int) error {
	dims, err := v.Dims()
	if err != nil {
		return fmt.Errorf("failed to get dimensions: %w", err)
	}
	if len(dims) != 3 {
		return fmt.Errorf("expected 3D variable, got %dD", len(dims))
	}

	for i, wantLen := range []int{nt, ny, nx} {
		n, err := dims[i].Len()
		if err != nil {
			return err
		}
		if int(n) != wantLen {
			return fmt.Errorf("dimension %d has length %d, expected %d", i, n, wantLen)
		}
	}
	return nil
}

// readAxis reads a 1D coordinate variable as float64.
func readAxis(v netcdf.Var) ([]float64, error) {
	dims, err := v.Dims()
	if err != nil {
		return nil, fmt.Errorf("failed to get dimensions: %w", err)
	}
	if len(dims) != 1 {
		return nil, fmt.Errorf("expected 1D variable, got %dD", len(dims))
	}

	length, err := dims[0].Len()
	if err != nil {
		return nil, err
	}

	return readFloat64s(v, int(length))
}

// readField reads a full data variable and applies its packing
// attributes. Fill values are compared in packed space and become NaN.
func readField(v netcdf.Var, length int) ([]float64, error) {
	data, err := readFloat64s(v, length)
	if err != nil {
		return nil, err
	}

	fill, hasFill := fillValue(v)
	scale, hasScale := floatAttr(v, "scale_factor")
	offset, hasOffset := floatAttr(v, "add_offset")

	for i, raw := range data {
		if hasFill && raw == fill {
			data[i] = math.NaN()
			continue
		}
		if hasScale {
			data[i] = raw * scale
		}
		if hasOffset {
			data[i] += offset
		}
	}

	return data, nil
}

// readFloat64s reads a variable of any supported type as flat float64s.
func readFloat64s(v netcdf.Var, length int) ([]float64, error) {
	varType, err := v.Type()
	if err != nil {
		return nil, fmt.Errorf("failed to get variable type: %w", err)
	}

	switch varType {
	case netcdf.DOUBLE:
		data := make([]float64, length)
		if err := v.ReadFloat64s(data); err != nil {
			return nil, fmt.Errorf("failed to read float64: %w", err)
		}
		return data, nil
	case netcdf.FLOAT:
		tmp := make([]float32, length)
		if err := v.ReadFloat32s(tmp); err != nil {
			return nil, fmt.Errorf("failed to read float32: %w", err)
		}
		out := make([]float64, length)
		for i, val := range tmp {
			out[i] = float64(val)
		}
		return out, nil
	case netcdf.INT:
		tmp := make([]int32, length)
		if err := v.ReadInt32s(tmp); err != nil {
			return nil, fmt.Errorf("failed to read int32: %w", err)
		}
		out := make([]float64, length)
		for i, val := range tmp {
			out[i] = float64(val)
		}
		return out, nil
	case netcdf.SHORT:
		tmp := make([]int16, length)
		if err := v.ReadInt16s(tmp); err != nil {
			return nil, fmt.Errorf("failed to read int16: %w", err)
		}
		out := make([]float64, length)
		for i, val := range tmp {
			out[i] = float64(val)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported variable type %v", varType)
	}
}

// fillValue returns the _FillValue or missing_value attribute if present.
func fillValue(v netcdf.Var) (float64, bool) {
	for _, name := range []string{"_FillValue", "missing_value"} {
		if val, ok := floatAttr(v, name); ok {
			return val, true
		}
	}
	return 0, false
}

// floatAttr reads a numeric attribute as float64.
func floatAttr(v netcdf.Var, name string) (float64, bool) {
	a := v.Attr(name)
	n, err := a.Len()
	if err != nil || n == 0 {
		return 0, false
	}

	buf64 := make([]float64, 1)
	if err := a.ReadFloat64s(buf64); err == nil {
		return buf64[0], true
	}
	buf32 := make([]float32, 1)
	if err := a.ReadFloat32s(buf32); err == nil {
		return float64(buf32[0]), true
	}
	bufi := make([]int32, 1)
	if err := a.ReadInt32s(bufi); err == nil {
		return float64(bufi[0]), true
	}
	bufs := make([]int16, 1)
	if err := a.ReadInt16s(bufs); err == nil {
		return float64(bufs[0]), true
	}

	return 0, false
}

// textAttr reads a character attribute as a string.
func textAttr(v netcdf.Var, name string) (string, bool) {
	a := v.Attr(name)
	n, err := a.Len()
	if err != nil || n == 0 {
		return "", false
	}

	buf := make([]byte, n)
	if err := a.ReadBytes(buf); err != nil {
		return "", false
	}
	return strings.TrimRight(string(buf), "\x00"), true
}

// epoch1900 is the reference instant of the "hours since 1900-01-01"
// convention, as unix seconds.
const epoch1900 = -2208988800

// decodeTimes converts raw time axis values into UTC instants using the
// variable's units attribute. Files without a parseable units attribute
// fall back to hours since 1900-01-01.
func decodeTimes(v netcdf.Var, raw []float64) ([]time.Time, error) {
	unit := time.Hour
	epoch := time.Unix(epoch1900, 0).UTC()

	if units, ok := textAttr(v, "units"); ok {
		parsedUnit, parsedEpoch, err := parseTimeUnits(units)
		if err != nil {
			return nil, err
		}
		unit, epoch = parsedUnit, parsedEpoch
	}

	times := make([]time.Time, len(raw))
	for i, val := range raw {
		times[i] = epoch.Add(time.Duration(val * float64(unit)))
	}
	return times, nil
}

// parseTimeUnits parses CF style time units such as
// "hours since 1900-01-01 00:00:00.0".
func parseTimeUnits(s string) (time.Duration, time.Time, error) {
	fields := strings.SplitN(strings.TrimSpace(s), " since ", 2)
	if len(fields) != 2 {
		return 0, time.Time{}, fmt.Errorf("unsupported time units %q", s)
	}

	var unit time.Duration
	switch strings.ToLower(strings.TrimSpace(fields[0])) {
	case "hours":
		unit = time.Hour
	case "minutes":
		unit = time.Minute
	case "seconds":
		unit = time.Second
	default:
		return 0, time.Time{}, fmt.Errorf("unsupported time unit %q", fields[0])
	}

	stamp := strings.TrimSpace(fields[1])
	for _, layout := range []string{"2006-01-02 15:04:05.0", "2006-01-02 15:04:05", "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, stamp); err == nil {
			return unit, t.UTC(), nil
		}
	}
	return 0, time.Time{}, fmt.Errorf("unsupported time epoch %q", stamp)
}
