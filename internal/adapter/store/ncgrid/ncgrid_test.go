package ncgrid

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/fhs/go-netcdf/netcdf"
)

var testEpoch = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)

// createForecastNC writes a minimal 2x2x2 forecast file: a packed short
// VAR_2T with a fill value and a double TP.
func createForecastNC(t *testing.T, path string, base time.Time) {
	t.Helper()

	f, err := netcdf.CreateFile(path, netcdf.CLOBBER)
	if err != nil {
		t.Fatalf("create nc: %v", err)
	}
	defer f.Close()

	timeDim, _ := f.AddDim("time", 2)
	latDim, _ := f.AddDim("latitude", 2)
	lonDim, _ := f.AddDim("longitude", 2)

	vtime, _ := f.AddVar("time", netcdf.DOUBLE, []netcdf.Dim{timeDim})
	vlat, _ := f.AddVar("latitude", netcdf.DOUBLE, []netcdf.Dim{latDim})
	vlon, _ := f.AddVar("longitude", netcdf.DOUBLE, []netcdf.Dim{lonDim})
	v2t, _ := f.AddVar("VAR_2T", netcdf.SHORT, []netcdf.Dim{timeDim, latDim, lonDim})
	vtp, _ := f.AddVar("TP", netcdf.DOUBLE, []netcdf.Dim{timeDim, latDim, lonDim})

	if err := vtime.Attr("units").WriteBytes([]byte("hours since 1900-01-01 00:00:00.0")); err != nil {
		t.Fatalf("write time units: %v", err)
	}
	if err := v2t.Attr("scale_factor").WriteFloat64s([]float64{0.1}); err != nil {
		t.Fatalf("write scale_factor: %v", err)
	}
	if err := v2t.Attr("add_offset").WriteFloat64s([]float64{250.0}); err != nil {
		t.Fatalf("write add_offset: %v", err)
	}
	if err := v2t.Attr("_FillValue").WriteInt16s([]int16{-32767}); err != nil {
		t.Fatalf("write fill value: %v", err)
	}

	if err := f.EndDef(); err != nil {
		t.Fatalf("enddef: %v", err)
	}

	h0 := base.Sub(testEpoch).Hours()
	if err := vtime.WriteFloat64s([]float64{h0, h0 + 1}); err != nil {
		t.Fatalf("write time: %v", err)
	}
	if err := vlat.WriteFloat64s([]float64{50.0, 40.0}); err != nil {
		t.Fatalf("write lat: %v", err)
	}
	if err := vlon.WriteFloat64s([]float64{10.0, 20.0}); err != nil {
		t.Fatalf("write lon: %v", err)
	}
	if err := v2t.WriteInt16s([]int16{100, 200, 300, 400, 500, 600, 700, -32767}); err != nil {
		t.Fatalf("write VAR_2T: %v", err)
	}
	if err := vtp.WriteFloat64s([]float64{0.001, 0.002, 0.003, 0.004, 0.005, 0.006, 0.007, 0.008}); err != nil {
		t.Fatalf("write TP: %v", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "forecast_2026030100_000.nc")
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	createForecastNC(t, path, base)

	ds, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	names := ds.VarNames()
	if len(names) != 2 || names[0] != "TP" || names[1] != "VAR_2T" {
		t.Fatalf("VarNames = %v, want [TP VAR_2T]", names)
	}

	first, last := ds.TimeBounds()
	if !first.Equal(base) || !last.Equal(base.Add(time.Hour)) {
		t.Errorf("TimeBounds = %v, %v, want %v, %v", first, last, base, base.Add(time.Hour))
	}

	// Packed values are unpacked: 100 * 0.1 + 250 = 260.
	series, err := ds.SelectNearest([]float64{10.0}, []float64{50.0}, base, base, []string{"VAR_2T"})
	if err != nil {
		t.Fatalf("SelectNearest failed: %v", err)
	}
	if got := series.Values["VAR_2T"][0][0]; math.Abs(got-260.0) > 1e-9 {
		t.Errorf("VAR_2T = %v, want 260", got)
	}

	// The fill value at the last cell becomes NaN.
	series, err = ds.SelectNearest([]float64{20.0}, []float64{40.0}, base.Add(time.Hour), base.Add(time.Hour), []string{"VAR_2T"})
	if err != nil {
		t.Fatalf("SelectNearest failed: %v", err)
	}
	if got := series.Values["VAR_2T"][0][0]; !math.IsNaN(got) {
		t.Errorf("fill value = %v, want NaN", got)
	}

	// Unpacked doubles come through untouched.
	series, err = ds.SelectNearest([]float64{20.0}, []float64{50.0}, base, base, []string{"TP"})
	if err != nil {
		t.Fatalf("SelectNearest failed: %v", err)
	}
	if got := series.Values["TP"][0][0]; math.Abs(got-0.002) > 1e-9 {
		t.Errorf("TP = %v, want 0.002", got)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.nc")); err == nil {
		t.Error("expected error for missing file, got nil")
	}
}

func TestLoad_NoForecastVariables(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.nc")

	f, err := netcdf.CreateFile(path, netcdf.CLOBBER)
	if err != nil {
		t.Fatalf("create nc: %v", err)
	}

	timeDim, _ := f.AddDim("time", 1)
	latDim, _ := f.AddDim("latitude", 1)
	lonDim, _ := f.AddDim("longitude", 1)
	vtime, _ := f.AddVar("time", netcdf.DOUBLE, []netcdf.Dim{timeDim})
	vlat, _ := f.AddVar("latitude", netcdf.DOUBLE, []netcdf.Dim{latDim})
	vlon, _ := f.AddVar("longitude", netcdf.DOUBLE, []netcdf.Dim{lonDim})

	if err := f.EndDef(); err != nil {
		t.Fatalf("enddef: %v", err)
	}
	_ = vtime.WriteFloat64s([]float64{1104516.0})
	_ = vlat.WriteFloat64s([]float64{0.0})
	_ = vlon.WriteFloat64s([]float64{0.0})
	f.Close()

	if _, err := Load(path); err == nil {
		t.Error("expected error for dataset without forecast variables, got nil")
	}
}

func TestParseTimeUnits(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		unit    time.Duration
		epoch   time.Time
		wantErr bool
	}{
		{"era5 hours", "hours since 1900-01-01 00:00:00.0", time.Hour, testEpoch, false},
		{"bare date", "hours since 1900-01-01", time.Hour, testEpoch, false},
		{"seconds epoch", "seconds since 1970-01-01 00:00:00", time.Second, time.Unix(0, 0).UTC(), false},
		{"unknown unit", "fortnights since 1900-01-01", 0, time.Time{}, true},
		{"garbage", "not a time unit", 0, time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unit, epoch, err := parseTimeUnits(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseTimeUnits(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if unit != tt.unit {
				t.Errorf("unit = %v, want %v", unit, tt.unit)
			}
			if !epoch.Equal(tt.epoch) {
				t.Errorf("epoch = %v, want %v", epoch, tt.epoch)
			}
		})
	}
}
