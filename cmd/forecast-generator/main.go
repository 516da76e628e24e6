// Package main generates a synthetic forecast NetCDF file with the
// production schema, for development and testing.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/fhs/go-netcdf/netcdf"
)

// RegionalGrid defines the geographic bounds and resolution.
type RegionalGrid struct {
	LatMin     float64
	LatMax     float64
	LonMin     float64
	LonMax     float64
	Resolution float64 // degrees
}

// epoch1900 anchors the CF time axis.
var epoch1900 = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)

const timeUnits = "hours since 1900-01-01 00:00:00.0"

func main() {
	// Command line flags.
	outDir := flag.String("out", "./data", "Output directory for the forecast file")
	startStr := flag.String("start", "", "First forecast hour, RFC3339 (default: current hour)")
	hours := flag.Int("hours", 49, "Number of hourly time steps")
	latMin := flag.Float64("lat-min", 35.0, "Minimum latitude")
	latMax := flag.Float64("lat-max", 60.0, "Maximum latitude")
	lonMin := flag.Float64("lon-min", 0.0, "Minimum longitude ([0,360) convention)")
	lonMax := flag.Float64("lon-max", 30.0, "Maximum longitude ([0,360) convention)")
	resolution := flag.Float64("resolution", 0.25, "Grid resolution in degrees")

	flag.Parse()

	start := time.Now().UTC().Truncate(time.Hour)
	if *startStr != "" {
		parsed, err := time.Parse(time.RFC3339, *startStr)
		if err != nil {
			log.Fatalf("Invalid start time: %v", err)
		}
		start = parsed.UTC().Truncate(time.Hour)
	}
	if *hours < 1 {
		log.Fatalf("Need at least one time step, got %d", *hours)
	}

	grid := RegionalGrid{
		LatMin:     *latMin,
		LatMax:     *latMax,
		LonMin:     *lonMin,
		LonMax:     *lonMax,
		Resolution: *resolution,
	}
	if grid.LonMin < 0 || grid.LonMax >= 360 || grid.LonMin >= grid.LonMax {
		log.Fatalf("Longitude bounds must satisfy 0 <= lon-min < lon-max < 360")
	}
	if grid.LatMin >= grid.LatMax {
		log.Fatalf("Latitude bounds must satisfy lat-min < lat-max")
	}

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	path := filepath.Join(*outDir, fmt.Sprintf("forecast_%s_000.nc", start.Format("2006010215")))
	nLat, nLon, err := generateForecast(path, grid, start, *hours)
	if err != nil {
		log.Fatalf("Failed to generate forecast: %v", err)
	}

	log.Printf("✓ Generated %s", path)
	log.Printf("Grid: %.2f°-%.2f°N, %.2f°-%.2f°E, resolution: %.2f°",
		grid.LatMin, grid.LatMax, grid.LonMin, grid.LonMax, grid.Resolution)
	log.Printf("Grid size: %d × %d points, %d hourly steps from %s",
		nLat, nLon, *hours, start.Format(time.RFC3339))

	bytes := *hours * nLat * nLon * 8 * len(forecastFields)
	log.Printf("Total size: ~%.1f MB (%d variables)", float64(bytes)/1024/1024, len(forecastFields))
}

// field computes one synthetic variable value. Hour counts from the
// start of the forecast.
type field struct {
	name  string
	units string
	value func(lat, lon float64, hour int) float64
}

// forecastFields are the seven raw variables of the production schema,
// with smooth spatial and diurnal variation so interpolation and unit
// conversion have something to chew on.
var forecastFields = []field{
	{"VAR_2T", "K", func(lat, lon float64, hour int) float64 {
		diurnal := 5 * math.Sin(2*math.Pi*float64(hour%24)/24)
		return 288 - 0.4*(lat-45) + 2*math.Sin(lon*math.Pi/30) + diurnal
	}},
	{"VAR_10U", "m s**-1", func(lat, lon float64, hour int) float64 {
		return 4*math.Sin(lat*math.Pi/25) + 0.5*math.Cos(float64(hour)*math.Pi/12)
	}},
	{"VAR_10V", "m s**-1", func(lat, lon float64, hour int) float64 {
		return 3*math.Cos(lon*math.Pi/40) + 0.5*math.Sin(float64(hour)*math.Pi/12)
	}},
	{"SP", "Pa", func(lat, lon float64, hour int) float64 {
		return 101325 - 600*math.Sin(lat*math.Pi/50) + 150*math.Cos(lon*math.Pi/35)
	}},
	{"MSL", "Pa", func(lat, lon float64, hour int) float64 {
		return 101325 + 400*math.Cos((lat+lon)*math.Pi/45)
	}},
	{"TCWV", "kg m**-2", func(lat, lon float64, hour int) float64 {
		return 18 + 12*math.Abs(math.Sin(lat*math.Pi/40+lon*math.Pi/60))
	}},
	{"TP", "m", func(lat, lon float64, hour int) float64 {
		burst := math.Sin(float64(hour)*math.Pi/8) * math.Sin(lat*math.Pi/20)
		if burst < 0 {
			return 0
		}
		return 0.0008 * burst
	}},
}

// generateForecast writes the NetCDF file and returns the grid shape.
func generateForecast(path string, grid RegionalGrid, start time.Time, hours int) (int, int, error) {
	nLat := int((grid.LatMax-grid.LatMin)/grid.Resolution) + 1
	nLon := int((grid.LonMax-grid.LonMin)/grid.Resolution) + 1

	// Latitudes run north to south, matching the production grids.
	lat := make([]float64, nLat)
	for i := range lat {
		lat[i] = grid.LatMax - float64(i)*grid.Resolution
	}
	lon := make([]float64, nLon)
	for i := range lon {
		lon[i] = grid.LonMin + float64(i)*grid.Resolution
	}
	times := make([]float64, hours)
	for i := range times {
		times[i] = start.Add(time.Duration(i)*time.Hour).Sub(epoch1900).Hours()
	}

	ds, err := netcdf.CreateFile(path, netcdf.CLOBBER|netcdf.NETCDF4)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer ds.Close()

	timeDim, err := ds.AddDim("time", uint64(hours))
	if err != nil {
		return 0, 0, err
	}
	latDim, err := ds.AddDim("latitude", uint64(nLat))
	if err != nil {
		return 0, 0, err
	}
	lonDim, err := ds.AddDim("longitude", uint64(nLon))
	if err != nil {
		return 0, 0, err
	}

	timeVar, err := ds.AddVar("time", netcdf.DOUBLE, []netcdf.Dim{timeDim})
	if err != nil {
		return 0, 0, err
	}
	if err := timeVar.Attr("units").WriteBytes([]byte(timeUnits)); err != nil {
		return 0, 0, err
	}
	if err := timeVar.WriteFloat64s(times); err != nil {
		return 0, 0, err
	}

	latVar, err := ds.AddVar("latitude", netcdf.DOUBLE, []netcdf.Dim{latDim})
	if err != nil {
		return 0, 0, err
	}
	if err := latVar.WriteFloat64s(lat); err != nil {
		return 0, 0, err
	}

	lonVar, err := ds.AddVar("longitude", netcdf.DOUBLE, []netcdf.Dim{lonDim})
	if err != nil {
		return 0, 0, err
	}
	if err := lonVar.WriteFloat64s(lon); err != nil {
		return 0, 0, err
	}

	dims := []netcdf.Dim{timeDim, latDim, lonDim}
	for _, f := range forecastFields {
		data := make([]float64, hours*nLat*nLon)
		for t := 0; t < hours; t++ {
			for i := 0; i < nLat; i++ {
				for j := 0; j < nLon; j++ {
					data[(t*nLat+i)*nLon+j] = f.value(lat[i], lon[j], t)
				}
			}
		}

		v, err := ds.AddVar(f.name, netcdf.DOUBLE, dims)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to add %s: %w", f.name, err)
		}
		if err := v.Attr("units").WriteBytes([]byte(f.units)); err != nil {
			return 0, 0, err
		}
		if err := v.WriteFloat64s(data); err != nil {
			return 0, 0, fmt.Errorf("failed to write %s: %w", f.name, err)
		}
	}

	return nLat, nLon, nil
}
