// Command dataset-info loads a forecast NetCDF file and reports its
// axes, variables and the parameters the API would serve from it.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"strings"
	"time"

	"github.com/khazidhea/jua-warnings-api/internal/adapter/store/ncgrid"
	"github.com/khazidhea/jua-warnings-api/internal/domain"
	"github.com/khazidhea/jua-warnings-api/internal/grid"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: dataset-info <forecast.nc>")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	path := flag.Arg(0)

	ds, err := ncgrid.Load(path)
	if err != nil {
		log.Fatalf("Failed to load dataset: %v", err)
	}

	printInfo(path, ds)
}

func printInfo(path string, ds *grid.Dataset) {
	lons, lats, times := ds.Lons(), ds.Lats(), ds.Times()
	from, to := ds.TimeBounds()

	fmt.Printf("Dataset:   %s\n", path)
	fmt.Printf("Longitude: %d points, %.2f .. %.2f\n", len(lons), lons[0], lons[len(lons)-1])
	fmt.Printf("Latitude:  %d points, %.2f .. %.2f\n", len(lats), lats[0], lats[len(lats)-1])
	fmt.Printf("Time:      %d steps, %s .. %s\n",
		len(times), from.Format(time.RFC3339), to.Format(time.RFC3339))

	fmt.Println()
	fmt.Println("Variables:")
	for _, name := range ds.VarNames() {
		data, _ := ds.Var(name)
		fmt.Printf("  %-8s %s\n", name, summarize(data))
	}

	registry := domain.NewRegistry(ds.VarNames())
	fmt.Println()
	fmt.Printf("Servable parameters: %s\n", strings.Join(registry.Names(), ", "))
}

// summarize reports value range, mean and missing count of a field.
func summarize(data []float64) string {
	var (
		minV    = math.Inf(1)
		maxV    = math.Inf(-1)
		sum     float64
		valid   int
		missing int
	)
	for _, v := range data {
		if math.IsNaN(v) {
			missing++
			continue
		}
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
		sum += v
		valid++
	}

	if valid == 0 {
		return fmt.Sprintf("%d values, all missing", len(data))
	}
	return fmt.Sprintf("min %.4g  max %.4g  mean %.4g  (%d values, %d missing)",
		minV, maxV, sum/float64(valid), len(data), missing)
}
