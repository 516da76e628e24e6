// Package usecase orchestrates forecast extraction over the currently
// loaded dataset.
package usecase

import (
	"fmt"
	"sort"
	"time"

	"github.com/khazidhea/jua-warnings-api/internal/domain"
	"github.com/khazidhea/jua-warnings-api/internal/grid"
)

// PointsRequest describes one forecast extraction.
type PointsRequest struct {
	// Query coordinates in the geographic [-180, 180] convention.
	Lons []float64
	Lats []float64

	// Optional caller-supplied feature ids, parallel to Lons. A nil
	// slice or nil entry means no REQUEST_ID is echoed for that point.
	FeatureIDs []any

	// Requested window, intersected with the dataset's time axis.
	From time.Time
	To   time.Time

	Parameters []string
	Units      domain.UnitSystem
	Freq       domain.Frequency
}

// Validate checks coordinate ranges and shape.
func (r *PointsRequest) Validate() error {
	if len(r.Lons) == 0 {
		return fmt.Errorf("at least one point is required")
	}
	if len(r.Lons) != len(r.Lats) {
		return fmt.Errorf("got %d longitudes and %d latitudes", len(r.Lons), len(r.Lats))
	}
	if r.FeatureIDs != nil && len(r.FeatureIDs) != len(r.Lons) {
		return fmt.Errorf("got %d feature ids for %d points", len(r.FeatureIDs), len(r.Lons))
	}

	for i := range r.Lons {
		if r.Lons[i] < -180 || r.Lons[i] > 180 {
			return fmt.Errorf("longitude must be between -180 and 180")
		}
		if r.Lats[i] < -90 || r.Lats[i] > 90 {
			return fmt.Errorf("latitude must be between -90 and 90")
		}
	}

	if len(r.Parameters) == 0 {
		return fmt.Errorf("at least one parameter is required")
	}

	return nil
}

// ForecastService extracts point forecasts from one loaded dataset.
// It is pure: every request runs against the same immutable dataset
// and registry, so a service is safe for concurrent use.
type ForecastService struct {
	ds       *grid.Dataset
	registry domain.Registry
}

// NewForecastService builds the service and the parameter registry the
// dataset's variables can serve.
func NewForecastService(ds *grid.Dataset) *ForecastService {
	return &ForecastService{
		ds:       ds,
		registry: domain.NewRegistry(ds.VarNames()),
	}
}

// Registry exposes the parameter registry built for the dataset.
func (s *ForecastService) Registry() domain.Registry {
	return s.registry
}

// Parameters returns the supported parameter descriptions for a unit
// system, keyed by short name.
func (s *ForecastService) Parameters(us domain.UnitSystem) map[string]domain.ParameterInfo {
	return s.registry.Parameters(us)
}

// TimeBounds returns the dataset's native time span.
func (s *ForecastService) TimeBounds() (time.Time, time.Time) {
	return s.ds.TimeBounds()
}

// ExtractPoints resolves the query points to grid cells, clips the
// requested window to the dataset's time axis, resamples when a
// five minute frequency is requested, derives and converts the
// requested parameters and renders the result as GeoJSON features.
// An empty window intersection yields an empty collection.
func (s *ForecastService) ExtractPoints(req PointsRequest) (*domain.FeatureCollection, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	params := uniqueSorted(req.Parameters)
	if missing := s.registry.Unsupported(params); len(missing) > 0 {
		return nil, &domain.UnsupportedParamsError{Names: missing}
	}

	gridLons := make([]float64, len(req.Lons))
	for i, lon := range req.Lons {
		gridLons[i] = domain.LonToGrid(lon)
	}

	keys := s.registry.DataKeys(params)
	series, err := s.ds.SelectNearest(gridLons, req.Lats, req.From.UTC(), req.To.UTC(), keys)
	if err != nil {
		return nil, fmt.Errorf("select points: %w", err)
	}

	// The native frequency needs no resampling and no gap filling.
	if req.Freq != domain.FreqHourly {
		series = series.Reindex(req.Freq.Step())
		steps := float64(time.Hour / req.Freq.Step())
		for _, key := range keys {
			spec, ok := s.registry.Spec(key)
			if !ok {
				continue
			}
			switch spec.Interpolation {
			case domain.InterpolateBackfillAverage:
				domain.FillBackfillAverage(series.Values[key], steps)
			default:
				domain.FillLinear(series.Times, series.Values[key])
			}
		}
	}

	for _, name := range params {
		spec, _ := s.registry.Spec(name)

		var rows [][]float64
		switch spec.Derivation {
		case domain.DeriveWindSpeed:
			rows = domain.WindSpeedSeries(series.Values[spec.DataKeys[0]], series.Values[spec.DataKeys[1]])
		case domain.DeriveWindDirection:
			rows = domain.WindDirectionSeries(series.Values[spec.DataKeys[0]], series.Values[spec.DataKeys[1]])
		default:
			rows = series.Values[spec.DataKeys[0]]
		}

		converted, err := domain.Convert(rows, spec.DataUnit, spec.Unit(req.Units))
		if err != nil {
			return nil, fmt.Errorf("convert %s: %w", name, err)
		}
		series.Values[name] = converted
	}

	return renderFeatureCollection(params, series, req.FeatureIDs), nil
}

// renderFeatureCollection lays features out point-major: every stamp of
// the first point, then the second point, and so on. Feature ids count
// from 1 in that order.
func renderFeatureCollection(params []string, series *grid.PointSeries, featureIDs []any) *domain.FeatureCollection {
	features := make([]domain.Feature, 0, series.NumPoints()*len(series.Times))

	id := 0
	for p := 0; p < series.NumPoints(); p++ {
		lon := domain.LonFromGrid(series.Lons[p])
		lat := series.Lats[p]

		for ti, stamp := range series.Times {
			id++

			props := make(map[string]any, len(params)+2)
			props[domain.PropDatetime] = stamp.UTC().Format(time.RFC3339)
			if featureIDs != nil && featureIDs[p] != nil {
				props[domain.PropRequestID] = featureIDs[p]
			}
			for _, name := range params {
				props[name] = series.Values[name][ti][p]
			}

			features = append(features, domain.Feature{
				Type: domain.TypeFeature,
				ID:   id,
				Geometry: domain.PointGeometry{
					Type:        domain.TypePoint,
					Coordinates: [2]float64{lon, lat},
				},
				Properties: props,
			})
		}
	}

	return &domain.FeatureCollection{
		Type:     domain.TypeFeatureCollection,
		Features: features,
	}
}

func uniqueSorted(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
