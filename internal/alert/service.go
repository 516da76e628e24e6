package alert

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/khazidhea/jua-warnings-api/internal/domain"
	"github.com/khazidhea/jua-warnings-api/internal/usecase"
)

// dueOffsets are the lead times at which a rule is evaluated: once two
// days out, then twice more as the warning hour approaches.
var dueOffsets = []time.Duration{48 * time.Hour, 12 * time.Hour, 6 * time.Hour}

// Service creates warning rules and sweeps them against the forecast.
type Service struct {
	store    Store
	notifier Notifier
	holder   *usecase.DatasetHolder
	logger   *slog.Logger
}

// NewService wires a rule store, a notifier and the dataset holder the
// sweeps read forecasts from.
func NewService(store Store, notifier Notifier, holder *usecase.DatasetHolder, logger *slog.Logger) *Service {
	return &Service{store: store, notifier: notifier, holder: holder, logger: logger}
}

// Create validates the rule against the current parameter registry,
// assigns it an id, truncates the warning time to the hour and stores
// it. The stored rule is returned.
func (s *Service) Create(ctx context.Context, rule Rule) (Rule, error) {
	if err := rule.Validate(); err != nil {
		return Rule{}, err
	}

	snap, err := s.holder.Current()
	if err != nil {
		return Rule{}, err
	}
	if missing := snap.Service.Registry().Unsupported([]string{rule.Parameter}); len(missing) > 0 {
		return Rule{}, &domain.UnsupportedParamsError{Names: missing}
	}

	rule.ID = uuid.NewString()
	rule.WarningAt = rule.WarningAt.UTC().Truncate(time.Hour)
	rule.Triggered = nil
	rule.Value = nil
	rule.CheckedAt = nil

	if err := s.store.Create(ctx, rule); err != nil {
		return Rule{}, fmt.Errorf("failed to store rule: %w", err)
	}
	return rule, nil
}

// List returns the rules owned by a user.
func (s *Service) List(ctx context.Context, userID string) ([]Rule, error) {
	return s.store.List(ctx, userID)
}

// Delete removes one of the user's rules.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	return s.store.Delete(ctx, userID, id)
}

// Sweep evaluates every rule whose warning hour sits at one of the due
// offsets from now. All due rules share a single forecast extraction
// over the deduplicated coordinates and parameters; each rule is then
// matched to its nearest grid point at its warning hour.
func (s *Service) Sweep(ctx context.Context, now time.Time) error {
	snap, err := s.holder.Current()
	if err != nil {
		return err
	}

	hour := now.UTC().Truncate(time.Hour)
	due := make([]time.Time, len(dueOffsets))
	for i, off := range dueOffsets {
		due[i] = hour.Add(off)
	}

	rules, err := s.store.DueAt(ctx, due)
	if err != nil {
		return fmt.Errorf("failed to list due rules: %w", err)
	}
	if len(rules) == 0 {
		return nil
	}

	lons, lats := dedupeCoords(rules)
	fc, err := snap.Service.ExtractPoints(usecase.PointsRequest{
		Lons:       lons,
		Lats:       lats,
		From:       snap.From,
		To:         snap.To,
		Parameters: dedupeParams(rules),
		Units:      domain.UnitsSI,
		Freq:       domain.FreqHourly,
	})
	if err != nil {
		return fmt.Errorf("failed to extract forecast: %w", err)
	}

	index := indexFeatures(fc)
	checkedAt := now.UTC()

	for _, rule := range rules {
		value, ok := index.lookup(rule.WarningAt, rule.Lon, rule.Lat, rule.Parameter)
		if !ok {
			s.logger.Warn("no forecast value for rule",
				"rule", rule.ID, "parameter", rule.Parameter, "warning_at", rule.WarningAt)
			continue
		}

		outcome := Outcome{
			Triggered: rule.Condition.Holds(rule.Threshold, value),
			Value:     value,
			CheckedAt: checkedAt,
		}
		if err := s.store.RecordOutcome(ctx, rule.ID, outcome); err != nil {
			s.logger.Error("failed to record outcome", "rule", rule.ID, "error", err)
		}
		if err := s.notifier.Notify(ctx, rule, outcome); err != nil {
			s.logger.Error("failed to notify", "rule", rule.ID, "error", err)
		}
	}
	return nil
}

func dedupeCoords(rules []Rule) (lons, lats []float64) {
	seen := make(map[[2]float64]bool, len(rules))
	for _, r := range rules {
		key := [2]float64{r.Lon, r.Lat}
		if seen[key] {
			continue
		}
		seen[key] = true
		lons = append(lons, r.Lon)
		lats = append(lats, r.Lat)
	}
	return lons, lats
}

func dedupeParams(rules []Rule) []string {
	seen := make(map[string]bool, len(rules))
	var params []string
	for _, r := range rules {
		if seen[r.Parameter] {
			continue
		}
		seen[r.Parameter] = true
		params = append(params, r.Parameter)
	}
	return params
}

// featurePoint is one rendered grid point at one timestamp.
type featurePoint struct {
	lon, lat float64
	props    map[string]any
}

type featureIndex map[int64][]featurePoint

func indexFeatures(fc *domain.FeatureCollection) featureIndex {
	index := make(featureIndex)
	for _, f := range fc.Features {
		raw, ok := f.Properties[domain.PropDatetime].(string)
		if !ok {
			continue
		}
		stamp, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			continue
		}
		key := stamp.Unix()
		index[key] = append(index[key], featurePoint{
			lon:   f.Geometry.Coordinates[0],
			lat:   f.Geometry.Coordinates[1],
			props: f.Properties,
		})
	}
	return index
}

// lookup finds the parameter value at the stamp for the grid point
// nearest the rule coordinates. Longitude is matched first, latitude
// second among the points sharing the matched longitude.
func (idx featureIndex) lookup(at time.Time, lon, lat float64, param string) (float64, bool) {
	points := idx[at.UTC().Unix()]
	if len(points) == 0 {
		return 0, false
	}

	bestLon := points[0].lon
	for _, p := range points[1:] {
		if math.Abs(p.lon-lon) < math.Abs(bestLon-lon) {
			bestLon = p.lon
		}
	}

	var best *featurePoint
	for i := range points {
		if points[i].lon != bestLon {
			continue
		}
		if best == nil || math.Abs(points[i].lat-lat) < math.Abs(best.lat-lat) {
			best = &points[i]
		}
	}
	if best == nil {
		return 0, false
	}

	value, ok := best.props[param].(float64)
	return value, ok
}
