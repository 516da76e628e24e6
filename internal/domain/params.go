package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Derivation selects how a parameter's values are produced from the
// extracted dataset variables.
type Derivation int

const (
	DeriveLookup Derivation = iota
	DeriveWindSpeed
	DeriveWindDirection
)

// Interpolation selects how gaps introduced by resampling are filled.
type Interpolation int

const (
	InterpolateLinear Interpolation = iota
	InterpolateBackfillAverage
)

// Frequency is the time step of the returned series.
type Frequency int

const (
	FreqHourly Frequency = iota
	FreqFiveMinute
)

// ParseFrequency parses the freq request value. Empty means hourly.
func ParseFrequency(s string) (Frequency, error) {
	switch s {
	case "", "1H":
		return FreqHourly, nil
	case "5min":
		return FreqFiveMinute, nil
	}
	return FreqHourly, fmt.Errorf("unknown frequency %q", s)
}

// Step returns the sample spacing of the frequency.
func (f Frequency) Step() time.Duration {
	if f == FreqFiveMinute {
		return 5 * time.Minute
	}
	return time.Hour
}

func (f Frequency) String() string {
	if f == FreqFiveMinute {
		return "5min"
	}
	return "1H"
}

// ParameterSpec describes one forecast parameter.
type ParameterSpec struct {
	ShortName     string
	LongName      string
	DataUnit      Unit     // unit the dataset stores values in
	SIUnit        Unit     // unit served for the SI system
	DefaultUnit   Unit     // unit served for the DEFAULT system
	DataKeys      []string // dataset variables the parameter needs
	Interpolation Interpolation
	Derivation    Derivation
}

// Unit returns the serving unit for the given unit system.
func (s ParameterSpec) Unit(us UnitSystem) Unit {
	if us == UnitsSI {
		return s.SIUnit
	}
	return s.DefaultUnit
}

// Catalog lists every parameter the engine understands.
var Catalog = []ParameterSpec{
	{
		ShortName:     "VAR_10U",
		LongName:      "10 metre U wind component",
		DataUnit:      UnitMetrePerSecond,
		SIUnit:        UnitMetrePerSecond,
		DefaultUnit:   UnitMetrePerSecond,
		DataKeys:      []string{"VAR_10U"},
		Interpolation: InterpolateLinear,
		Derivation:    DeriveLookup,
	},
	{
		ShortName:     "VAR_10V",
		LongName:      "10 metre V wind component",
		DataUnit:      UnitMetrePerSecond,
		SIUnit:        UnitMetrePerSecond,
		DefaultUnit:   UnitMetrePerSecond,
		DataKeys:      []string{"VAR_10V"},
		Interpolation: InterpolateLinear,
		Derivation:    DeriveLookup,
	},
	{
		ShortName:     "VAR_2T",
		LongName:      "2 metre temperature",
		DataUnit:      UnitKelvin,
		SIUnit:        UnitKelvin,
		DefaultUnit:   UnitCelsius,
		DataKeys:      []string{"VAR_2T"},
		Interpolation: InterpolateLinear,
		Derivation:    DeriveLookup,
	},
	{
		ShortName:     "TCWV",
		LongName:      "Total column vertically-integrated water vapour",
		DataUnit:      UnitKgPerSquareMetre,
		SIUnit:        UnitKgPerSquareMetre,
		DefaultUnit:   UnitKgPerSquareMetre,
		DataKeys:      []string{"TCWV"},
		Interpolation: InterpolateLinear,
		Derivation:    DeriveLookup,
	},
	{
		ShortName:     "SP",
		LongName:      "Surface pressure",
		DataUnit:      UnitPascal,
		SIUnit:        UnitPascal,
		DefaultUnit:   UnitHectopascal,
		DataKeys:      []string{"SP"},
		Interpolation: InterpolateLinear,
		Derivation:    DeriveLookup,
	},
	{
		ShortName:     "MSL",
		LongName:      "Mean sea level pressure",
		DataUnit:      UnitPascal,
		SIUnit:        UnitPascal,
		DefaultUnit:   UnitHectopascal,
		DataKeys:      []string{"MSL"},
		Interpolation: InterpolateLinear,
		Derivation:    DeriveLookup,
	},
	{
		ShortName:     "TP",
		LongName:      "Total precipitation",
		DataUnit:      UnitMetre,
		SIUnit:        UnitMetre,
		DefaultUnit:   UnitMillimetre,
		DataKeys:      []string{"TP"},
		Interpolation: InterpolateBackfillAverage,
		Derivation:    DeriveLookup,
	},
	{
		ShortName:     "10WS",
		LongName:      "10 metre wind speed",
		DataUnit:      UnitMetrePerSecond,
		SIUnit:        UnitMetrePerSecond,
		DefaultUnit:   UnitMetrePerSecond,
		DataKeys:      []string{"VAR_10U", "VAR_10V"},
		Interpolation: InterpolateLinear,
		Derivation:    DeriveWindSpeed,
	},
	{
		ShortName:     "10WD",
		LongName:      "10 metre wind direction",
		DataUnit:      UnitDegree,
		SIUnit:        UnitDegree,
		DefaultUnit:   UnitDegree,
		DataKeys:      []string{"VAR_10U", "VAR_10V"},
		Interpolation: InterpolateLinear,
		Derivation:    DeriveWindDirection,
	},
}

// ParameterInfo is the serialized description of one parameter.
type ParameterInfo struct {
	ShortName string `json:"short_name"`
	LongName  string `json:"long_name"`
	Units     string `json:"units"`
}

// Registry is the subset of the catalog a loaded dataset can serve.
type Registry struct {
	specs map[string]ParameterSpec
	names []string
}

// NewRegistry filters the catalog down to parameters whose dataset
// dependencies are all present in available.
func NewRegistry(available []string) Registry {
	have := make(map[string]bool, len(available))
	for _, name := range available {
		have[name] = true
	}

	specs := make(map[string]ParameterSpec)
	var names []string
	for _, spec := range Catalog {
		supported := true
		for _, key := range spec.DataKeys {
			if !have[key] {
				supported = false
				break
			}
		}
		if supported {
			specs[spec.ShortName] = spec
			names = append(names, spec.ShortName)
		}
	}
	sort.Strings(names)

	return Registry{specs: specs, names: names}
}

// Spec returns the parameter spec for a short name.
func (r Registry) Spec(name string) (ParameterSpec, bool) {
	spec, ok := r.specs[name]
	return spec, ok
}

// Names returns the supported short names in sorted order.
func (r Registry) Names() []string {
	return r.names
}

// Unsupported returns the requested names the registry cannot serve,
// sorted alphabetically.
func (r Registry) Unsupported(requested []string) []string {
	var missing []string
	for _, name := range requested {
		if _, ok := r.specs[name]; !ok {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}

// DataKeys returns the sorted union of dataset variables the requested
// parameters depend on. Unknown names are ignored.
func (r Registry) DataKeys(requested []string) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, name := range requested {
		spec, ok := r.specs[name]
		if !ok {
			continue
		}
		for _, key := range spec.DataKeys {
			if !seen[key] {
				seen[key] = true
				keys = append(keys, key)
			}
		}
	}
	sort.Strings(keys)
	return keys
}

// Parameters returns the serialized catalog subset for the unit system,
// keyed by short name.
func (r Registry) Parameters(us UnitSystem) map[string]ParameterInfo {
	out := make(map[string]ParameterInfo, len(r.specs))
	for name, spec := range r.specs {
		out[name] = ParameterInfo{
			ShortName: spec.ShortName,
			LongName:  spec.LongName,
			Units:     string(spec.Unit(us)),
		}
	}
	return out
}

// UnsupportedParamsError reports requested parameters the registry
// cannot serve. Its message is part of the HTTP contract.
type UnsupportedParamsError struct {
	Names []string // sorted
}

func (e *UnsupportedParamsError) Error() string {
	return fmt.Sprintf("Parameters not supported: %s", strings.Join(e.Names, ", "))
}
