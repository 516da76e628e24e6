package domain

import "fmt"

// Unit is a measurement unit name, using ERA5 spellings.
type Unit string

const (
	UnitMetrePerSecond   Unit = "m s**-1"
	UnitKelvin           Unit = "K"
	UnitCelsius          Unit = "degC"
	UnitKgPerSquareMetre Unit = "kg m**-2"
	UnitPascal           Unit = "Pa"
	UnitHectopascal      Unit = "hPa"
	UnitMetre            Unit = "m"
	UnitMillimetre       Unit = "mm"
	UnitDegree           Unit = "degree"
)

// UnitSystem selects which serving unit a parameter is converted to.
type UnitSystem int

const (
	UnitsDefault UnitSystem = iota
	UnitsSI
)

// ParseUnitSystem parses the units request value. Empty means DEFAULT.
func ParseUnitSystem(s string) (UnitSystem, error) {
	switch s {
	case "", "DEFAULT":
		return UnitsDefault, nil
	case "SI":
		return UnitsSI, nil
	}
	return UnitsDefault, fmt.Errorf("unknown unit system %q", s)
}

func (u UnitSystem) String() string {
	if u == UnitsSI {
		return "SI"
	}
	return "DEFAULT"
}

type conversion struct {
	scale  float64
	offset float64
}

var conversions = map[[2]Unit]conversion{
	{UnitKelvin, UnitCelsius}:     {scale: 1, offset: -273.15},
	{UnitCelsius, UnitKelvin}:     {scale: 1, offset: 273.15},
	{UnitPascal, UnitHectopascal}: {scale: 0.01},
	{UnitHectopascal, UnitPascal}: {scale: 100},
	{UnitMetre, UnitMillimetre}:   {scale: 1000},
	{UnitMillimetre, UnitMetre}:   {scale: 0.001},
}

// Convert transforms rows of values between two units. The result is a
// fresh slice unless no conversion is needed. NaN passes through.
func Convert(values [][]float64, from, to Unit) ([][]float64, error) {
	if from == to {
		return values, nil
	}

	conv, ok := conversions[[2]Unit{from, to}]
	if !ok {
		return nil, fmt.Errorf("no conversion from %s to %s", from, to)
	}

	out := make([][]float64, len(values))
	for i, row := range values {
		converted := make([]float64, len(row))
		for j, v := range row {
			converted[j] = v*conv.scale + conv.offset
		}
		out[i] = converted
	}
	return out, nil
}
