package domain

import (
	"math"
	"testing"
)

func TestConvert(t *testing.T) {
	tests := []struct {
		name string
		from Unit
		to   Unit
		in   float64
		want float64
	}{
		{"kelvin to celsius", UnitKelvin, UnitCelsius, 273.15, 0.0},
		{"kelvin to celsius warm", UnitKelvin, UnitCelsius, 293.4, 20.25},
		{"pascal to hectopascal", UnitPascal, UnitHectopascal, 101325.0, 1013.25},
		{"metre to millimetre", UnitMetre, UnitMillimetre, 0.0042, 4.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Convert([][]float64{{tt.in}}, tt.from, tt.to)
			if err != nil {
				t.Fatalf("Convert failed: %v", err)
			}
			if math.Abs(out[0][0]-tt.want) > tolerance {
				t.Errorf("Convert(%v) = %v, want %v", tt.in, out[0][0], tt.want)
			}
		})
	}
}

func TestConvert_RoundTrip(t *testing.T) {
	pairs := []struct {
		name string
		from Unit
		to   Unit
		in   float64
	}{
		{"temperature", UnitKelvin, UnitCelsius, 287.654321},
		{"pressure", UnitPascal, UnitHectopascal, 99876.5},
		{"precipitation", UnitMetre, UnitMillimetre, 0.0123456},
	}

	for _, tt := range pairs {
		t.Run(tt.name, func(t *testing.T) {
			there, err := Convert([][]float64{{tt.in}}, tt.from, tt.to)
			if err != nil {
				t.Fatalf("forward conversion failed: %v", err)
			}
			back, err := Convert(there, tt.to, tt.from)
			if err != nil {
				t.Fatalf("reverse conversion failed: %v", err)
			}

			rel := math.Abs(back[0][0]-tt.in) / math.Abs(tt.in)
			if rel > 1e-9 {
				t.Errorf("round trip %v -> %v -> %v, relative error %v", tt.in, there[0][0], back[0][0], rel)
			}
		})
	}
}

func TestConvert_Identity(t *testing.T) {
	in := [][]float64{{1.0, 2.0}}
	out, err := Convert(in, UnitMetrePerSecond, UnitMetrePerSecond)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if &out[0][0] != &in[0][0] {
		t.Error("identity conversion should not copy")
	}
}

func TestConvert_UnknownPair(t *testing.T) {
	_, err := Convert([][]float64{{1.0}}, UnitKelvin, UnitMillimetre)
	if err == nil {
		t.Error("expected error for unknown conversion, got nil")
	}
}

func TestConvert_NaNPassthrough(t *testing.T) {
	out, err := Convert([][]float64{{math.NaN()}}, UnitKelvin, UnitCelsius)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if !math.IsNaN(out[0][0]) {
		t.Errorf("NaN converted to %v, want NaN", out[0][0])
	}
}

func TestParseUnitSystem(t *testing.T) {
	tests := []struct {
		in      string
		want    UnitSystem
		wantErr bool
	}{
		{"SI", UnitsSI, false},
		{"DEFAULT", UnitsDefault, false},
		{"", UnitsDefault, false},
		{"si", UnitsDefault, true},
		{"IMPERIAL", UnitsDefault, true},
	}

	for _, tt := range tests {
		got, err := ParseUnitSystem(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseUnitSystem(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseUnitSystem(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
