package domain

import (
	"testing"
	"time"
)

var allVars = []string{"VAR_10U", "VAR_10V", "VAR_2T", "TCWV", "SP", "MSL", "TP"}

func TestNewRegistry_FullDataset(t *testing.T) {
	reg := NewRegistry(allVars)

	names := reg.Names()
	if len(names) != 9 {
		t.Fatalf("Names() has %d entries, want 9: %v", len(names), names)
	}

	// Derived wind parameters become available with both components.
	for _, name := range []string{"10WS", "10WD"} {
		if _, ok := reg.Spec(name); !ok {
			t.Errorf("Spec(%s) missing", name)
		}
	}
}

func TestNewRegistry_FiltersByAvailability(t *testing.T) {
	reg := NewRegistry([]string{"VAR_2T", "VAR_10U"})

	if _, ok := reg.Spec("VAR_2T"); !ok {
		t.Error("VAR_2T should be supported")
	}
	if _, ok := reg.Spec("TP"); ok {
		t.Error("TP should not be supported without its variable")
	}
	// 10WS needs both wind components.
	if _, ok := reg.Spec("10WS"); ok {
		t.Error("10WS should not be supported with only VAR_10U")
	}
}

func TestRegistry_Unsupported(t *testing.T) {
	reg := NewRegistry(allVars)

	missing := reg.Unsupported([]string{"VAR_2T", "PACMAN", "10WS", "MARIO"})
	if len(missing) != 2 {
		t.Fatalf("Unsupported = %v, want 2 entries", missing)
	}
	if missing[0] != "MARIO" || missing[1] != "PACMAN" {
		t.Errorf("Unsupported = %v, want sorted [MARIO PACMAN]", missing)
	}

	err := &UnsupportedParamsError{Names: missing}
	want := "Parameters not supported: MARIO, PACMAN"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestRegistry_DataKeys(t *testing.T) {
	reg := NewRegistry(allVars)

	keys := reg.DataKeys([]string{"10WS", "10WD", "VAR_10U", "TP"})
	want := []string{"TP", "VAR_10U", "VAR_10V"}
	if len(keys) != len(want) {
		t.Fatalf("DataKeys = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("DataKeys[%d] = %s, want %s", i, keys[i], want[i])
		}
	}
}

func TestRegistry_Parameters(t *testing.T) {
	reg := NewRegistry(allVars)

	si := reg.Parameters(UnitsSI)
	if si["VAR_2T"].Units != "K" {
		t.Errorf("SI VAR_2T units = %s, want K", si["VAR_2T"].Units)
	}

	def := reg.Parameters(UnitsDefault)
	if def["VAR_2T"].Units != "degC" {
		t.Errorf("DEFAULT VAR_2T units = %s, want degC", def["VAR_2T"].Units)
	}
	if def["MSL"].Units != "hPa" {
		t.Errorf("DEFAULT MSL units = %s, want hPa", def["MSL"].Units)
	}
	if def["TP"].Units != "mm" {
		t.Errorf("DEFAULT TP units = %s, want mm", def["TP"].Units)
	}
	if def["10WS"].Units != "m s**-1" {
		t.Errorf("DEFAULT 10WS units = %s, want m s**-1", def["10WS"].Units)
	}
}

func TestParseFrequency(t *testing.T) {
	tests := []struct {
		in      string
		want    Frequency
		step    time.Duration
		wantErr bool
	}{
		{"1H", FreqHourly, time.Hour, false},
		{"", FreqHourly, time.Hour, false},
		{"5min", FreqFiveMinute, 5 * time.Minute, false},
		{"10min", FreqHourly, 0, true},
		{"1h", FreqHourly, 0, true},
	}

	for _, tt := range tests {
		got, err := ParseFrequency(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFrequency(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err != nil {
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFrequency(%q) = %v, want %v", tt.in, got, tt.want)
		}
		if got.Step() != tt.step {
			t.Errorf("Step() = %v, want %v", got.Step(), tt.step)
		}
	}
}
