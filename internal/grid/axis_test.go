package grid

import "testing"

func TestNearestIndex_Ascending(t *testing.T) {
	axis := []float64{0.0, 0.25, 0.5, 0.75, 1.0}

	tests := []struct {
		name   string
		target float64
		want   int
	}{
		{"exact match", 0.5, 2},
		{"closer to lower neighbour", 0.3, 1},
		{"closer to upper neighbour", 0.7, 3},
		{"halfway tie goes to smaller value", 0.375, 1},
		{"below range clamps to first", -5.0, 0},
		{"above range clamps to last", 7.5, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NearestIndex(axis, tt.target)
			if got != tt.want {
				t.Errorf("NearestIndex(%v) = %d, want %d", tt.target, got, tt.want)
			}
		})
	}
}

func TestNearestIndex_Descending(t *testing.T) {
	// Latitude axes are often stored north to south.
	axis := []float64{1.25, 1.0, 0.75, 0.5, 0.25, 0.0, -0.25, -0.5, -0.75, -1.0}

	tests := []struct {
		name   string
		target float64
		want   int
	}{
		{"exact match", 0.75, 2},
		{"closer to larger value", 0.7, 2},
		{"closer to smaller value", 0.55, 3},
		{"halfway tie goes to smaller value", 0.625, 3},
		{"negative target", -0.8, 8},
		{"above range clamps to first", 9.0, 0},
		{"below range clamps to last", -9.0, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NearestIndex(axis, tt.target)
			if got != tt.want {
				t.Errorf("NearestIndex(%v) = %d, want %d", tt.target, got, tt.want)
			}
		})
	}
}

func TestNearestIndex_ShortAxes(t *testing.T) {
	if got := NearestIndex(nil, 1.0); got != 0 {
		t.Errorf("NearestIndex(nil) = %d, want 0", got)
	}
	if got := NearestIndex([]float64{42.0}, 1.0); got != 0 {
		t.Errorf("NearestIndex(single) = %d, want 0", got)
	}
}

func TestIsMonotonic(t *testing.T) {
	tests := []struct {
		name string
		axis []float64
		want bool
	}{
		{"ascending", []float64{1, 2, 3}, true},
		{"descending", []float64{3, 2, 1}, true},
		{"single value", []float64{1}, true},
		{"repeated value", []float64{1, 1, 2}, false},
		{"direction change", []float64{1, 3, 2}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isMonotonic(tt.axis); got != tt.want {
				t.Errorf("isMonotonic(%v) = %v, want %v", tt.axis, got, tt.want)
			}
		})
	}
}
