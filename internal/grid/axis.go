package grid

import "math"

// NearestIndex returns the index of the axis value closest to target.
// The axis must be sorted ascending or descending. When target is exactly
// halfway between two neighbours, the smaller coordinate value wins.
// Targets outside the axis range snap to the nearest end.
func NearestIndex(axis []float64, target float64) int {
	if len(axis) < 2 {
		return 0
	}

	if axis[0] > axis[len(axis)-1] {
		return nearestDescending(axis, target)
	}
	return nearestAscending(axis, target)
}

func nearestAscending(axis []float64, target float64) int {
	// Binary search for the first value >= target.
	left, right := 0, len(axis)-1

	for left < right {
		mid := (left + right) / 2
		if axis[mid] < target {
			left = mid + 1
		} else {
			right = mid
		}
	}

	// The previous value is smaller, so it wins ties.
	if left > 0 && math.Abs(axis[left-1]-target) <= math.Abs(axis[left]-target) {
		return left - 1
	}

	return left
}

func nearestDescending(axis []float64, target float64) int {
	// Binary search for the first value <= target.
	left, right := 0, len(axis)-1

	for left < right {
		mid := (left + right) / 2
		if axis[mid] > target {
			left = mid + 1
		} else {
			right = mid
		}
	}

	// Here the value at left is the smaller one, so it keeps ties.
	if left > 0 && math.Abs(axis[left-1]-target) < math.Abs(axis[left]-target) {
		return left - 1
	}

	return left
}

// isMonotonic reports whether the axis is strictly increasing or strictly
// decreasing.
func isMonotonic(axis []float64) bool {
	if len(axis) < 2 {
		return true
	}

	ascending := axis[1] > axis[0]
	for i := 1; i < len(axis); i++ {
		if ascending && axis[i] <= axis[i-1] {
			return false
		}
		if !ascending && axis[i] >= axis[i-1] {
			return false
		}
	}

	return true
}
