package domain

import "math"

const (
	// RadiusStepCount points on the slider
	RadiusStepCount = 21
	// MaxRadiusKm last point of the slider
	MaxRadiusKm = 80
)

// RadiusSteps slider scale in km: 1 km steps to 10, 5 km steps to 50,
// then 10 km steps until the scale holds RadiusStepCount points.
var RadiusSteps = buildRadiusSteps()

func buildRadiusSteps() []float64 {
	steps := make([]float64, 0, RadiusStepCount)
	km := 0
	for len(steps) < RadiusStepCount {
		switch {
		case km < 10:
			km++
		case km < 50:
			km += 5
		default:
			km += 10
		}
		steps = append(steps, float64(km))
	}
	return steps
}

// RadiusForIndex slider index to km
func RadiusForIndex(index int) (float64, error) {
	if index < 0 || index >= len(RadiusSteps) {
		return 0, ErrInvalidRadius
	}
	return RadiusSteps[index], nil
}

// IndexForRadius index of the step nearest to km, the lower step wins a tie
func IndexForRadius(km float64) int {
	best := 0
	bestDiff := math.Inf(1)
	for i, step := range RadiusSteps {
		if d := math.Abs(step - km); d < bestDiff {
			best, bestDiff = i, d
		}
	}
	return best
}

// SnapRadius km rounded to the nearest step of the scale
func SnapRadius(km float64) (float64, error) {
	if km <= 0 || math.IsNaN(km) {
		return 0, ErrInvalidRadius
	}
	return RadiusSteps[IndexForRadius(km)], nil
}
