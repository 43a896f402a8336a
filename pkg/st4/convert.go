package st4

import "math"

// Gearing of the ST4 motors. X and Y name the direction of motion rather
// than the axis being rotated around.
const (
	StepsPerDegreeX = 3275.420875
	StepsPerDegreeY = 8680.968858

	DegreesPerStepX = 0.000305304
	DegreesPerStepY = 0.000115195
)

// DegreesToStepsX converts an angle in degrees to motor steps for the X (pan)
// direction. Halfway values round to even. The angle is not clamped.
func DegreesToStepsX(deg float64) int {
	return int(math.RoundToEven(deg * StepsPerDegreeX))
}

// DegreesToStepsY converts an angle in degrees to motor steps for the Y (tilt)
// direction. Halfway values round to even. The angle is not clamped.
func DegreesToStepsY(deg float64) int {
	return int(math.RoundToEven(deg * StepsPerDegreeY))
}

// StepsToDegreesX converts X motor steps back to degrees.
func StepsToDegreesX(steps int) float64 {
	return float64(steps) * DegreesPerStepX
}

// StepsToDegreesY converts Y motor steps back to degrees.
func StepsToDegreesY(steps int) float64 {
	return float64(steps) * DegreesPerStepY
}
