package st4

import (
	"errors"
	"fmt"
)

// ErrInvalidAxis is returned when a motor number is outside 1..4.
var ErrInvalidAxis = errors.New("axis must be 1 for pan, 2 for tilt, 3 for M3 or 4 for M4")

// Axis is a motor channel number as used by G200.
type Axis int

// Motor channels of the ST4.
const (
	Pan  Axis = 1
	Tilt Axis = 2
	Aux3 Axis = 3
	Aux4 Axis = 4
)

// Valid reports whether a is one of the four motor channels.
func (a Axis) Valid() bool {
	return a >= Pan && a <= Aux4
}

func (a Axis) String() string {
	switch a {
	case Pan:
		return "pan"
	case Tilt:
		return "tilt"
	case Aux3:
		return "m3"
	case Aux4:
		return "m4"
	}
	return fmt.Sprintf("axis(%d)", int(a))
}

// toSteps converts deg with the scale of the axis: Y for tilt, X otherwise.
func (a Axis) toSteps(deg float64) int {
	if a == Tilt {
		return DegreesToStepsY(deg)
	}
	return DegreesToStepsX(deg)
}

// Angle is an optional angle in degrees. The zero value is absent, and an
// absent axis is left out of the command entirely.
type Angle struct {
	Degrees float64
	Valid   bool
}

// Deg returns a present Angle.
func Deg(v float64) Angle {
	return Angle{Degrees: v, Valid: true}
}

// None is the absent Angle.
var None = Angle{}
