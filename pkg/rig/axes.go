// Package rig provides configuration, presets and axis naming on top of the
// st4 client.
package rig

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gwillem/st4/pkg/st4"
)

// ErrUnknownAxis is returned by ParseAxis for names that are not a motor.
var ErrUnknownAxis = errors.New("unknown axis")

// AxisName identifies a motor of the rig.
type AxisName string

// Axis names for the ST4.
const (
	Pan  AxisName = "pan"
	Tilt AxisName = "tilt"
	M3   AxisName = "m3"
	M4   AxisName = "m4"
)

// AllAxes returns all axis names in order (matching motor numbers 1-4).
func AllAxes() []AxisName {
	return []AxisName{
		Pan,
		Tilt,
		M3,
		M4,
	}
}

// Axis returns the motor number for n.
func (n AxisName) Axis() (st4.Axis, bool) {
	for i, name := range AllAxes() {
		if name == n {
			return st4.Axis(i + 1), true
		}
	}
	return 0, false
}

// ParseAxis accepts an axis name or a motor number 1-4.
func ParseAxis(s string) (st4.Axis, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if a, ok := AxisName(s).Axis(); ok {
		return a, nil
	}
	if n, err := strconv.Atoi(s); err == nil && st4.Axis(n).Valid() {
		return st4.Axis(n), nil
	}
	return 0, fmt.Errorf("%w %q: want pan, tilt, m3, m4 or 1-4", ErrUnknownAxis, s)
}
