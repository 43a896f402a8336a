package st4

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Command codes understood by the ST4 firmware.
const (
	CodeRapid       = "G0"
	CodeCoordinated = "G1"
	CodeJog         = "G2"
	CodeSetPosition = "G200"
	CodeZeroAll     = "G201"
	CodeVersion     = "G700"
)

// writeAxes appends "X<steps> " and "Y<steps> " for the present angles.
func writeAxes(sb *strings.Builder, x, y Angle) {
	if x.Valid {
		fmt.Fprintf(sb, "X%d ", DegreesToStepsX(x.Degrees))
	}
	if y.Valid {
		fmt.Fprintf(sb, "Y%d ", DegreesToStepsY(y.Degrees))
	}
}

func rapidCommand(x, y Angle) string {
	var sb strings.Builder
	sb.WriteString(CodeRapid + " ")
	writeAxes(&sb, x, y)
	return sb.String()
}

// coordinatedCommand separates A<accel> from the first axis token with a
// space. Older clients wrote "A0.5X3275" with no space, so these bytes differ
// from theirs.
func coordinatedCommand(d, accel time.Duration, x, y Angle) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s T%s A%s", CodeCoordinated, seconds(d), seconds(accel))
	if x.Valid || y.Valid {
		sb.WriteByte(' ')
	}
	writeAxes(&sb, x, y)
	return sb.String()
}

func jogCommand(x, y Angle) string {
	var sb strings.Builder
	sb.WriteString(CodeJog + " ")
	writeAxes(&sb, x, y)
	return sb.String()
}

func setPositionCommand(axis Axis, deg float64) (string, error) {
	if !axis.Valid() {
		return "", fmt.Errorf("%w: got %d", ErrInvalidAxis, int(axis))
	}
	return fmt.Sprintf("%s M%d P%d", CodeSetPosition, int(axis), axis.toSteps(deg)), nil
}

// seconds formats d as decimal seconds with no trailing zeros.
func seconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}
