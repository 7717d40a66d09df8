package command

import (
	"fmt"
	"math"
	"strconv"
)

// Describe returns a stable one-line description of the command for logs
// and listings, e.g. "00:01:40.0 throttle increase to 0.75". It is not a
// persistence format.
func (c Command) Describe() string {
	detail := c.detail()
	if detail == "" {
		return FormatTime(c.time) + " " + c.kind.String()
	}
	return FormatTime(c.time) + " " + c.kind.String() + " " + detail
}

// String implements fmt.Stringer.
func (c Command) String() string {
	return c.Describe()
}

func (c Command) detail() string {
	switch c.Shape() {
	case ShapeBoolean:
		return onOff(c.toState)
	case ShapeIndexed:
		return fmt.Sprintf("#%d %s", c.index, onOff(c.toState))
	case ShapeContinuous:
		dir := "decrease"
		if c.increase {
			dir = "increase"
		}
		if c.hasTarget {
			return dir + " to " + formatFloat(c.target)
		}
		return dir
	case ShapePaused:
		return "for " + formatFloat(c.duration) + "s"
	case ShapeCamera:
		return strconv.Quote(c.label)
	case ShapeSave:
		return strconv.Quote(c.label)
	}
	return ""
}

// FormatTime renders simulated seconds as HH:MM:SS.s, rounded to the
// nearest tenth.
func FormatTime(t float64) string {
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return fmt.Sprintf("%v", t)
	}
	sign := ""
	if t < 0 {
		sign = "-"
		t = -t
	}
	tenths := int64(math.Round(t * 10))
	h := tenths / 36000
	m := (tenths / 600) % 60
	s := tenths % 600
	return fmt.Sprintf("%s%02d:%02d:%02d.%d", sign, h, m, s/10, s%10)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
