package components

import (
	"strconv"

	"github.com/a-h/templ"

	"prizewheel/internal/viewmodel"
)

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func canSpin(data viewmodel.WheelFragment) bool {
	return data.Interactive && !data.Spinning && !data.Played
}

// Values come from the layout, never from the visitor.
func wheelStyle(data viewmodel.WheelFragment) templ.SafeCSS {
	return templ.SafeCSS("background: " + data.Gradient +
		"; transform: rotate(" + num(data.Rotation) + "deg)" +
		"; --label-size: " + strconv.Itoa(data.FontSize) + "px")
}

func labelStyle(seg viewmodel.SegmentLabel) templ.SafeCSS {
	return templ.SafeCSS("left: " + num(seg.X) + "%; top: " + num(seg.Y) + "%" +
		"; transform: translate(-50%, -50%) rotate(" + num(seg.Rotation) + "deg)")
}
