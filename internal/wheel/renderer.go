package wheel

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Renderer draws the wheel and runs the spin animation.
type Renderer interface {
	// Build lays out one segment per prize for the given viewport width.
	Build(prizes []Prize, viewportWidth int) Layout
	// Animate rotates the wheel to finalAngle over d and calls done once
	// the animation has finished.
	Animate(finalAngle float64, d time.Duration, done func())
}

// Label radius as a fraction of the wheel radius.
const labelRadius = 0.5

// Segment is the geometry of one prize slice. Angles are degrees clockwise
// from the top. X and Y place the label centre relative to the wheel centre,
// as fractions of the wheel radius.
type Segment struct {
	Index      int     `json:"index"`
	Name       string  `json:"name"`
	Icon       string  `json:"icon,omitempty"`
	Color      string  `json:"color"`
	StartAngle float64 `json:"startAngle"`
	EndAngle   float64 `json:"endAngle"`
	MidAngle   float64 `json:"midAngle"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Rotation   float64 `json:"rotation"`
}

// Layout is what the page needs to draw the wheel.
type Layout struct {
	Segments      []Segment `json:"segments"`
	Gradient      string    `json:"gradient"`
	FontSize      int       `json:"fontSize"`
	ViewportWidth int       `json:"viewportWidth"`
}

// LabelFontSize picks the segment label size in px for a viewport width.
// Unknown widths get the desktop size.
func LabelFontSize(viewportWidth int) int {
	switch {
	case viewportWidth <= 0:
		return 14
	case viewportWidth < 400:
		return 11
	case viewportWidth < 600:
		return 12
	default:
		return 14
	}
}

// BuildLayout computes the wheel geometry: a conic gradient with one stop
// pair per prize and a radial label at half the radius of each segment.
func BuildLayout(prizes []Prize, viewportWidth int) Layout {
	layout := Layout{
		Segments:      make([]Segment, 0, len(prizes)),
		FontSize:      LabelFontSize(viewportWidth),
		ViewportWidth: viewportWidth,
	}
	if len(prizes) == 0 {
		return layout
	}

	s := SegmentAngle(len(prizes))
	stops := make([]string, 0, len(prizes))
	for i, p := range prizes {
		start := float64(i) * s
		end := float64(i+1) * s
		mid := start + s/2
		rad := (mid - 90) * math.Pi / 180
		layout.Segments = append(layout.Segments, Segment{
			Index:      i,
			Name:       p.Name,
			Icon:       p.Icon,
			Color:      p.Color,
			StartAngle: start,
			EndAngle:   end,
			MidAngle:   mid,
			X:          round(labelRadius * math.Cos(rad)),
			Y:          round(labelRadius * math.Sin(rad)),
			Rotation:   mid - 90,
		})
		stops = append(stops, p.Color+" "+deg(start)+" "+deg(end))
	}
	layout.Gradient = "conic-gradient(" + strings.Join(stops, ", ") + ")"
	return layout
}

func deg(v float64) string {
	return strconv.FormatFloat(round(v), 'f', -1, 64) + "deg"
}

func round(v float64) float64 {
	r := math.Round(v*10000) / 10000
	if r == 0 {
		return 0 // no "-0"
	}
	return r
}

// TimerRenderer computes layouts on the server and stands in for the browser
// transition with a timer of the same length.
type TimerRenderer struct{}

func (TimerRenderer) Build(prizes []Prize, viewportWidth int) Layout {
	return BuildLayout(prizes, viewportWidth)
}

// Animate schedules done after d. Non-positive durations complete
// synchronously.
func (TimerRenderer) Animate(_ float64, d time.Duration, done func()) {
	if d <= 0 {
		done()
		return
	}
	time.AfterFunc(d, done)
}
