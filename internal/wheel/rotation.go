package wheel

import "math"

// Rotation convention: the pointer sits at the top of the wheel (0 degrees),
// segment i covers [i*s, (i+1)*s) clockwise from the top, and the wheel turns
// clockwise by the absolute angle handed to the renderer.
const (
	DefaultMinRotations = 6
	DefaultMaxRotations = 8

	// jitterSpread is the share of a segment the landing point may move
	// across, centred on the segment midpoint (+-0.4 of a segment).
	jitterSpread = 0.8
)

// SegmentAngle is the arc covered by one of n segments.
func SegmentAngle(n int) float64 {
	return 360 / float64(n)
}

// TargetAngle is the rotation, within one turn, that brings the midpoint of
// segment index under the pointer. Negative indexes (the fallback prize) use
// segment 0.
func TargetAngle(index, segments int) float64 {
	if index < 0 {
		index = 0
	}
	s := SegmentAngle(segments)
	return 360 - (float64(index)*s + s/2)
}

// Jitter maps r in [0, 1) onto an offset within +-0.4 of a segment.
func Jitter(r float64, segments int) float64 {
	return (r - 0.5) * SegmentAngle(segments) * jitterSpread
}

// FinalAngle is the absolute angle the wheel ends on.
func FinalAngle(cumulative float64, fullRotations int, target, jitter float64) float64 {
	return cumulative + float64(fullRotations)*360 + target + jitter
}

// Normalize reduces angle into [0, 360).
func Normalize(angle float64) float64 {
	a := math.Mod(angle, 360)
	if a < 0 {
		a += 360
	}
	return a
}

// SegmentUnderPointer returns the segment the pointer shows when the wheel is
// rotated by angle.
func SegmentUnderPointer(angle float64, segments int) int {
	offset := Normalize(360 - Normalize(angle))
	i := int(offset / SegmentAngle(segments))
	if i >= segments {
		i = segments - 1
	}
	return i
}
