package wheel

import (
	"math"
	"testing"
)

func TestTargetAngle(t *testing.T) {
	tests := []struct {
		index, segments int
		want            float64
	}{
		{0, 6, 330},
		{2, 6, 210},
		{5, 6, 30},
		{0, 4, 315},
		{NotFound, 6, 330},
	}
	for _, tt := range tests {
		if got := TargetAngle(tt.index, tt.segments); got != tt.want {
			t.Errorf("TargetAngle(%d, %d) = %v, want %v", tt.index, tt.segments, got, tt.want)
		}
	}
}

func TestFinalAngle_LandsOnChosenSegment(t *testing.T) {
	for _, n := range []int{1, 2, 5, 6, 7, 12} {
		for i := 0; i < n; i++ {
			for _, r := range []float64{0, 0.25, 0.5, 0.999} {
				final := FinalAngle(0, 7, TargetAngle(i, n), Jitter(r, n))
				if got := SegmentUnderPointer(final, n); got != i {
					t.Errorf("n=%d i=%d r=%v: pointer on %d (angle %v)", n, i, r, got, final)
				}
			}
		}
	}
}

func TestJitterBounds(t *testing.T) {
	s := SegmentAngle(6)
	if got := Jitter(0.5, 6); got != 0 {
		t.Errorf("Jitter(0.5) = %v, want 0", got)
	}
	if got := Jitter(0, 6); math.Abs(got+0.4*s) > 1e-9 {
		t.Errorf("Jitter(0) = %v, want %v", got, -0.4*s)
	}
	if got := Jitter(0.9999, 6); got >= 0.4*s {
		t.Errorf("Jitter(~1) = %v, should stay below %v", got, 0.4*s)
	}
}

func TestNormalize(t *testing.T) {
	tests := map[float64]float64{
		0:      0,
		360:    0,
		2370:   210,
		-30:    330,
		719.5:  359.5,
		1080.0: 0,
	}
	for in, want := range tests {
		if got := Normalize(in); math.Abs(got-want) > 1e-9 {
			t.Errorf("Normalize(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestLabelFontSize(t *testing.T) {
	tests := []struct{ width, want int }{
		{0, 14},
		{320, 11},
		{399, 11},
		{400, 12},
		{599, 12},
		{600, 14},
		{1440, 14},
	}
	for _, tt := range tests {
		if got := LabelFontSize(tt.width); got != tt.want {
			t.Errorf("LabelFontSize(%d) = %d, want %d", tt.width, got, tt.want)
		}
	}
}

func TestBuildLayout(t *testing.T) {
	layout := BuildLayout([]Prize{
		{Name: "A", Color: "#d10000"},
		{Name: "B", Icon: "🎁", Color: "#222222"},
	}, 500)

	want := "conic-gradient(#d10000 0deg 180deg, #222222 180deg 360deg)"
	if layout.Gradient != want {
		t.Errorf("Gradient %q, want %q", layout.Gradient, want)
	}
	if layout.FontSize != 12 {
		t.Errorf("FontSize %d, want 12", layout.FontSize)
	}
	if len(layout.Segments) != 2 {
		t.Fatalf("segments %d, want 2", len(layout.Segments))
	}

	a := layout.Segments[0]
	if a.MidAngle != 90 || a.Rotation != 0 {
		t.Errorf("segment A mid %v rotation %v, want 90 and 0", a.MidAngle, a.Rotation)
	}
	if a.X != 0.5 || a.Y != 0 {
		t.Errorf("segment A label at (%v, %v), want (0.5, 0)", a.X, a.Y)
	}
	b := layout.Segments[1]
	if b.X != -0.5 || b.Y != 0 || b.Icon != "🎁" {
		t.Errorf("segment B = %+v", b)
	}
}

func TestBuildLayout_SixSegments(t *testing.T) {
	layout := BuildLayout(namedPrizes(6), 1024)
	first := layout.Segments[0]
	if first.StartAngle != 0 || first.EndAngle != 60 || first.MidAngle != 30 {
		t.Errorf("first segment angles %+v", first)
	}
	if first.Rotation != -60 {
		t.Errorf("first rotation %v, want -60", first.Rotation)
	}
	if first.X != 0.25 || first.Y != -0.433 {
		t.Errorf("first label at (%v, %v), want (0.25, -0.433)", first.X, first.Y)
	}
	if layout.Segments[5].EndAngle != 360 {
		t.Errorf("last segment ends at %v, want 360", layout.Segments[5].EndAngle)
	}
}
