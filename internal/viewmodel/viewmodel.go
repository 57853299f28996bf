package viewmodel

// WheelPage holds data for the page hosting the widget.
type WheelPage struct {
	Title     string
	Wheel     WheelFragment
	Location  LocationBanner
	Played    bool
	LastPrize string
}

// WheelFragment holds data for the wheel markup, re-rendered over SSE.
type WheelFragment struct {
	ID          string
	Interactive bool
	Missing     []string
	Gradient    string
	FontSize    int
	Rotation    float64
	Spinning    bool
	Played      bool
	SpinLabel   string
	Segments    []SegmentLabel
	Surfaces    Surfaces
}

// SegmentLabel is one radial prize label.
type SegmentLabel struct {
	Index    int
	Text     string
	Color    string
	X        float64 // percent of the wheel width from the left edge
	Y        float64 // percent of the wheel height from the top edge
	Rotation float64
}

// Surfaces are the element ids the page script binds to.
type Surfaces struct {
	Modal         string
	Wheel         string
	SpinButton    string
	PrizeModal    string
	CollectButton string
	CloseButton   string
	Toast         string
	Confetti      string
}

// ResultFragment announces a resolved spin.
type ResultFragment struct {
	Prize    string
	Fallback bool
}

// LocationBanner shows the delivery area and whether it still needs
// confirming.
type LocationBanner struct {
	City      string
	Region    string
	Confirmed bool
}
