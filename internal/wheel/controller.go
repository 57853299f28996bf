package wheel

import (
	"sync"
	"time"
)

// Phase is the spin controller state.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseSpinning Phase = "spinning"
)

// DefaultSpinDuration matches the CSS transition on the wheel element.
const DefaultSpinDuration = 5500 * time.Millisecond

// SpinOptions tunes the animation. Values are taken as given, so tests can ask
// for zero extra rotations.
type SpinOptions struct {
	Duration     time.Duration
	MinRotations int
	MaxRotations int
}

// DefaultSpinOptions returns the production animation settings.
func DefaultSpinOptions() SpinOptions {
	return SpinOptions{
		Duration:     DefaultSpinDuration,
		MinRotations: DefaultMinRotations,
		MaxRotations: DefaultMaxRotations,
	}
}

// SpinState is a point-in-time copy of the controller state.
type SpinState struct {
	Phase           Phase   `json:"phase"`
	CumulativeAngle float64 `json:"cumulativeAngle"`
	Generation      uint64  `json:"generation"`
}

// Pending describes a spin that has started. The browser animates from it.
type Pending struct {
	Generation    uint64        `json:"generation"`
	Prize         Prize         `json:"prize"`
	Index         int           `json:"index"`
	FinalAngle    float64       `json:"finalAngle"`
	FullRotations int           `json:"fullRotations"`
	Jitter        float64       `json:"jitter"`
	Duration      time.Duration `json:"-"`
}

// SpinResult is emitted once per completed spin.
type SpinResult struct {
	Generation uint64  `json:"generation"`
	Prize      Prize   `json:"prize"`
	FinalAngle float64 `json:"finalAngle"`
}

// Controller owns the spin state machine of one wheel.
//
// Every spin and every reset bumps the generation. Completion callbacks carry
// the generation of the spin that scheduled them and do nothing once it is
// stale, so a reset followed by a new spin can never be resolved by the old
// timer.
type Controller struct {
	mu         sync.Mutex
	catalog    *Catalog
	renderer   Renderer
	rng        RNG
	opts       SpinOptions
	phase      Phase
	angle      float64
	generation uint64
	inflight   Pending
	last       *SpinResult
}

// NewController returns an idle controller at angle 0.
func NewController(catalog *Catalog, renderer Renderer, rng RNG, opts SpinOptions) *Controller {
	if rng == nil {
		rng = StdRNG{}
	}
	if renderer == nil {
		renderer = TimerRenderer{}
	}
	if opts.MaxRotations < opts.MinRotations {
		opts.MaxRotations = opts.MinRotations
	}
	return &Controller{
		catalog:  catalog,
		renderer: renderer,
		rng:      rng,
		opts:     opts,
		phase:    PhaseIdle,
	}
}

// Spin picks a prize, computes the landing angle and starts the animation.
// While a spin is in flight it returns ok=false and changes nothing.
// onResult runs on the renderer's goroutine once the animation completes,
// unless the spin was reset first.
func (c *Controller) Spin(onResult func(SpinResult)) (Pending, bool) {
	c.mu.Lock()
	if c.phase == PhaseSpinning {
		c.mu.Unlock()
		return Pending{}, false
	}

	prize := c.catalog.PickRandom()
	segments := c.catalog.Len()
	index := NotFound
	if !IsFallback(prize) {
		index = c.catalog.IndexOf(prize.Name)
	}
	target := TargetAngle(index, segments)
	jitter := Jitter(c.rng.Float64(), segments)
	rotations := c.fullRotations()
	final := FinalAngle(c.angle, rotations, target, jitter)

	c.angle = final
	c.phase = PhaseSpinning
	c.generation++
	c.inflight = Pending{
		Generation:    c.generation,
		Prize:         prize,
		Index:         index,
		FinalAngle:    final,
		FullRotations: rotations,
		Jitter:        jitter,
		Duration:      c.opts.Duration,
	}
	pending := c.inflight
	c.mu.Unlock()

	c.renderer.Animate(final, pending.Duration, func() {
		c.complete(pending.Generation, onResult)
	})
	return pending, true
}

func (c *Controller) fullRotations() int {
	span := c.opts.MaxRotations - c.opts.MinRotations
	if span <= 0 {
		return c.opts.MinRotations
	}
	return c.opts.MinRotations + c.rng.Intn(span+1)
}

func (c *Controller) complete(generation uint64, onResult func(SpinResult)) {
	c.mu.Lock()
	if generation != c.generation || c.phase != PhaseSpinning {
		c.mu.Unlock()
		return
	}
	c.phase = PhaseIdle
	result := SpinResult{
		Generation: generation,
		Prize:      c.inflight.Prize,
		FinalAngle: c.inflight.FinalAngle,
	}
	c.last = &result
	c.mu.Unlock()

	if onResult != nil {
		onResult(result)
	}
}

// ForceReset returns the controller to Idle from any state, keeps the visual
// position by reducing the angle modulo 360 and invalidates any in-flight
// completion. An interrupted spin still counts: its prize becomes the last
// result and is returned with ok=true so the caller can record it.
func (c *Controller) ForceReset() (Pending, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	interrupted := c.phase == PhaseSpinning
	c.phase = PhaseIdle
	c.angle = Normalize(c.angle)
	c.generation++
	if !interrupted {
		return Pending{}, false
	}
	c.last = &SpinResult{
		Generation: c.inflight.Generation,
		Prize:      c.inflight.Prize,
		FinalAngle: c.inflight.FinalAngle,
	}
	return c.inflight, true
}

// State returns a copy of the current state.
func (c *Controller) State() SpinState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return SpinState{
		Phase:           c.phase,
		CumulativeAngle: c.angle,
		Generation:      c.generation,
	}
}

// Spinning reports whether a spin is in flight.
func (c *Controller) Spinning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase == PhaseSpinning
}

// LastResult returns the most recent completed spin.
func (c *Controller) LastResult() (SpinResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last == nil {
		return SpinResult{}, false
	}
	return *c.last, true
}
