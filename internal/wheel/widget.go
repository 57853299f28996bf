package wheel

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"prizewheel/internal/logger/sl"
	"prizewheel/pkg/realtime"
)

// Surfaces names the page elements the widget drives. The first four are
// required; a widget missing any of them is created non-interactive.
type Surfaces struct {
	Modal         string `yaml:"modal" json:"modal"`
	Wheel         string `yaml:"wheel" json:"wheel"`
	SpinButton    string `yaml:"spin_button" json:"spinButton"`
	PrizeModal    string `yaml:"prize_modal" json:"prizeModal"`
	CollectButton string `yaml:"collect_button" json:"collectButton"`
	CloseButton   string `yaml:"close_button" json:"closeButton"`
	Toast         string `yaml:"toast" json:"toast"`
	Confetti      string `yaml:"confetti" json:"confetti"`
}

// DefaultSurfaces are the element ids rendered by the bundled page.
func DefaultSurfaces() Surfaces {
	return Surfaces{
		Modal:         "roulette-modal-container",
		Wheel:         "wheel",
		SpinButton:    "spin-button",
		PrizeModal:    "prize-modal",
		CollectButton: "collect-prize-btn",
		CloseButton:   "close-roulette-modal-btn",
		Toast:         "toast",
		Confetti:      "confetti-container",
	}
}

// Missing lists the required surfaces that are not configured.
func (s Surfaces) Missing() []string {
	var missing []string
	for _, req := range []struct{ name, id string }{
		{"modal", s.Modal},
		{"wheel", s.Wheel},
		{"spin_button", s.SpinButton},
		{"prize_modal", s.PrizeModal},
	} {
		if strings.TrimSpace(req.id) == "" {
			missing = append(missing, req.name)
		}
	}
	return missing
}

// Validate returns ErrNotInteractive naming the missing surfaces, if any.
func (s Surfaces) Validate() error {
	if missing := s.Missing(); len(missing) > 0 {
		return fmt.Errorf("missing %s: %w", strings.Join(missing, ", "), ErrNotInteractive)
	}
	return nil
}

// Options configures a Widget. Zero values pick production defaults except
// for Spin, which is used as given.
type Options struct {
	Spin           SpinOptions
	DefaultBlocked string
	ResizeQuiet    time.Duration
	ViewportWidth  int
	Surfaces       Surfaces
	Renderer       Renderer
	RNG            RNG
	Logger         *slog.Logger
}

// Snapshot is the widget state served to the page.
type Snapshot struct {
	ID          string      `json:"id"`
	Interactive bool        `json:"interactive"`
	Missing     []string    `json:"missing,omitempty"`
	State       SpinState   `json:"state"`
	Layout      Layout      `json:"layout"`
	Excluded    []string    `json:"excluded"`
	Eligible    int         `json:"eligible"`
	LastResult  *SpinResult `json:"lastResult,omitempty"`
	Surfaces    Surfaces    `json:"surfaces"`
}

// Widget is one visitor's wheel: catalog, controller, renderer and the resize
// debouncer, with no state shared between widgets.
type Widget struct {
	ID string

	catalog    *Catalog
	controller *Controller
	renderer   Renderer
	resize     *realtime.Debouncer
	surfaces   Surfaces
	missing    []string
	blocked    string
	log        *slog.Logger

	mu       sync.Mutex
	layout   Layout
	lastSeen time.Time
}

// NewWidget builds a widget over prizes. Invalid prize lists are an error;
// missing surfaces are not, they leave the widget non-interactive.
func NewWidget(id string, prizes []Prize, opts Options) (*Widget, error) {
	if opts.RNG == nil {
		opts.RNG = StdRNG{}
	}
	if opts.Renderer == nil {
		opts.Renderer = TimerRenderer{}
	}
	if opts.Logger == nil {
		opts.Logger = sl.Discard()
	}

	catalog, err := NewCatalog(prizes, opts.RNG)
	if err != nil {
		return nil, err
	}

	w := &Widget{
		ID:         id,
		catalog:    catalog,
		controller: NewController(catalog, opts.Renderer, opts.RNG, opts.Spin),
		renderer:   opts.Renderer,
		resize:     realtime.NewDebouncer(opts.ResizeQuiet),
		surfaces:   opts.Surfaces,
		log:        opts.Logger.With(slog.String("widget", id)),
		lastSeen:   time.Now().UTC(),
	}
	w.blocked = catalog.ApplyDefaultBlock(opts.DefaultBlocked)
	w.layout = w.renderer.Build(catalog.Prizes(), opts.ViewportWidth)

	if err := opts.Surfaces.Validate(); err != nil {
		w.missing = opts.Surfaces.Missing()
		w.log.Error("wheel surfaces not found", sl.Err(err))
	}
	return w, nil
}

// Interactive reports whether all required surfaces are present.
func (w *Widget) Interactive() bool {
	return len(w.missing) == 0
}

// Blocked is the prize excluded at construction.
func (w *Widget) Blocked() string {
	return w.blocked
}

// Spin starts a spin. onResult receives the outcome when the animation ends.
func (w *Widget) Spin(onResult func(SpinResult)) (Pending, error) {
	w.Touch()
	if !w.Interactive() {
		return Pending{}, ErrNotInteractive
	}
	pending, ok := w.controller.Spin(onResult)
	if !ok {
		return Pending{}, ErrSpinInProgress
	}
	w.log.Debug("spin started",
		slog.Uint64("generation", pending.Generation),
		slog.String("prize", pending.Prize.Name),
		slog.Float64("final_angle", pending.FinalAngle))
	return pending, nil
}

// ForceReset puts the wheel back to Idle. Safe to call at any time. If a spin
// was in flight it is returned with ok=true; its completion will never fire.
func (w *Widget) ForceReset() (Pending, bool) {
	w.Touch()
	pending, interrupted := w.controller.ForceReset()
	if interrupted {
		w.log.Info("spin interrupted by reset",
			slog.Uint64("generation", pending.Generation),
			slog.String("prize", pending.Prize.Name))
	}
	return pending, interrupted
}

// Resize schedules a layout rebuild for the new viewport width once resizes
// have settled. The rebuild is skipped if a spin is in flight when it fires.
// onRebuilt, if set, receives the new layout.
func (w *Widget) Resize(viewportWidth int, onRebuilt func(Layout)) bool {
	w.Touch()
	if !w.Interactive() {
		return false
	}
	w.resize.Trigger(func() {
		if w.controller.Spinning() {
			return
		}
		layout := w.renderer.Build(w.catalog.Prizes(), viewportWidth)
		w.mu.Lock()
		w.layout = layout
		w.mu.Unlock()
		if onRebuilt != nil {
			onRebuilt(layout)
		}
	})
	return true
}

// Layout returns the current wheel geometry.
func (w *Widget) Layout() Layout {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.layout
}

func (w *Widget) Exclude(name string) { w.catalog.Exclude(name) }
func (w *Widget) Include(name string) { w.catalog.Include(name) }

// Catalog exposes the prize catalog.
func (w *Widget) Catalog() *Catalog {
	return w.catalog
}

// State returns the controller state.
func (w *Widget) State() SpinState {
	return w.controller.State()
}

// LastResult returns the most recent completed spin.
func (w *Widget) LastResult() (SpinResult, bool) {
	return w.controller.LastResult()
}

// Snapshot collects everything the page renders.
func (w *Widget) Snapshot() Snapshot {
	snap := Snapshot{
		ID:          w.ID,
		Interactive: w.Interactive(),
		Missing:     w.missing,
		State:       w.controller.State(),
		Layout:      w.Layout(),
		Excluded:    w.catalog.Excluded(),
		Eligible:    len(w.catalog.Eligible()),
		Surfaces:    w.surfaces,
	}
	if res, ok := w.controller.LastResult(); ok {
		snap.LastResult = &res
	}
	return snap
}

// Touch marks the widget as used now.
func (w *Widget) Touch() {
	w.mu.Lock()
	w.lastSeen = time.Now().UTC()
	w.mu.Unlock()
}

// IdleFor reports how long the widget has gone untouched.
func (w *Widget) IdleFor(now time.Time) time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	return now.Sub(w.lastSeen)
}

// Close drops pending resize work and invalidates any in-flight spin, which
// is returned the same way ForceReset returns it.
func (w *Widget) Close() (Pending, bool) {
	w.resize.Stop()
	return w.controller.ForceReset()
}
