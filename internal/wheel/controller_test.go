package wheel

import (
	"testing"
	"time"
)

func newTestController(t *testing.T, n int, rng RNG, r Renderer, opts SpinOptions) (*Catalog, *Controller) {
	t.Helper()
	c, err := NewCatalog(namedPrizes(n), rng)
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	return c, NewController(c, r, rng, opts)
}

func TestController_SpinLandsOnChosenPrize(t *testing.T) {
	rng := &scriptedRNG{ints: []int{2}, floats: []float64{0.5}}
	r := &manualRenderer{}
	_, ctrl := newTestController(t, 6, rng, r, noExtraTurns())

	var results []SpinResult
	pending, ok := ctrl.Spin(func(res SpinResult) { results = append(results, res) })
	if !ok {
		t.Fatal("Spin from idle should start")
	}
	if pending.Prize.Name != "P2" || pending.Index != 2 {
		t.Errorf("pending prize %q index %d, want P2 at 2", pending.Prize.Name, pending.Index)
	}
	if pending.FinalAngle != 210 {
		t.Errorf("FinalAngle %v, want 210", pending.FinalAngle)
	}
	if pending.FullRotations != 0 || pending.Jitter != 0 {
		t.Errorf("rotations %d jitter %v, want 0 and 0", pending.FullRotations, pending.Jitter)
	}
	if pending.Duration != DefaultSpinDuration {
		t.Errorf("Duration %v, want %v", pending.Duration, DefaultSpinDuration)
	}

	state := ctrl.State()
	if state.Phase != PhaseSpinning || state.CumulativeAngle != 210 {
		t.Errorf("state %+v, want spinning at 210", state)
	}
	if r.count() != 1 || r.calls[0].angle != 210 {
		t.Fatalf("renderer calls %+v, want one animation to 210", r.calls)
	}

	r.finish(0)
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Prize.Name != "P2" || results[0].FinalAngle != 210 {
		t.Errorf("result %+v", results[0])
	}
	if ctrl.State().Phase != PhaseIdle {
		t.Error("controller should be idle after completion")
	}
	last, ok := ctrl.LastResult()
	if !ok || last.Prize.Name != "P2" {
		t.Errorf("LastResult = %+v, %v", last, ok)
	}

	// a second completion of the same spin does nothing
	r.finish(0)
	if len(results) != 1 {
		t.Errorf("duplicate completion emitted %d results", len(results))
	}
}

func TestController_SpinWhileSpinningIsNoop(t *testing.T) {
	r := &manualRenderer{}
	_, ctrl := newTestController(t, 6, &scriptedRNG{ints: []int{1, 4}}, r, noExtraTurns())

	if _, ok := ctrl.Spin(nil); !ok {
		t.Fatal("first Spin should start")
	}
	before := ctrl.State()

	pending, ok := ctrl.Spin(nil)
	if ok {
		t.Fatal("second Spin should be rejected")
	}
	if pending != (Pending{}) {
		t.Errorf("rejected Spin returned %+v", pending)
	}
	if after := ctrl.State(); after != before {
		t.Errorf("state changed from %+v to %+v", before, after)
	}
	if r.count() != 1 {
		t.Errorf("renderer animated %d times, want 1", r.count())
	}
}

func TestController_ForceReset(t *testing.T) {
	rng := &scriptedRNG{ints: []int{2, 1}}
	r := &manualRenderer{}
	_, ctrl := newTestController(t, 6, rng, r, SpinOptions{Duration: time.Second, MinRotations: 6, MaxRotations: 8})

	started, _ := ctrl.Spin(nil)
	if ctrl.State().CumulativeAngle < 360 {
		t.Fatalf("angle %v should include full rotations", ctrl.State().CumulativeAngle)
	}

	interrupted, ok := ctrl.ForceReset()
	if !ok {
		t.Fatal("ForceReset should report the interrupted spin")
	}
	if interrupted != started {
		t.Errorf("interrupted %+v, want %+v", interrupted, started)
	}
	last, ok := ctrl.LastResult()
	if !ok || last.Prize != started.Prize || last.FinalAngle != started.FinalAngle {
		t.Errorf("LastResult = %+v, %v; want the interrupted prize", last, ok)
	}
	state := ctrl.State()
	if state.Phase != PhaseIdle {
		t.Errorf("phase %q, want idle", state.Phase)
	}
	if state.CumulativeAngle < 0 || state.CumulativeAngle >= 360 {
		t.Errorf("angle %v, want within [0, 360)", state.CumulativeAngle)
	}
	if state.CumulativeAngle != 210 {
		t.Errorf("angle %v, want 210 (visual position kept)", state.CumulativeAngle)
	}

	if _, ok := ctrl.ForceReset(); ok {
		t.Error("reset from idle should not report an interruption")
	}
	again := ctrl.State()
	if again.Phase != PhaseIdle || again.CumulativeAngle != state.CumulativeAngle {
		t.Errorf("second reset changed state to %+v", again)
	}
}

func TestController_StaleCompletionIsInert(t *testing.T) {
	rng := &scriptedRNG{ints: []int{0, 3}}
	r := &manualRenderer{}
	_, ctrl := newTestController(t, 6, rng, r, noExtraTurns())

	var results []SpinResult
	onResult := func(res SpinResult) { results = append(results, res) }

	first, _ := ctrl.Spin(onResult)
	ctrl.ForceReset()
	second, ok := ctrl.Spin(onResult)
	if !ok {
		t.Fatal("Spin after reset should start")
	}
	if second.Generation <= first.Generation {
		t.Fatalf("generation %d not after %d", second.Generation, first.Generation)
	}

	// the first timer fires late
	r.finish(0)
	if len(results) != 0 {
		t.Fatalf("stale completion emitted %+v", results)
	}
	if ctrl.State().Phase != PhaseSpinning {
		t.Fatal("stale completion must not end the new spin")
	}

	r.finish(1)
	if len(results) != 1 || results[0].Prize.Name != "P3" {
		t.Fatalf("results %+v, want one P3", results)
	}
	if results[0].Generation != second.Generation {
		t.Errorf("result generation %d, want %d", results[0].Generation, second.Generation)
	}
}

func TestController_FallbackUsesSegmentZero(t *testing.T) {
	r := &manualRenderer{}
	c, ctrl := newTestController(t, 6, &scriptedRNG{}, r, noExtraTurns())
	for _, p := range c.Prizes() {
		c.Exclude(p.Name)
	}

	pending, ok := ctrl.Spin(nil)
	if !ok {
		t.Fatal("Spin should start even with everything excluded")
	}
	if !IsFallback(pending.Prize) {
		t.Errorf("prize %+v, want fallback", pending.Prize)
	}
	if pending.Index != NotFound {
		t.Errorf("Index %d, want NotFound", pending.Index)
	}
	if pending.FinalAngle != 330 {
		t.Errorf("FinalAngle %v, want 330 (segment 0)", pending.FinalAngle)
	}
}

func TestController_RotationsWithinRange(t *testing.T) {
	c, ctrl := newTestController(t, 6, newSeededRNG(), TimerRenderer{}, SpinOptions{MinRotations: 6, MaxRotations: 8})
	seen := make(map[int]bool)
	prev := 0.0
	for i := 0; i < 200; i++ {
		var got SpinResult
		pending, ok := ctrl.Spin(func(res SpinResult) { got = res })
		if !ok {
			t.Fatalf("spin %d rejected; zero duration should complete immediately", i)
		}
		if pending.FullRotations < 6 || pending.FullRotations > 8 {
			t.Fatalf("FullRotations %d outside [6, 8]", pending.FullRotations)
		}
		if pending.FinalAngle <= prev {
			t.Fatalf("angle went from %v to %v; rotation must keep increasing", prev, pending.FinalAngle)
		}
		if got.Prize != pending.Prize {
			t.Fatalf("result %q does not match pending %q", got.Prize.Name, pending.Prize.Name)
		}
		if !c.IsEligible(pending.Prize.Name) {
			t.Fatalf("awarded ineligible prize %q", pending.Prize.Name)
		}
		seen[pending.FullRotations] = true
		prev = pending.FinalAngle
	}
	if len(seen) != 3 {
		t.Errorf("rotation counts seen %v, want 6, 7 and 8", seen)
	}
}
