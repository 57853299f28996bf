package wheel

import (
	"context"
	"errors"
	"testing"
	"time"

	"prizewheel/internal/ledger"
)

func newTestStore(t *testing.T, r Renderer) (*Store, *ledger.Memory) {
	t.Helper()
	l := ledger.NewMemory()
	opts := testWidgetOptions(r, &scriptedRNG{})
	s, err := NewStore(namedPrizes(6), opts, l, nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s, l
}

func TestNewStore_RejectsBadPrizes(t *testing.T) {
	if _, err := NewStore(nil, Options{}, nil, nil); !errors.Is(err, ErrEmptyCatalog) {
		t.Errorf("error %v, want ErrEmptyCatalog", err)
	}
}

func TestStore_SpinRecordsWinAndPublishes(t *testing.T) {
	r := &manualRenderer{}
	s, l := newTestStore(t, r)

	w := s.GetOrCreate("v1")
	if again := s.GetOrCreate("v1"); again != w {
		t.Fatal("GetOrCreate returned a different widget")
	}
	sub := s.Broadcaster("v1").Subscribe()

	pending, err := s.Spin("v1")
	if err != nil {
		t.Fatalf("Spin: %v", err)
	}
	if _, err := s.Spin("v1"); !errors.Is(err, ErrSpinInProgress) {
		t.Errorf("second Spin error %v, want ErrSpinInProgress", err)
	}

	r.finish(0)

	select {
	case ev := <-sub:
		if ev.Name != EventResult || ev.Data != pending.Prize.Name {
			t.Errorf("event %+v, want result for %q", ev, pending.Prize.Name)
		}
	case <-time.After(time.Second):
		t.Fatal("no result event")
	}

	ctx := context.Background()
	played, err := s.HasPlayed(ctx, "v1")
	if err != nil || !played {
		t.Errorf("HasPlayed = %v, %v; want true", played, err)
	}
	win, err := s.LastWin(ctx, "v1")
	if err != nil {
		t.Fatalf("LastWin: %v", err)
	}
	if win.Prize != pending.Prize.Name || win.FinalAngle != pending.FinalAngle {
		t.Errorf("win %+v does not match pending %+v", win, pending)
	}
	if l.Count("v1") != 1 {
		t.Errorf("ledger has %d wins, want 1", l.Count("v1"))
	}
}

func TestStore_ResetRecordsInterruptedSpin(t *testing.T) {
	r := &manualRenderer{}
	s, l := newTestStore(t, r)

	if s.Reset("nobody") {
		t.Error("Reset of an unknown visitor should report false")
	}

	pending, err := s.Spin("v1")
	if err != nil {
		t.Fatalf("Spin: %v", err)
	}
	sub := s.Broadcaster("v1").Subscribe()
	if !s.Reset("v1") {
		t.Fatal("Reset should find the widget")
	}
	if ev := <-sub; ev.Name != EventResult || ev.Data != pending.Prize.Name {
		t.Errorf("first event %+v, want result %q", ev, pending.Prize.Name)
	}
	if ev := <-sub; ev.Name != EventWheel {
		t.Errorf("second event %q, want wheel", ev.Name)
	}

	ctx := context.Background()
	if played, _ := s.HasPlayed(ctx, "v1"); !played {
		t.Error("the reset spin should count as played")
	}
	win, err := s.LastWin(ctx, "v1")
	if err != nil || win.Prize != pending.Prize.Name {
		t.Errorf("LastWin = %+v, %v; want %q", win, err, pending.Prize.Name)
	}

	// the old timer must not record a second win
	r.finish(0)
	if l.Count("v1") != 1 {
		t.Errorf("ledger has %d wins, want 1", l.Count("v1"))
	}
}

func TestStore_ResetWhileIdleRecordsNothing(t *testing.T) {
	s, l := newTestStore(t, &manualRenderer{})
	s.GetOrCreate("v1")
	if !s.Reset("v1") {
		t.Fatal("Reset should find the widget")
	}
	if l.Count("v1") != 0 {
		t.Errorf("ledger has %d wins, want 0", l.Count("v1"))
	}
}

func TestStore_RemoveRecordsInterruptedSpin(t *testing.T) {
	r := &manualRenderer{}
	s, l := newTestStore(t, r)
	if _, err := s.Spin("v1"); err != nil {
		t.Fatalf("Spin: %v", err)
	}
	if !s.Remove("v1") {
		t.Fatal("Remove should find the widget")
	}
	r.finish(0)
	if l.Count("v1") != 1 {
		t.Errorf("ledger has %d wins, want 1", l.Count("v1"))
	}
}

func TestStore_ResizePublishesWheel(t *testing.T) {
	s, _ := newTestStore(t, &manualRenderer{})
	s.GetOrCreate("v1")
	sub := s.Broadcaster("v1").Subscribe()

	if !s.Resize("v1", 390) {
		t.Fatal("Resize rejected")
	}
	select {
	case ev := <-sub:
		if ev.Name != EventWheel {
			t.Errorf("event %q, want wheel", ev.Name)
		}
	case <-time.After(time.Second):
		t.Fatal("no wheel event after resize")
	}
	w, _ := s.Get("v1")
	if w.Layout().FontSize != 11 {
		t.Errorf("FontSize %d, want 11", w.Layout().FontSize)
	}
}

func TestStore_SweepEvictsIdleWidgets(t *testing.T) {
	r := &manualRenderer{}
	s, _ := newTestStore(t, r)
	s.GetOrCreate("idle")
	s.GetOrCreate("busy")
	s.Spin("busy")

	removed := s.Sweep(time.Now().UTC().Add(2*time.Hour), time.Hour)
	if removed != 1 {
		t.Fatalf("Sweep removed %d, want 1", removed)
	}
	if _, ok := s.Get("idle"); ok {
		t.Error("idle widget should be evicted")
	}
	if _, ok := s.Get("busy"); !ok {
		t.Error("spinning widget should be kept")
	}

	if !s.Remove("busy") {
		t.Error("Remove should find the widget")
	}
	if s.Len() != 0 {
		t.Errorf("Len %d, want 0", s.Len())
	}
}
