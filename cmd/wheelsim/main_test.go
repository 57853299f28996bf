package main

import (
	"testing"

	"prizewheel/internal/config"
	"prizewheel/internal/wheel"
)

func TestSimulate_BundledCatalog(t *testing.T) {
	pf, err := config.LoadPrizes("")
	if err != nil {
		t.Fatal(err)
	}
	opts := wheel.Options{
		Spin:           pf.SpinOptions(0),
		DefaultBlocked: pf.DefaultBlocked,
		Surfaces:       pf.SurfacesOrDefault(),
		Renderer:       wheel.TimerRenderer{},
	}

	rep, err := simulate(pf.WheelPrizes(), opts, 600, false)
	if err != nil {
		t.Fatal(err)
	}
	if rep.mislanded != 0 {
		t.Errorf("%d spins landed on the wrong segment", rep.mislanded)
	}
	if rep.fallback != 0 {
		t.Errorf("fallback awarded %d times with eligible prizes", rep.fallback)
	}
	if rep.eligible != len(pf.Prizes)-1 {
		t.Errorf("eligible %d, want %d", rep.eligible, len(pf.Prizes)-1)
	}
	total := 0
	for _, row := range rep.rows {
		if row.prize.Name == rep.blocked && row.count != 0 {
			t.Errorf("blocked prize %q won %d times", row.prize.Name, row.count)
		}
		total += row.count
	}
	if total != 600 {
		t.Errorf("counted %d wins, want 600", total)
	}
	if rep.minTurns < 6 || rep.maxTurns > 8 {
		t.Errorf("rotations %d..%d, want within 6..8", rep.minTurns, rep.maxTurns)
	}
}

func TestSimulate_Unblock(t *testing.T) {
	prizes := []wheel.Prize{{Name: "A", Color: "#111111"}, {Name: "B", Color: "#222222"}}
	opts := wheel.Options{
		Spin:     wheel.SpinOptions{},
		Surfaces: wheel.DefaultSurfaces(),
		Renderer: wheel.TimerRenderer{},
	}
	rep, err := simulate(prizes, opts, 200, true)
	if err != nil {
		t.Fatal(err)
	}
	if rep.eligible != 2 {
		t.Errorf("eligible %d, want 2", rep.eligible)
	}
	if rep.rows[1].count == 0 {
		t.Error("unblocked prize never won in 200 spins")
	}
}
