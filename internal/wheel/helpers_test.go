package wheel

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"
)

// scriptedRNG replays queued values; an empty queue yields 0 for Intn and 0.5
// (zero jitter) for Float64.
type scriptedRNG struct {
	mu     sync.Mutex
	ints   []int
	floats []float64
}

func (r *scriptedRNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[0]
	r.ints = r.ints[1:]
	return v % n
}

func (r *scriptedRNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.floats) == 0 {
		return 0.5
	}
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

type seededRNG struct {
	r *rand.Rand
}

func newSeededRNG() *seededRNG {
	return &seededRNG{r: rand.New(rand.NewPCG(7, 11))}
}

func (s *seededRNG) Intn(n int) int   { return s.r.IntN(n) }
func (s *seededRNG) Float64() float64 { return s.r.Float64() }

type animateCall struct {
	angle float64
	d     time.Duration
	done  func()
}

// manualRenderer records animations and completes them only when told to.
type manualRenderer struct {
	mu    sync.Mutex
	calls []animateCall
}

func (m *manualRenderer) Build(prizes []Prize, viewportWidth int) Layout {
	return BuildLayout(prizes, viewportWidth)
}

func (m *manualRenderer) Animate(angle float64, d time.Duration, done func()) {
	m.mu.Lock()
	m.calls = append(m.calls, animateCall{angle: angle, d: d, done: done})
	m.mu.Unlock()
}

func (m *manualRenderer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *manualRenderer) finish(i int) {
	m.mu.Lock()
	done := m.calls[i].done
	m.mu.Unlock()
	done()
}

func namedPrizes(n int) []Prize {
	prizes := make([]Prize, n)
	for i := range prizes {
		color := "#d10000"
		if i%2 == 1 {
			color = "#222222"
		}
		prizes[i] = Prize{Name: fmt.Sprintf("P%d", i), Color: color}
	}
	return prizes
}

func noExtraTurns() SpinOptions {
	return SpinOptions{Duration: DefaultSpinDuration}
}
