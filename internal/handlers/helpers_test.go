package handlers

import (
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"prizewheel/internal/ledger"
	"prizewheel/internal/persistence"
	"prizewheel/internal/visitor"
	"prizewheel/internal/wheel"
)

const testVisitor = "6f1c2a4e-8d0b-4c1e-9a57-3f2d1e0b9c88"

var testPrizes = []wheel.Prize{
	{Name: "Pizza Média", Icon: "🍕", Color: "#e63946"},
	{Name: "Refrigerante 2L", Icon: "🥤", Color: "#f4a261"},
	{Name: "Sobremesa", Icon: "🍰", Color: "#2a9d8f"},
	{Name: "Borda Recheada", Icon: "🧀", Color: "#e9c46a"},
	{Name: "Frete Grátis", Icon: "🛵", Color: "#264653"},
	{Name: "Combo Casal gratuito", Icon: "❤️", Color: "#8338ec"},
}

// heldRenderer keeps every animation open until release is called.
type heldRenderer struct {
	mu    sync.Mutex
	dones []func()
}

func (r *heldRenderer) Build(prizes []wheel.Prize, viewportWidth int) wheel.Layout {
	return wheel.BuildLayout(prizes, viewportWidth)
}

func (r *heldRenderer) Animate(_ float64, _ time.Duration, done func()) {
	r.mu.Lock()
	r.dones = append(r.dones, done)
	r.mu.Unlock()
}

func (r *heldRenderer) release() {
	r.mu.Lock()
	dones := r.dones
	r.dones = nil
	r.mu.Unlock()
	for _, done := range dones {
		done()
	}
}

type fixture struct {
	store    *wheel.Store
	ledger   *ledger.Memory
	renderer *heldRenderer
	jar      *persistence.Jar
	router   chi.Router
}

func newFixture(t *testing.T, surfaces wheel.Surfaces) *fixture {
	t.Helper()
	f := &fixture{
		ledger:   ledger.NewMemory(),
		renderer: &heldRenderer{},
		jar:      persistence.NewJar(false),
	}
	store, err := wheel.NewStore(testPrizes, wheel.Options{
		Spin:        wheel.DefaultSpinOptions(),
		ResizeQuiet: 10 * time.Millisecond,
		Surfaces:    surfaces,
		Renderer:    f.renderer,
	}, f.ledger, nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(store.Shutdown)
	f.store = store

	f.router = chi.NewRouter()
	NewHomeHandler(store, f.jar, nil).RegisterRoutes(f.router)
	wh := NewWheelHandler(store, f.jar, nil)
	wh.RegisterRoutes(f.router)
	wh.RegisterStream(f.router)
	return f
}

func asVisitor(req *http.Request) *http.Request {
	return req.WithContext(visitor.WithID(req.Context(), testVisitor))
}

func cookieValue(t *testing.T, cookies []*http.Cookie, name string) string {
	t.Helper()
	for _, c := range cookies {
		if c.Name == name {
			return c.Value
		}
	}
	t.Fatalf("cookie %s not set", name)
	return ""
}
