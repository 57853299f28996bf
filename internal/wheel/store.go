package wheel

import (
	"context"
	"log/slog"
	"time"

	"prizewheel/internal/ledger"
	"prizewheel/internal/logger/sl"
	"prizewheel/pkg/realtime"
)

// SSE event names published per widget.
const (
	EventWheel  = "wheel"
	EventResult = "result"
)

const recordTimeout = 5 * time.Second

// Store holds one widget per visitor and delegates to realtime.RoomStore for
// lookup and broadcast.
type Store struct {
	r      *realtime.RoomStore[*Widget]
	prizes []Prize
	opts   Options
	ledger ledger.Ledger
	log    *slog.Logger
}

// NewStore checks the prize list once so widget creation cannot fail later.
func NewStore(prizes []Prize, opts Options, l ledger.Ledger, log *slog.Logger) (*Store, error) {
	if _, err := NewCatalog(prizes, nil); err != nil {
		return nil, err
	}
	if l == nil {
		l = ledger.NewMemory()
	}
	if log == nil {
		log = sl.Discard()
	}
	opts.Logger = log
	own := make([]Prize, len(prizes))
	copy(own, prizes)
	return &Store{
		r:      realtime.NewRoomStore[*Widget](),
		prizes: own,
		opts:   opts,
		ledger: l,
		log:    log,
	}, nil
}

// GetOrCreate returns the visitor's widget, building it on first use.
func (s *Store) GetOrCreate(visitorID string) *Widget {
	room, created := s.r.GetOrCreate(visitorID, func() *Widget {
		w, err := NewWidget(visitorID, s.prizes, s.opts)
		if err != nil {
			// prizes were validated in NewStore
			panic(err)
		}
		return w
	})
	if created {
		s.log.Debug("widget created", slog.String("visitor", visitorID))
	}
	return room.State
}

// Get returns an existing widget.
func (s *Store) Get(visitorID string) (*Widget, bool) {
	room, ok := s.r.Get(visitorID)
	if !ok {
		return nil, false
	}
	return room.State, true
}

// Spin starts a spin on the visitor's widget. When it resolves the win goes
// to the ledger and subscribers get a result event.
func (s *Store) Spin(visitorID string) (Pending, error) {
	w := s.GetOrCreate(visitorID)
	return w.Spin(func(res SpinResult) {
		s.resolve(visitorID, res)
	})
}

func (s *Store) resolve(visitorID string, res SpinResult) {
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	win := ledger.Win{
		VisitorID:  visitorID,
		Prize:      res.Prize.Name,
		FinalAngle: res.FinalAngle,
		WonAt:      time.Now().UTC(),
	}
	if err := s.ledger.RecordWin(ctx, win); err != nil {
		s.log.Error("failed to record win",
			slog.String("visitor", visitorID),
			slog.String("prize", win.Prize),
			sl.Err(err))
	} else {
		s.log.Info("spin resolved",
			slog.String("visitor", visitorID),
			slog.String("prize", win.Prize),
			slog.Float64("final_angle", win.FinalAngle))
	}
	s.Publish(visitorID, realtime.Event{Name: EventResult, Data: res.Prize.Name})
}

// Reset force-resets the visitor's widget, if any. A spin cut short by the
// reset is resolved on the spot: the prize was already announced, so it is
// recorded like a completed spin.
func (s *Store) Reset(visitorID string) bool {
	w, ok := s.Get(visitorID)
	if !ok {
		return false
	}
	if pending, interrupted := w.ForceReset(); interrupted {
		s.resolve(visitorID, interruptedResult(pending))
	}
	s.Publish(visitorID, realtime.Event{Name: EventWheel})
	return true
}

func interruptedResult(p Pending) SpinResult {
	return SpinResult{
		Generation: p.Generation,
		Prize:      p.Prize,
		FinalAngle: p.FinalAngle,
	}
}

// Resize schedules a debounced layout rebuild and publishes the new wheel
// once it lands.
func (s *Store) Resize(visitorID string, viewportWidth int) bool {
	w := s.GetOrCreate(visitorID)
	return w.Resize(viewportWidth, func(Layout) {
		s.Publish(visitorID, realtime.Event{Name: EventWheel})
	})
}

// HasPlayed asks the ledger whether the visitor already won something.
func (s *Store) HasPlayed(ctx context.Context, visitorID string) (bool, error) {
	return s.ledger.HasPlayed(ctx, visitorID)
}

// LastWin returns the visitor's latest ledger entry.
func (s *Store) LastWin(ctx context.Context, visitorID string) (ledger.Win, error) {
	return s.ledger.LastWin(ctx, visitorID)
}

// Remove closes and forgets the visitor's widget.
func (s *Store) Remove(visitorID string) bool {
	w, ok := s.r.Delete(visitorID)
	if !ok {
		return false
	}
	if pending, interrupted := w.Close(); interrupted {
		s.resolve(visitorID, interruptedResult(pending))
	}
	return true
}

// Len returns the number of live widgets.
func (s *Store) Len() int {
	return s.r.Len()
}

// Broadcaster returns the SSE broadcaster for a widget.
func (s *Store) Broadcaster(visitorID string) *realtime.Broadcaster {
	return s.r.Broadcaster(visitorID)
}

// Publish notifies subscribers of a widget.
func (s *Store) Publish(visitorID string, event realtime.Event) {
	s.r.Publish(visitorID, event)
}

// RunJanitor evicts widgets left untouched for longer than ttl. Widgets with
// a spin in flight are kept until it resolves.
func (s *Store) RunJanitor(ctx context.Context, every, ttl time.Duration) {
	s.r.RunJanitor(ctx, every, idleLongerThan(ttl), func(id string, w *Widget) {
		w.Close()
		s.log.Debug("widget evicted", slog.String("visitor", id))
	})
}

// Sweep runs one eviction pass immediately.
func (s *Store) Sweep(now time.Time, ttl time.Duration) int {
	return s.r.Sweep(now, idleLongerThan(ttl), func(_ string, w *Widget) {
		w.Close()
	})
}

func idleLongerThan(ttl time.Duration) func(*Widget, time.Time) bool {
	return func(w *Widget, now time.Time) bool {
		return !w.controller.Spinning() && w.IdleFor(now) > ttl
	}
}

// Shutdown stops the janitor.
func (s *Store) Shutdown() {
	s.r.StopJanitor()
}
