package realtime

import (
	"context"
	"sync"
	"time"
)

// Room holds state and a broadcaster for one room.
type Room[T any] struct {
	ID    string
	State T
	hub   *Broadcaster
}

// RoomStore manages rooms and their broadcasters.
type RoomStore[T any] struct {
	mu      sync.RWMutex
	rooms   map[string]*Room[T]
	janitor context.CancelFunc
}

// NewRoomStore creates an empty room store.
func NewRoomStore[T any]() *RoomStore[T] {
	return &RoomStore[T]{
		rooms: make(map[string]*Room[T]),
	}
}

// Create adds a room with the given id and state, and a new Broadcaster.
// An existing room with the same id is replaced.
func (s *RoomStore[T]) Create(id string, state T) *Room[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := &Room[T]{ID: id, State: state, hub: NewBroadcaster()}
	s.rooms[id] = r
	return r
}

// GetOrCreate returns the room for id, building its state with newState when
// the room does not exist yet. created reports whether newState ran.
func (s *RoomStore[T]) GetOrCreate(id string, newState func() T) (room *Room[T], created bool) {
	s.mu.RLock()
	r, ok := s.rooms[id]
	s.mu.RUnlock()
	if ok {
		return r, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.rooms[id]; ok {
		return r, false
	}
	r = &Room[T]{ID: id, State: newState(), hub: NewBroadcaster()}
	s.rooms[id] = r
	return r, true
}

// Get returns the room by ID if it exists.
func (s *RoomStore[T]) Get(id string) (*Room[T], bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[id]
	return r, ok
}

// Delete removes the room and closes its broadcaster.
func (s *RoomStore[T]) Delete(id string) (T, bool) {
	s.mu.Lock()
	r, ok := s.rooms[id]
	if ok {
		delete(s.rooms, id)
	}
	s.mu.Unlock()
	if !ok {
		var zero T
		return zero, false
	}
	if r.hub != nil {
		r.hub.Close()
	}
	return r.State, true
}

// Len returns the number of rooms.
func (s *RoomStore[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

// Publish notifies subscribers of the room's broadcaster.
func (s *RoomStore[T]) Publish(id string, event Event) {
	s.mu.RLock()
	r, ok := s.rooms[id]
	s.mu.RUnlock()
	if !ok || r.hub == nil {
		return
	}
	r.hub.Publish(event)
}

// Broadcaster returns the broadcaster for the room, creating it if the room exists but had none.
// Unknown rooms get a detached broadcaster so callers never deal with nil.
func (s *RoomStore[T]) Broadcaster(id string) *Broadcaster {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	if !ok {
		return NewBroadcaster()
	}
	if r.hub == nil {
		r.hub = NewBroadcaster()
	}
	return r.hub
}

// Sweep deletes every room for which expired returns true and hands the
// removed state to evicted. It returns the number of rooms removed.
func (s *RoomStore[T]) Sweep(now time.Time, expired func(state T, now time.Time) bool, evicted func(id string, state T)) int {
	s.mu.RLock()
	var ids []string
	for id, r := range s.rooms {
		if expired(r.State, now) {
			ids = append(ids, id)
		}
	}
	s.mu.RUnlock()

	removed := 0
	for _, id := range ids {
		state, ok := s.Delete(id)
		if !ok {
			continue
		}
		removed++
		if evicted != nil {
			evicted(id, state)
		}
	}
	return removed
}

// RunJanitor sweeps the store every interval until ctx is done or StopJanitor
// is called. A second call while a janitor is running is ignored.
func (s *RoomStore[T]) RunJanitor(ctx context.Context, every time.Duration, expired func(state T, now time.Time) bool, evicted func(id string, state T)) {
	s.mu.Lock()
	if s.janitor != nil {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	s.janitor = cancel
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			s.janitor = nil
			s.mu.Unlock()
		}()

		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				s.Sweep(now.UTC(), expired, evicted)
			}
		}
	}()
}

// StopJanitor cancels the running janitor, if any.
func (s *RoomStore[T]) StopJanitor() {
	s.mu.Lock()
	cancel := s.janitor
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}
