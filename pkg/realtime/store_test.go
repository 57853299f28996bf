package realtime

import (
	"context"
	"testing"
	"time"
)

func TestNewRoomStore(t *testing.T) {
	s := NewRoomStore[string]()
	if s == nil {
		t.Fatal("NewRoomStore returned nil")
	}
	if s.Len() != 0 {
		t.Errorf("Len %d, want 0", s.Len())
	}
}

func TestRoomStore_Create_Get(t *testing.T) {
	s := NewRoomStore[string]()
	s.Create("room1", "state1")
	room, ok := s.Get("room1")
	if !ok {
		t.Fatal("Get returned false for existing room")
	}
	if room.ID != "room1" {
		t.Errorf("room ID %q, want room1", room.ID)
	}
	if room.State != "state1" {
		t.Errorf("room State %q, want state1", room.State)
	}

	_, ok = s.Get("nonexistent")
	if ok {
		t.Error("Get should return false for missing ID")
	}
}

func TestRoomStore_GetOrCreate(t *testing.T) {
	s := NewRoomStore[int]()
	calls := 0
	build := func() int {
		calls++
		return 42
	}

	r1, created := s.GetOrCreate("v1", build)
	if !created {
		t.Error("first GetOrCreate should create")
	}
	r2, created := s.GetOrCreate("v1", build)
	if created {
		t.Error("second GetOrCreate should not create")
	}
	if r1 != r2 {
		t.Error("GetOrCreate returned different rooms")
	}
	if calls != 1 {
		t.Errorf("newState called %d times, want 1", calls)
	}
}

func TestRoomStore_Publish(t *testing.T) {
	s := NewRoomStore[string]()
	s.Create("r1", "x")
	hub := s.Broadcaster("r1")
	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	s.Publish("r1", Event{Name: "wheel"})
	got := <-ch
	if got.Name != "wheel" {
		t.Errorf("got %q, want wheel", got.Name)
	}

	// unknown room is a no-op
	s.Publish("missing", Event{Name: "wheel"})
}

func TestRoomStore_DeleteClosesSubscribers(t *testing.T) {
	s := NewRoomStore[string]()
	s.Create("r1", "x")
	ch := s.Broadcaster("r1").Subscribe()

	state, ok := s.Delete("r1")
	if !ok || state != "x" {
		t.Fatalf("Delete = %q, %v; want x, true", state, ok)
	}
	if _, open := <-ch; open {
		t.Error("subscriber channel should be closed after Delete")
	}
	if _, ok := s.Delete("r1"); ok {
		t.Error("second Delete should report false")
	}
}

func TestRoomStore_Sweep(t *testing.T) {
	s := NewRoomStore[time.Time]()
	now := time.Now().UTC()
	s.Create("old", now.Add(-time.Hour))
	s.Create("fresh", now)

	var evicted []string
	n := s.Sweep(now, func(lastSeen time.Time, now time.Time) bool {
		return now.Sub(lastSeen) > 30*time.Minute
	}, func(id string, _ time.Time) {
		evicted = append(evicted, id)
	})
	if n != 1 {
		t.Fatalf("Sweep removed %d, want 1", n)
	}
	if len(evicted) != 1 || evicted[0] != "old" {
		t.Errorf("evicted %v, want [old]", evicted)
	}
	if _, ok := s.Get("fresh"); !ok {
		t.Error("fresh room should survive")
	}
}

func TestRoomStore_RunJanitor(t *testing.T) {
	s := NewRoomStore[bool]()
	s.Create("expired", true)

	done := make(chan string, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.RunJanitor(ctx, 5*time.Millisecond, func(expired bool, _ time.Time) bool {
		return expired
	}, func(id string, _ bool) {
		done <- id
	})
	// second call is ignored
	s.RunJanitor(ctx, time.Millisecond, func(bool, time.Time) bool { return true }, nil)

	select {
	case id := <-done:
		if id != "expired" {
			t.Errorf("evicted %q, want expired", id)
		}
	case <-time.After(time.Second):
		t.Fatal("janitor did not sweep")
	}
	s.StopJanitor()
}
