package browser

import (
	"context"
	"testing"
	"time"
)

func newTestRegistry(ttl time.Duration) (*Registry, *int) {
	created := 0
	r := NewRegistry(ttl, func(id string) *Session {
		created++
		alerts := NewAlertQueue()
		c, _, _ := newTestController(&fakeBackend{}, Options{SessionID: id})
		return &Session{Controller: c, Alerts: alerts}
	})
	return r, &created
}

func TestRegistryGetCreatesOnce(t *testing.T) {
	r, created := newTestRegistry(time.Minute)

	a := r.Get("one")
	b := r.Get("one")
	if a != b {
		t.Error("Get returned different sessions for the same id")
	}
	if a.ID != "one" {
		t.Errorf("ID = %q", a.ID)
	}
	r.Get("two")
	if *created != 2 || r.Len() != 2 {
		t.Errorf("created = %d, len = %d, want 2/2", *created, r.Len())
	}

	if _, ok := r.Lookup("three"); ok {
		t.Error("Lookup created a session")
	}
}

func TestRegistrySweep(t *testing.T) {
	r, _ := newTestRegistry(time.Minute)
	now := time.Now()
	r.now = func() time.Time { return now }

	r.Get("idle")
	now = now.Add(45 * time.Second)
	r.Get("active")
	now = now.Add(30 * time.Second)

	if removed := r.Sweep(); removed != 1 {
		t.Errorf("Sweep() = %d, want 1", removed)
	}
	if _, ok := r.Lookup("idle"); ok {
		t.Error("idle session survived sweep")
	}
	if _, ok := r.Lookup("active"); !ok {
		t.Error("active session was swept")
	}
}

func TestRegistryRunStops(t *testing.T) {
	r, _ := newTestRegistry(10 * time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestAlertQueueDrain(t *testing.T) {
	q := NewAlertQueue()
	if got := q.Drain(); got == nil || len(got) != 0 {
		t.Errorf("Drain() on empty queue = %#v", got)
	}

	q.Alert(context.Background(), "first")
	q.Alert(context.Background(), "second")
	got := q.Drain()
	if len(got) != 2 || got[0] != "first" || got[1] != "second" {
		t.Errorf("Drain() = %v", got)
	}
	if len(q.Drain()) != 0 {
		t.Error("queue not emptied")
	}
}

func TestQueuedSessionsCollectAlerts(t *testing.T) {
	factory := QueuedSessions(&fakeBackend{}, &memorySaver{}, nil, Options{})
	r := NewRegistry(time.Minute, factory)

	s := r.Get("sess_a")
	if s.Alerts == nil {
		t.Fatal("queued session has no alert queue")
	}
	if err := s.Controller.FetchFormats(context.Background(), "  "); err == nil {
		t.Fatal("expected an error for an empty link")
	}

	alerts := s.Alerts.Drain()
	if len(alerts) != 1 || alerts[0] != MsgLinkRequired {
		t.Errorf("alerts = %q", alerts)
	}
	if other := r.Get("sess_b"); len(other.Alerts.Drain()) != 0 {
		t.Error("alerts leaked into another session")
	}
}
