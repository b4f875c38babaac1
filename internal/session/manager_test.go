package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/joblens/joblens/internal/realtime"
)

func TestManagerCreateAndGet(t *testing.T) {
	m := newTestManager(realtime.NewMockTransport())

	c := m.Create("alice", "room-1", "recruiter-agent")
	if c.ID() == "" {
		t.Fatalf("Create() returned a controller without an ID")
	}
	got, err := m.Get(c.ID())
	if err != nil {
		t.Fatalf("Get(%q) error = %v", c.ID(), err)
	}
	if got != c {
		t.Fatalf("Get() returned a different controller")
	}
	if m.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", m.Count())
	}
}

func TestManagerGetUnknown(t *testing.T) {
	m := newTestManager(realtime.NewMockTransport())
	if _, err := m.Get("nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestManagerRemoveDisconnects(t *testing.T) {
	tr := realtime.NewMockTransport()
	m := newTestManager(tr)
	c := m.Create("alice", "room-1", "")
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	if err := m.Remove(c.ID()); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if m.Count() != 0 {
		t.Fatalf("Count() after remove = %d, want 0", m.Count())
	}
	if tr.OpenCount() != 0 {
		t.Fatalf("remove left the transport connection open")
	}
	if err := m.Remove(c.ID()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Remove(removed) error = %v, want ErrNotFound", err)
	}
}

func TestManagerConnectedCount(t *testing.T) {
	tr := realtime.NewMockTransport()
	m := newTestManager(tr)

	a := m.Create("alice", "room-a", "")
	m.Create("bob", "room-b", "")
	if err := a.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	if got := m.ConnectedCount(); got != 1 {
		t.Fatalf("ConnectedCount() = %d, want 1", got)
	}
	a.Disconnect()
	if got := m.ConnectedCount(); got != 0 {
		t.Fatalf("ConnectedCount() after disconnect = %d, want 0", got)
	}
}

func TestManagerExpiresInactiveSessions(t *testing.T) {
	tr := realtime.NewMockTransport()
	m := NewManager(&fakeIssuer{}, &fakeGenerator{}, tr, time.Second, 20*time.Millisecond)

	var expired []string
	m.SetExpireHook(func(c *Controller) {
		expired = append(expired, c.ID())
	})

	c := m.Create("alice", "room-1", "")
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	time.Sleep(40 * time.Millisecond)
	m.expireInactive()

	if m.Count() != 0 {
		t.Fatalf("Count() after expiry = %d, want 0", m.Count())
	}
	if len(expired) != 1 || expired[0] != c.ID() {
		t.Fatalf("expire hook saw %v, want [%s]", expired, c.ID())
	}
	if tr.OpenCount() != 0 {
		t.Fatalf("expiry left the transport connection open")
	}
	if got := c.Snapshot().ConnectionState; got != StateDisconnected {
		t.Fatalf("expired session state = %v, want disconnected", got)
	}
}

func TestManagerKeepsActiveSessions(t *testing.T) {
	m := NewManager(&fakeIssuer{}, &fakeGenerator{}, realtime.NewMockTransport(), time.Second, time.Hour)

	m.Create("alice", "room-1", "")
	m.expireInactive()

	if m.Count() != 1 {
		t.Fatalf("active session was expired early")
	}
}

func TestManagerJanitorRuns(t *testing.T) {
	m := NewManager(&fakeIssuer{}, &fakeGenerator{}, realtime.NewMockTransport(), time.Second, 10*time.Millisecond)
	m.Create("alice", "room-1", "")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.StartJanitor(ctx, 10*time.Millisecond)

	deadline := time.Now().Add(time.Second)
	for m.Count() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("janitor never expired the idle session")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
