package realtime

import (
	"context"
	"sync"
	"time"
)

// MockTransport is a local stand-in used when no media server is
// configured and in tests. Dials always succeed after a short scripted
// delay and publish one video and one audio track.
type MockTransport struct {
	// ConfirmDelay postpones the connected event; zero means immediate.
	ConfirmDelay time.Duration
	// FailDial makes every Dial return this error instead of a conn.
	FailDial error
	// Silent suppresses the automatic connected event so callers can
	// exercise their connection timeout.
	Silent bool

	mu    sync.Mutex
	conns []*MockConn
}

func NewMockTransport() *MockTransport { return &MockTransport{} }

func (t *MockTransport) Dial(ctx context.Context, serviceURL, token string) (Conn, error) {
	if err := ValidateServiceURL(serviceURL); err != nil {
		return nil, err
	}
	if t.FailDial != nil {
		return nil, t.FailDial
	}

	c := &MockConn{events: make(chan Event, 64)}
	t.mu.Lock()
	t.conns = append(t.conns, c)
	t.mu.Unlock()

	if !t.Silent {
		delay := t.ConfirmDelay
		go func() {
			if delay > 0 {
				select {
				case <-ctx.Done():
					return
				case <-time.After(delay):
				}
			}
			c.Emit(Event{Type: EventConnected})
			c.Emit(Event{Type: EventTrackSubscribed, Track: Track{ID: "mock-video", Kind: TrackVideo, Participant: "avatar"}})
			c.Emit(Event{Type: EventTrackSubscribed, Track: Track{ID: "mock-audio", Kind: TrackAudio, Participant: "avatar"}})
		}()
	}
	return c, nil
}

// Conns returns every connection this transport has handed out.
func (t *MockTransport) Conns() []*MockConn {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*MockConn, len(t.conns))
	copy(out, t.conns)
	return out
}

// OpenCount reports how many handed-out connections are still open.
func (t *MockTransport) OpenCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, c := range t.conns {
		if !c.Closed() {
			n++
		}
	}
	return n
}

// MockConn is a scriptable connection; tests drive it through Emit.
type MockConn struct {
	mu     sync.Mutex
	events chan Event
	closed bool
}

func (c *MockConn) Events() <-chan Event { return c.events }

// Emit delivers one event unless the connection is already closed.
func (c *MockConn) Emit(ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.events <- ev
}

func (c *MockConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	close(c.events)
	return nil
}

func (c *MockConn) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
