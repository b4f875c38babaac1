package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/joblens/joblens/internal/avatar"
	"github.com/joblens/joblens/internal/realtime"
	"github.com/joblens/joblens/internal/token"
)

// Controller owns the lifecycle of one real-time avatar session: minting
// a credential, holding exactly one transport connection, routing inbound
// tracks to playback sinks, and serializing text prompts through the
// avatar proxy. All operations are safe for concurrent use.
type Controller struct {
	id          string
	participant string
	roomName    string
	agentName   string

	issuer         TokenSource
	generator      Generator
	transport      realtime.Transport
	connectTimeout time.Duration

	mu           sync.Mutex
	connEpoch    uint64
	connState    ConnectionState
	speaking     bool
	conn         realtime.Conn
	messages     []Message
	sinks        map[realtime.TrackKind]MediaSink
	tracks       map[realtime.TrackKind]realtime.Track
	diagnostic   string
	startedAt    time.Time
	lastActivity time.Time
}

func newController(id, participant, roomName, agentName string, issuer TokenSource, generator Generator, transport realtime.Transport, connectTimeout time.Duration) *Controller {
	if connectTimeout <= 0 {
		connectTimeout = 10 * time.Second
	}
	now := time.Now().UTC()
	return &Controller{
		id:             id,
		participant:    participant,
		roomName:       roomName,
		agentName:      agentName,
		issuer:         issuer,
		generator:      generator,
		transport:      transport,
		connectTimeout: connectTimeout,
		connState:      StateDisconnected,
		sinks:          DefaultSinks(),
		tracks:         make(map[realtime.TrackKind]realtime.Track),
		startedAt:      now,
		lastActivity:   now,
	}
}

func (c *Controller) ID() string { return c.id }

// Connect drives disconnected -> connecting -> connected. A call while
// already connecting or connected is a no-op, so concurrent attempts can
// never hold two live transport connections. Any failure returns the
// controller to disconnected with a diagnostic. The attempt epoch lets a
// Disconnect that lands mid-connect win: a stale attempt abandons its
// connection instead of resurrecting the session.
func (c *Controller) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.connState != StateDisconnected {
		c.mu.Unlock()
		return nil
	}
	c.connEpoch++
	epoch := c.connEpoch
	c.connState = StateConnecting
	c.diagnostic = ""
	c.lastActivity = time.Now().UTC()
	c.mu.Unlock()

	grant, err := c.issuer.Mint(token.Request{
		ParticipantName: c.participant,
		RoomName:        c.roomName,
		AgentName:       c.agentName,
	})
	if err != nil {
		return c.failConnect(epoch, fmt.Errorf("mint credential: %w", err))
	}
	if grant.Token == "" || grant.URL == "" {
		return c.failConnect(epoch, errors.New("issuer returned an incomplete credential"))
	}
	if err := realtime.ValidateServiceURL(grant.URL); err != nil {
		return c.failConnect(epoch, err)
	}

	c.mu.Lock()
	c.roomName = grant.RoomName
	c.mu.Unlock()

	dialCtx, cancel := context.WithTimeout(ctx, c.connectTimeout)
	defer cancel()

	conn, err := c.transport.Dial(dialCtx, grant.URL, grant.Token)
	if err != nil {
		return c.failConnect(epoch, fmt.Errorf("dial transport: %w", err))
	}

	// The confirmation event races the connect timeout; whichever
	// settles first wins.
	for {
		select {
		case <-dialCtx.Done():
			_ = conn.Close()
			return c.failConnect(epoch, fmt.Errorf("connection timeout after %s", c.connectTimeout))
		case ev, ok := <-conn.Events():
			if !ok {
				return c.failConnect(epoch, errors.New("transport closed before confirming the connection"))
			}
			switch ev.Type {
			case realtime.EventConnected:
				c.mu.Lock()
				if c.connState != StateConnecting || c.connEpoch != epoch {
					// Disconnected (or superseded) while the dial was in
					// flight; the teardown stands. If no newer attempt owns
					// the session, drop any tracks this one attached
					// before confirmation.
					if c.connState == StateDisconnected {
						c.detachAllLocked()
					}
					c.mu.Unlock()
					_ = conn.Close()
					return nil
				}
				c.conn = conn
				c.connState = StateConnected
				c.lastActivity = time.Now().UTC()
				c.mu.Unlock()
				go c.eventLoop(conn)
				return nil
			case realtime.EventDisconnected:
				_ = conn.Close()
				return c.failConnect(epoch, errors.New("transport refused the connection"))
			case realtime.EventTrackSubscribed:
				c.attachTrack(ev.Track)
			case realtime.EventTrackUnsubscribed:
				c.detachTrack(ev.Track)
			}
		}
	}
}

func (c *Controller) failConnect(epoch uint64, cause error) error {
	c.mu.Lock()
	if c.connEpoch == epoch && c.connState == StateConnecting {
		c.connState = StateDisconnected
		c.conn = nil
		c.diagnostic = cause.Error()
	}
	c.mu.Unlock()
	return fmt.Errorf("%w: %v", ErrTransportFailure, cause)
}

// eventLoop is the sole subscriber of transport events for the life of
// one connection. It exits when the remote side tears down or the
// channel closes, reflecting the disconnect in controller state.
func (c *Controller) eventLoop(conn realtime.Conn) {
	for ev := range conn.Events() {
		switch ev.Type {
		case realtime.EventTrackSubscribed:
			c.attachTrack(ev.Track)
		case realtime.EventTrackUnsubscribed:
			c.detachTrack(ev.Track)
		case realtime.EventDisconnected:
			c.observeDisconnect(conn, ev.Reason)
			return
		}
	}
	c.observeDisconnect(conn, "transport closed")
}

func (c *Controller) attachTrack(track realtime.Track) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if sink, ok := c.sinks[track.Kind]; ok {
		sink.Attach(track)
	}
	c.tracks[track.Kind] = track
}

// detachTrack releases the sink before the track reference is discarded.
func (c *Controller) detachTrack(track realtime.Track) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if sink, ok := c.sinks[track.Kind]; ok {
		sink.Detach()
	}
	delete(c.tracks, track.Kind)
}

// observeDisconnect handles unsolicited teardown by the remote side.
// No reconnect is attempted.
func (c *Controller) observeDisconnect(conn realtime.Conn, reason string) {
	c.mu.Lock()
	if c.conn != conn {
		c.mu.Unlock()
		return
	}
	c.conn = nil
	c.connState = StateDisconnected
	c.speaking = false
	c.detachAllLocked()
	if strings.TrimSpace(reason) != "" {
		c.diagnostic = "disconnected: " + reason
	}
	c.mu.Unlock()
	_ = conn.Close()
}

// SendText submits one prompt through the avatar proxy. Blank text, an
// in-flight request, or a not-connected session make it a silent no-op
// (nil, nil): nothing is queued and nothing errs. The speaking guard
// serializes round-trips; it is cleared on every outcome.
func (c *Controller) SendText(ctx context.Context, text string) (*avatar.Response, error) {
	text = strings.TrimSpace(text)

	c.mu.Lock()
	if text == "" || c.speaking || c.connState != StateConnected {
		c.mu.Unlock()
		return nil, nil
	}
	c.speaking = true
	c.messages = append(c.messages, Message{Text: text, SentAt: time.Now().UTC()})
	c.lastActivity = time.Now().UTC()
	c.mu.Unlock()

	res, err := c.generator.Generate(ctx, text)

	c.mu.Lock()
	c.speaking = false
	c.lastActivity = time.Now().UTC()
	if err != nil {
		// Proxy-level error: dismissable diagnostic, never fatal to
		// the session. Mock fallbacks arrive as res, not err.
		c.diagnostic = err.Error()
	}
	c.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Disconnect releases the transport connection. Idempotent: calling it
// on an already-disconnected session has no observable effect.
func (c *Controller) Disconnect() {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.connState = StateDisconnected
	c.speaking = false
	c.detachAllLocked()
	c.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
}

func (c *Controller) detachAllLocked() {
	for kind := range c.tracks {
		if sink, ok := c.sinks[kind]; ok {
			sink.Detach()
		}
		delete(c.tracks, kind)
	}
}

// ClearDiagnostic dismisses the last surfaced diagnostic message.
func (c *Controller) ClearDiagnostic() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.diagnostic = ""
}

// Snapshot returns a copy of the observable session state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	speaking := SpeakingIdle
	if c.speaking {
		speaking = SpeakingActive
	}
	msgs := make([]Message, len(c.messages))
	copy(msgs, c.messages)
	tracks := make([]realtime.Track, 0, len(c.tracks))
	for _, tr := range c.tracks {
		tracks = append(tracks, tr)
	}

	return Snapshot{
		ID:              c.id,
		ConnectionState: c.connState,
		SpeakingState:   speaking,
		RoomName:        c.roomName,
		Identity:        c.participant,
		Messages:        msgs,
		Tracks:          tracks,
		Diagnostic:      c.diagnostic,
		StartedAt:       c.startedAt,
		LastActivityAt:  c.lastActivity,
	}
}

func (c *Controller) lastActivityAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActivity
}
