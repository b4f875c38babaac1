package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WSTransport speaks the media server's signaling protocol over a
// websocket. It only handles the control plane; media decoding is the
// playback layer's concern.
type WSTransport struct {
	dialer *websocket.Dialer
}

func NewWSTransport() *WSTransport {
	return &WSTransport{
		dialer: &websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
			ReadBufferSize:   4096,
			WriteBufferSize:  4096,
		},
	}
}

func (t *WSTransport) Dial(ctx context.Context, serviceURL, token string) (Conn, error) {
	if err := ValidateServiceURL(serviceURL); err != nil {
		return nil, err
	}

	headers := http.Header{}
	headers.Set("Authorization", "Bearer "+token)

	conn, _, err := t.dialer.DialContext(ctx, serviceURL, headers)
	if err != nil {
		return nil, fmt.Errorf("dial signaling websocket: %w", err)
	}

	c := &wsConn{conn: conn, events: make(chan Event, 64)}
	if err := c.writeJSON(map[string]any{"type": "join"}); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("send join frame: %w", err)
	}
	go c.readLoop()
	return c, nil
}

type wsConn struct {
	conn      *websocket.Conn
	writeMu   sync.Mutex
	closeOnce sync.Once
	events    chan Event
}

// signalFrame is the wire shape of one inbound signaling message.
type signalFrame struct {
	Type        string `json:"type"`
	TrackID     string `json:"track_id"`
	TrackKind   string `json:"track_kind"`
	Participant string `json:"participant"`
	Reason      string `json:"reason"`
}

// readLoop is the sole sender on the events channel and closes it on exit.
func (c *wsConn) readLoop() {
	defer close(c.events)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.events <- Event{Type: EventDisconnected, Reason: "signaling connection lost"}
			return
		}
		var frame signalFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			continue
		}
		switch frame.Type {
		case "connected", "join_ack":
			c.events <- Event{Type: EventConnected}
		case "disconnected", "room_closed":
			c.events <- Event{Type: EventDisconnected, Reason: frame.Reason}
			return
		case "track_published", "track_subscribed":
			c.events <- Event{Type: EventTrackSubscribed, Track: trackFromFrame(frame)}
		case "track_unpublished", "track_unsubscribed":
			c.events <- Event{Type: EventTrackUnsubscribed, Track: trackFromFrame(frame)}
		default:
			// Unknown control frames are ignored.
		}
	}
}

func trackFromFrame(f signalFrame) Track {
	kind := TrackKind(f.TrackKind)
	if kind != TrackAudio && kind != TrackVideo {
		kind = TrackVideo
	}
	return Track{ID: f.TrackID, Kind: kind, Participant: f.Participant}
}

func (c *wsConn) writeJSON(payload map[string]any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return c.conn.WriteJSON(payload)
}

func (c *wsConn) Events() <-chan Event { return c.events }

func (c *wsConn) Close() error {
	var retErr error
	c.closeOnce.Do(func() {
		_ = c.writeJSON(map[string]any{"type": "leave"})
		retErr = c.conn.Close()
	})
	return retErr
}
