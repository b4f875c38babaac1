package realtime

import (
	"context"
	"errors"
	"fmt"
	"net/url"
)

// ErrInvalidScheme means the service URL does not use a real-time
// transport scheme. Grants are only valid against ws/wss endpoints.
var ErrInvalidScheme = errors.New("service URL must use ws or wss scheme")

// TrackKind distinguishes the playback sink a track attaches to.
type TrackKind string

const (
	TrackVideo TrackKind = "video"
	TrackAudio TrackKind = "audio"
)

// Track is one remote media publication.
type Track struct {
	ID          string    `json:"id"`
	Kind        TrackKind `json:"kind"`
	Participant string    `json:"participant"`
}

// EventType identifies connection lifecycle notifications.
type EventType string

const (
	EventConnected         EventType = "connected"
	EventDisconnected      EventType = "disconnected"
	EventTrackSubscribed   EventType = "track_subscribed"
	EventTrackUnsubscribed EventType = "track_unsubscribed"
)

// Event is one typed notification from the transport. The session
// controller is the sole subscriber.
type Event struct {
	Type   EventType
	Track  Track
	Reason string
}

// Conn is one live connection to a media room. Close releases the
// underlying resource; calling it more than once is a no-op.
type Conn interface {
	Events() <-chan Event
	Close() error
}

// Transport dials media rooms. Implementations: the websocket signaling
// client and the scripted mock.
type Transport interface {
	Dial(ctx context.Context, serviceURL, token string) (Conn, error)
}

// ValidateServiceURL rejects URLs a grant cannot be used against.
func ValidateServiceURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse service URL: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("%w: got %q", ErrInvalidScheme, u.Scheme)
	}
	return nil
}
