package session

import (
	"context"
	"errors"
	"time"

	"github.com/joblens/joblens/internal/avatar"
	"github.com/joblens/joblens/internal/realtime"
	"github.com/joblens/joblens/internal/token"
)

var (
	ErrNotFound = errors.New("session not found")
	// ErrTransportFailure wraps a failed or timed-out connection attempt.
	// Recoverable: the caller may retry Connect.
	ErrTransportFailure = errors.New("transport connection failed")
)

// ConnectionState is the controller's position in the connect lifecycle.
type ConnectionState string

const (
	StateDisconnected ConnectionState = "disconnected"
	StateConnecting   ConnectionState = "connecting"
	StateConnected    ConnectionState = "connected"
)

// SpeakingState reflects whether an avatar round-trip is outstanding.
type SpeakingState string

const (
	SpeakingIdle   SpeakingState = "idle"
	SpeakingActive SpeakingState = "speaking"
)

// Message is one submitted prompt, kept in an append-only in-memory log
// for display; the display layer shows only the tail.
type Message struct {
	Text   string    `json:"text"`
	SentAt time.Time `json:"sent_at"`
}

// Snapshot is the JSON view of one session's observable state.
type Snapshot struct {
	ID              string           `json:"session_id"`
	ConnectionState ConnectionState  `json:"connection_state"`
	SpeakingState   SpeakingState    `json:"speaking_state"`
	RoomName        string           `json:"room_name,omitempty"`
	Identity        string           `json:"identity,omitempty"`
	Messages        []Message        `json:"messages"`
	Tracks          []realtime.Track `json:"tracks"`
	Diagnostic      string           `json:"diagnostic,omitempty"`
	StartedAt       time.Time        `json:"started_at"`
	LastActivityAt  time.Time        `json:"last_activity_at"`
}

// TokenSource mints one credential per connection attempt.
type TokenSource interface {
	Mint(req token.Request) (token.Grant, error)
}

// Generator is the avatar request proxy as seen by the controller.
type Generator interface {
	Generate(ctx context.Context, text string) (avatar.Response, error)
}

// MediaSink receives an inbound media track for playback. Detach is
// called before the track reference is discarded.
type MediaSink interface {
	Attach(track realtime.Track)
	Detach()
}
