package session

import (
	"sync"

	"github.com/joblens/joblens/internal/realtime"
)

// PlaybackSink records the track currently attached for one kind. It
// stands in for the browser's video/audio element in this service.
type PlaybackSink struct {
	mu      sync.Mutex
	current *realtime.Track
}

func NewPlaybackSink() *PlaybackSink { return &PlaybackSink{} }

func (s *PlaybackSink) Attach(track realtime.Track) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = &track
}

func (s *PlaybackSink) Detach() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
}

// Current returns the attached track, if any.
func (s *PlaybackSink) Current() (realtime.Track, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return realtime.Track{}, false
	}
	return *s.current, true
}

// DefaultSinks builds one playback sink per track kind.
func DefaultSinks() map[realtime.TrackKind]MediaSink {
	return map[realtime.TrackKind]MediaSink{
		realtime.TrackVideo: NewPlaybackSink(),
		realtime.TrackAudio: NewPlaybackSink(),
	}
}
