package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/joblens/joblens/internal/avatar"
)

type avatarGenerateRequest struct {
	Text string `json:"text"`
}

type avatarMockData struct {
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

type avatarGenerateResponse struct {
	VideoURL    *string         `json:"videoUrl"`
	AudioStream *string         `json:"audioStream"`
	SessionID   string          `json:"sessionId,omitempty"`
	Message     string          `json:"message,omitempty"`
	MockData    *avatarMockData `json:"mockData,omitempty"`
	Timestamp   time.Time       `json:"timestamp"`
}

// handleAvatarGenerate proxies one text prompt to the avatar upstream.
// The only client error is blank text; upstream trouble always resolves
// to a 200 mock payload so the caller's playback loop keeps working.
func (s *Server) handleAvatarGenerate(w http.ResponseWriter, r *http.Request) {
	var req avatarGenerateRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		s.metrics.AvatarRequests.WithLabelValues("invalid").Inc()
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	start := time.Now()
	res, err := s.avatar.Generate(r.Context(), req.Text)
	if err != nil {
		if errors.Is(err, avatar.ErrEmptyText) {
			s.metrics.AvatarRequests.WithLabelValues("invalid").Inc()
			respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Text is required"})
			return
		}
		s.metrics.AvatarRequests.WithLabelValues("error").Inc()
		respondError(w, http.StatusInternalServerError, "avatar_failed", err.Error())
		return
	}
	elapsed := time.Since(start)
	s.metrics.ObserveAvatarLatency(elapsed)
	s.latency.ObserveDuration("avatar_generate", elapsed)

	now := time.Now().UTC()
	if res.IsMock {
		outcome := "fallback"
		if !s.avatar.Configured() {
			outcome = "mock"
		}
		s.metrics.AvatarRequests.WithLabelValues(outcome).Inc()
		s.latency.ObserveIndicator("avatar_" + outcome)
		respondJSON(w, http.StatusOK, avatarGenerateResponse{
			Message:   res.Note,
			MockData:  &avatarMockData{Text: req.Text, Timestamp: now},
			Timestamp: now,
		})
		return
	}

	s.metrics.AvatarRequests.WithLabelValues("live").Inc()
	respondJSON(w, http.StatusOK, avatarGenerateResponse{
		VideoURL:    &res.VideoURL,
		AudioStream: &res.AudioStream,
		SessionID:   res.SessionID,
		Timestamp:   now,
	})
}
