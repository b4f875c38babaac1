package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/joblens/joblens/internal/session"
)

type createSessionRequest struct {
	ParticipantName string `json:"participantName"`
	RoomName        string `json:"roomName"`
	AgentName       string `json:"agentName"`
}

type sendMessageRequest struct {
	Text string `json:"text"`
}

// Each accepted avatar round-trip costs one credit from the account
// balance; silently ignored sends are free.
const messageCreditCost = 1

type sendMessageResponse struct {
	Status      string    `json:"status"`
	VideoURL    string    `json:"videoUrl,omitempty"`
	AudioStream string    `json:"audioStream,omitempty"`
	SessionID   string    `json:"sessionId,omitempty"`
	IsMock      bool      `json:"isMock,omitempty"`
	Message     string    `json:"message,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	c := s.sessions.Create(req.ParticipantName, req.RoomName, req.AgentName)
	s.metrics.ActiveSessions.Set(float64(s.sessions.Count()))
	s.metrics.SessionEvents.WithLabelValues("created").Inc()

	respondJSON(w, http.StatusCreated, c.Snapshot())
}

func (s *Server) handleListSessions(w http.ResponseWriter, _ *http.Request) {
	controllers := s.sessions.List()
	snaps := make([]session.Snapshot, 0, len(controllers))
	for _, c := range controllers {
		snaps = append(snaps, c.Snapshot())
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"sessions":  snaps,
		"count":     len(snaps),
		"connected": s.sessions.ConnectedCount(),
	})
}

func (s *Server) lookupSession(w http.ResponseWriter, r *http.Request) (*session.Controller, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		respondError(w, http.StatusBadRequest, "invalid_session_id", "missing session id")
		return nil, false
	}
	c, err := s.sessions.Get(id)
	if err != nil {
		respondError(w, http.StatusNotFound, "session_not_found", err.Error())
		return nil, false
	}
	return c, true
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	c, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, c.Snapshot())
}

func (s *Server) handleConnectSession(w http.ResponseWriter, r *http.Request) {
	c, ok := s.lookupSession(w, r)
	if !ok {
		return
	}

	start := time.Now()
	if err := c.Connect(r.Context()); err != nil {
		s.metrics.SessionEvents.WithLabelValues("connect_failed").Inc()
		respondError(w, http.StatusBadGateway, "transport_failure", err.Error())
		return
	}
	s.latency.ObserveDuration("transport_connect", time.Since(start))
	s.metrics.SessionEvents.WithLabelValues("connected").Inc()

	respondJSON(w, http.StatusOK, c.Snapshot())
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	c, ok := s.lookupSession(w, r)
	if !ok {
		return
	}

	var req sendMessageRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	if strings.TrimSpace(req.Text) != "" {
		if bal, _ := s.account.Spend(0); bal < messageCreditCost {
			respondError(w, http.StatusPaymentRequired, "insufficient_credits",
				"avatar messages cost 1 credit; purchase a package to continue")
			return
		}
	}

	start := time.Now()
	res, err := c.SendText(r.Context(), req.Text)
	if err != nil {
		respondError(w, http.StatusBadGateway, "avatar_failed", err.Error())
		return
	}
	now := time.Now().UTC()
	if res == nil {
		// Blank text, an in-flight prompt, or a disconnected session:
		// nothing was queued.
		respondJSON(w, http.StatusAccepted, sendMessageResponse{
			Status:    "ignored",
			Timestamp: now,
		})
		return
	}
	s.metrics.MessagesSent.Inc()
	s.account.Spend(messageCreditCost)
	s.latency.ObserveDuration("send_roundtrip", time.Since(start))

	respondJSON(w, http.StatusOK, sendMessageResponse{
		Status:      "sent",
		VideoURL:    res.VideoURL,
		AudioStream: res.AudioStream,
		SessionID:   res.SessionID,
		IsMock:      res.IsMock,
		Message:     res.Note,
		Timestamp:   now,
	})
}

func (s *Server) handleDisconnectSession(w http.ResponseWriter, r *http.Request) {
	c, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	c.Disconnect()
	s.metrics.SessionEvents.WithLabelValues("disconnected").Inc()
	respondJSON(w, http.StatusOK, c.Snapshot())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		respondError(w, http.StatusBadRequest, "invalid_session_id", "missing session id")
		return
	}
	if err := s.sessions.Remove(id); err != nil {
		respondError(w, http.StatusNotFound, "session_not_found", err.Error())
		return
	}
	s.metrics.ActiveSessions.Set(float64(s.sessions.Count()))
	s.metrics.SessionEvents.WithLabelValues("removed").Inc()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearDiagnostic(w http.ResponseWriter, r *http.Request) {
	c, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	c.ClearDiagnostic()
	respondJSON(w, http.StatusOK, c.Snapshot())
}
