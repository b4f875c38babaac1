package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/joblens/joblens/internal/token"
)

type tokenAgentDispatch struct {
	AgentName string `json:"agent_name"`
}

type tokenRoomConfig struct {
	Agents []tokenAgentDispatch `json:"agents"`
}

type mintTokenRequest struct {
	ParticipantName string           `json:"participantName"`
	RoomName        string           `json:"roomName"`
	AgentName       string           `json:"agentName"`
	RoomConfig      *tokenRoomConfig `json:"room_config"`
}

// agent resolves the dispatch name from either accepted shape: the
// nested room_config.agents list, or the flat agentName shorthand.
func (r mintTokenRequest) agent() string {
	if r.RoomConfig != nil && len(r.RoomConfig.Agents) > 0 {
		return r.RoomConfig.Agents[0].AgentName
	}
	return r.AgentName
}

type mintTokenResponse struct {
	Token     string    `json:"token"`
	URL       string    `json:"url"`
	Identity  string    `json:"identity"`
	RoomName  string    `json:"roomName"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type mintTokenError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// handleMintToken mints one room credential per call. Credentials are
// short-lived bearer tokens, so responses must never be cached.
func (s *Server) handleMintToken(w http.ResponseWriter, r *http.Request) {
	var req mintTokenRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		s.metrics.TokensIssued.WithLabelValues("invalid").Inc()
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	start := time.Now()
	grant, err := s.issuer.Mint(token.Request{
		ParticipantName: req.ParticipantName,
		RoomName:        req.RoomName,
		AgentName:       req.agent(),
	})
	if err != nil {
		s.metrics.TokensIssued.WithLabelValues("error").Inc()
		respondJSON(w, http.StatusInternalServerError, mintTokenError{
			Error:   "Failed to generate token",
			Details: err.Error(),
		})
		return
	}
	s.latency.ObserveDuration("token_mint", time.Since(start))
	s.metrics.TokensIssued.WithLabelValues("ok").Inc()

	w.Header().Set("Cache-Control", "no-store")
	respondJSON(w, http.StatusOK, mintTokenResponse{
		Token:     grant.Token,
		URL:       grant.URL,
		Identity:  grant.Identity,
		RoomName:  grant.RoomName,
		ExpiresAt: grant.ExpiresAt,
	})
}
