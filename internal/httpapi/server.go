package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/joblens/joblens/internal/account"
	"github.com/joblens/joblens/internal/avatar"
	"github.com/joblens/joblens/internal/config"
	"github.com/joblens/joblens/internal/jobs"
	"github.com/joblens/joblens/internal/observability"
	"github.com/joblens/joblens/internal/session"
	"github.com/joblens/joblens/internal/token"
)

type Server struct {
	cfg      config.Config
	issuer   *token.Issuer
	avatar   *avatar.Client
	sessions *session.Manager
	jobs     jobs.Store
	account  *account.Service
	metrics  *observability.Metrics
	latency  *observability.LatencyWindow
}

func New(cfg config.Config, issuer *token.Issuer, avatarClient *avatar.Client, sessions *session.Manager, jobStore jobs.Store, accounts *account.Service, metrics *observability.Metrics, latency *observability.LatencyWindow) *Server {
	return &Server{
		cfg:      cfg,
		issuer:   issuer,
		avatar:   avatarClient,
		sessions: sessions,
		jobs:     jobStore,
		account:  accounts,
		metrics:  metrics,
		latency:  latency,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	// Frontend-compatible surface.
	r.Post("/api/token", s.handleMintToken)
	r.Post("/api/avatar/generate", s.handleAvatarGenerate)

	r.Get("/v1/status", s.handleStatus)
	r.Get("/v1/perf/latency", s.handlePerfLatency)

	r.Post("/v1/sessions", s.handleCreateSession)
	r.Get("/v1/sessions", s.handleListSessions)
	r.Get("/v1/sessions/{id}", s.handleGetSession)
	r.Post("/v1/sessions/{id}/connect", s.handleConnectSession)
	r.Post("/v1/sessions/{id}/messages", s.handleSendMessage)
	r.Post("/v1/sessions/{id}/disconnect", s.handleDisconnectSession)
	r.Delete("/v1/sessions/{id}", s.handleDeleteSession)
	r.Delete("/v1/sessions/{id}/diagnostic", s.handleClearDiagnostic)

	r.Get("/v1/jobs", s.handleListJobs)
	r.Get("/v1/jobs/{id}", s.handleGetJob)
	r.Put("/v1/jobs/{id}/liked", s.handleSetLiked)
	r.Post("/v1/jobs/{id}/apply", s.handleApplyJob)

	r.Get("/v1/profile", s.handleGetProfile)
	r.Put("/v1/profile", s.handleUpdateProfile)
	r.Get("/v1/settings", s.handleGetSettings)
	r.Put("/v1/settings", s.handleUpdateSettings)
	r.Get("/v1/credits", s.handleGetCredits)
	r.Post("/v1/credits/purchase", s.handlePurchaseCredits)
	r.Get("/v1/subscription", s.handleGetSubscription)
	r.Put("/v1/subscription", s.handleChangePlan)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"rtc_configured": s.cfg.RTCConfigured(),
		"avatar_mode":    s.avatarMode(),
		"job_store_mode": s.jobStoreMode(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (s *Server) avatarMode() string {
	if s.avatar != nil && s.avatar.Configured() {
		return "live"
	}
	return "mock"
}

func (s *Server) jobStoreMode() string {
	if strings.TrimSpace(s.cfg.DatabaseURL) != "" {
		return "postgres"
	}
	return "in-memory"
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "eof") {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
