package httpapi

import "net/http"

type statusCheck struct {
	ID     string `json:"id"`
	Status string `json:"status"` // ok|warn|error
	Label  string `json:"label"`
	Detail string `json:"detail,omitempty"`
	Fix    string `json:"fix,omitempty"`
}

type statusResponse struct {
	RTCConfigured          bool          `json:"rtc_configured"`
	AvatarMode             string        `json:"avatar_mode"`
	JobStoreMode           string        `json:"job_store_mode"`
	SessionInactivityTTLMS int64         `json:"session_inactivity_ttl_ms"`
	Checks                 []statusCheck `json:"checks"`
}

// handleStatus reports which upstreams are wired so the frontend can
// tell a real deployment from a local mock one.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	checks := make([]statusCheck, 0, 4)

	if s.cfg.RTCConfigured() {
		checks = append(checks, statusCheck{
			ID:     "rtc",
			Status: "ok",
			Label:  "Realtime media transport",
			Detail: "token signing configured",
		})
	} else {
		checks = append(checks, statusCheck{
			ID:     "rtc",
			Status: "error",
			Label:  "Realtime media transport",
			Detail: "RTC_API_KEY, RTC_API_SECRET or RTC_SERVICE_URL missing",
			Fix:    "Set all three RTC_* variables; sessions fall back to the local mock transport until then.",
		})
	}

	if s.avatar != nil && s.avatar.Configured() {
		checks = append(checks, statusCheck{
			ID:     "avatar",
			Status: "ok",
			Label:  "Avatar upstream",
			Detail: "live",
		})
	} else {
		checks = append(checks, statusCheck{
			ID:     "avatar",
			Status: "warn",
			Label:  "Avatar upstream",
			Detail: "mock responses only",
			Fix:    "Set AVATAR_API_KEY and AVATAR_PERSONA_ID for live generation.",
		})
	}

	switch s.jobStoreMode() {
	case "postgres":
		checks = append(checks, statusCheck{
			ID:     "job_store",
			Status: "ok",
			Label:  "Job persistence",
			Detail: "postgres",
		})
	default:
		checks = append(checks, statusCheck{
			ID:     "job_store",
			Status: "warn",
			Label:  "Job persistence",
			Detail: "in-memory only",
			Fix:    "Set DATABASE_URL to persist liked and applied flags across restarts.",
		})
	}

	respondJSON(w, http.StatusOK, statusResponse{
		RTCConfigured:          s.cfg.RTCConfigured(),
		AvatarMode:             s.avatarMode(),
		JobStoreMode:           s.jobStoreMode(),
		SessionInactivityTTLMS: s.cfg.SessionInactivityTimeout.Milliseconds(),
		Checks:                 checks,
	})
}
