package httpapi

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/joblens/joblens/internal/account"
	"github.com/joblens/joblens/internal/avatar"
	"github.com/joblens/joblens/internal/config"
	"github.com/joblens/joblens/internal/jobs"
	"github.com/joblens/joblens/internal/observability"
	"github.com/joblens/joblens/internal/realtime"
	"github.com/joblens/joblens/internal/session"
	"github.com/joblens/joblens/internal/token"
)

var (
	metricsOnce   sync.Once
	sharedMetrics *observability.Metrics
)

// testMetrics returns one shared instrument set; promauto registers into
// the default registry, which tolerates only one registration per name.
func testMetrics() *observability.Metrics {
	metricsOnce.Do(func() {
		sharedMetrics = observability.NewMetrics("joblens_test")
	})
	return sharedMetrics
}

type serverOptions struct {
	rtcConfigured bool
	accounts      *account.Service
}

func newTestServer(t *testing.T, opts serverOptions) *httptest.Server {
	t.Helper()

	cfg := config.Config{
		SessionInactivityTimeout: time.Minute,
		RTCConnectTimeout:        time.Second,
	}
	if opts.rtcConfigured {
		cfg.RTCAPIKey = "test-key"
		cfg.RTCAPISecret = "test-secret"
		cfg.RTCServiceURL = "wss://rtc.example.com"
	}
	issuer := token.NewIssuer(cfg.RTCAPIKey, cfg.RTCAPISecret, cfg.RTCServiceURL)

	// Mirror main: unconfigured RTC pairs the mock transport with dev
	// credentials so sessions stay connectable.
	var grants session.TokenSource = issuer
	if !opts.rtcConfigured {
		grants = token.NewDevSource()
	}

	avatarClient := avatar.NewClient("", "", "", time.Second)
	sessions := session.NewManager(grants, avatarClient, realtime.NewMockTransport(), cfg.RTCConnectTimeout, cfg.SessionInactivityTimeout)
	store := jobs.NewInMemoryStore(jobs.SeedJobs())

	accounts := opts.accounts
	if accounts == nil {
		accounts = account.NewService()
	}

	srv := New(cfg, issuer, avatarClient, sessions, store, accounts, testMetrics(), observability.NewLatencyWindow(64))
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer res.Body.Close()

	var decoded map[string]any
	if res.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return res, decoded
}

func TestMintTokenEndpoint(t *testing.T) {
	ts := newTestServer(t, serverOptions{rtcConfigured: true})

	res, body := doJSON(t, http.MethodPost, ts.URL+"/api/token", map[string]string{
		"participantName": "alice",
		"roomName":        "interview-1",
	})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.StatusCode)
	}
	if got := res.Header.Get("Cache-Control"); got != "no-store" {
		t.Fatalf("Cache-Control = %q, want no-store", got)
	}
	tok, _ := body["token"].(string)
	if strings.Count(tok, ".") != 2 {
		t.Fatalf("token = %q, want a three-part JWT", tok)
	}
	if body["url"] != "wss://rtc.example.com" {
		t.Fatalf("url = %v", body["url"])
	}
	if body["identity"] != "alice" || body["roomName"] != "interview-1" {
		t.Fatalf("identity/room = %v/%v", body["identity"], body["roomName"])
	}
}

func TestMintTokenUnconfigured(t *testing.T) {
	ts := newTestServer(t, serverOptions{})

	res, body := doJSON(t, http.MethodPost, ts.URL+"/api/token", nil)
	if res.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", res.StatusCode)
	}
	if body["error"] != "Failed to generate token" {
		t.Fatalf("error = %v", body["error"])
	}
	if details, _ := body["details"].(string); details == "" {
		t.Fatalf("details missing from configuration error")
	}
}

func TestMintTokenRoomConfigAgentDispatch(t *testing.T) {
	ts := newTestServer(t, serverOptions{rtcConfigured: true})

	res, body := doJSON(t, http.MethodPost, ts.URL+"/api/token", map[string]any{
		"participantName": "alice",
		"room_config": map[string]any{
			"agents": []map[string]string{{"agent_name": "coach"}},
		},
	})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.StatusCode)
	}

	tok, _ := body["token"].(string)
	claims := decodeJWTClaims(t, tok)
	rc, _ := claims["roomConfig"].(map[string]any)
	if rc == nil {
		t.Fatalf("roomConfig claim missing: %v", claims)
	}
	agents, _ := rc["agents"].([]any)
	if len(agents) != 1 {
		t.Fatalf("agents = %v, want one entry", rc["agents"])
	}
	agent, _ := agents[0].(map[string]any)
	if agent["agent_name"] != "coach" {
		t.Fatalf("agent_name = %v, want coach", agent["agent_name"])
	}
}

func TestMintTokenFlatAgentNameAlias(t *testing.T) {
	ts := newTestServer(t, serverOptions{rtcConfigured: true})

	res, body := doJSON(t, http.MethodPost, ts.URL+"/api/token", map[string]string{
		"agentName": "coach",
	})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.StatusCode)
	}
	claims := decodeJWTClaims(t, body["token"].(string))
	if _, ok := claims["roomConfig"]; !ok {
		t.Fatalf("flat agentName alias dropped: %v", claims)
	}
}

// decodeJWTClaims unpacks the payload segment without verifying the
// signature; these tests only care about claim contents.
func decodeJWTClaims(t *testing.T, tok string) map[string]any {
	t.Helper()
	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		t.Fatalf("token = %q, want three segments", tok)
	}
	raw, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		t.Fatalf("decode claims segment: %v", err)
	}
	var claims map[string]any
	if err := json.Unmarshal(raw, &claims); err != nil {
		t.Fatalf("unmarshal claims: %v", err)
	}
	return claims
}

func TestAvatarGenerateBlankText(t *testing.T) {
	ts := newTestServer(t, serverOptions{})

	res, body := doJSON(t, http.MethodPost, ts.URL+"/api/avatar/generate", map[string]string{"text": "   "})
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", res.StatusCode)
	}
	if body["error"] != "Text is required" {
		t.Fatalf("error = %v", body["error"])
	}
}

func TestAvatarGenerateMock(t *testing.T) {
	ts := newTestServer(t, serverOptions{})

	res, body := doJSON(t, http.MethodPost, ts.URL+"/api/avatar/generate", map[string]string{"text": "hello"})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.StatusCode)
	}
	if body["videoUrl"] != nil || body["audioStream"] != nil {
		t.Fatalf("mock response should carry null media urls: %v", body)
	}
	mock, _ := body["mockData"].(map[string]any)
	if mock == nil || mock["text"] != "hello" {
		t.Fatalf("mockData = %v", body["mockData"])
	}
	if msg, _ := body["message"].(string); msg == "" {
		t.Fatalf("mock response should explain itself")
	}
}

func TestJobsListingEndpoint(t *testing.T) {
	ts := newTestServer(t, serverOptions{})

	res, body := doJSON(t, http.MethodGet, ts.URL+"/v1/jobs?sort=salary", nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.StatusCode)
	}
	listed, _ := body["jobs"].([]any)
	if len(listed) == 0 {
		t.Fatalf("empty listing from seeded store")
	}
	if body["sort"] != "salary" || body["filter"] != "matched" {
		t.Fatalf("echoed params = %v/%v", body["filter"], body["sort"])
	}

	res, _ = doJSON(t, http.MethodGet, ts.URL+"/v1/jobs?sort=bogus", nil)
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("bogus sort status = %d, want 400", res.StatusCode)
	}
}

func TestJobsLikeAndFilter(t *testing.T) {
	ts := newTestServer(t, serverOptions{})

	res, job := doJSON(t, http.MethodPut, ts.URL+"/v1/jobs/job-001/liked", map[string]bool{"liked": true})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("like status = %d, want 200", res.StatusCode)
	}
	if job["liked"] != true {
		t.Fatalf("liked flag not set: %v", job)
	}

	_, body := doJSON(t, http.MethodGet, ts.URL+"/v1/jobs?filter=liked", nil)
	listed, _ := body["jobs"].([]any)
	if len(listed) != 1 {
		t.Fatalf("liked listing = %d jobs, want 1", len(listed))
	}

	res, _ = doJSON(t, http.MethodPut, ts.URL+"/v1/jobs/nope/liked", map[string]bool{"liked": true})
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown job status = %d, want 404", res.StatusCode)
	}
}

func TestJobsApplyEndpoint(t *testing.T) {
	ts := newTestServer(t, serverOptions{})

	res, job := doJSON(t, http.MethodPost, ts.URL+"/v1/jobs/job-002/apply", nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("apply status = %d, want 200", res.StatusCode)
	}
	if job["applied"] != true {
		t.Fatalf("applied flag not set: %v", job)
	}
}

func TestSessionLifecycleEndpoints(t *testing.T) {
	ts := newTestServer(t, serverOptions{rtcConfigured: true})

	res, snap := doJSON(t, http.MethodPost, ts.URL+"/v1/sessions", map[string]string{
		"participantName": "alice",
	})
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", res.StatusCode)
	}
	id, _ := snap["session_id"].(string)
	if id == "" {
		t.Fatalf("create returned no session id: %v", snap)
	}
	if snap["connection_state"] != "disconnected" {
		t.Fatalf("fresh session state = %v", snap["connection_state"])
	}

	res, snap = doJSON(t, http.MethodPost, ts.URL+"/v1/sessions/"+id+"/connect", nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("connect status = %d, want 200", res.StatusCode)
	}
	if snap["connection_state"] != "connected" {
		t.Fatalf("state after connect = %v", snap["connection_state"])
	}

	res, msg := doJSON(t, http.MethodPost, ts.URL+"/v1/sessions/"+id+"/messages", map[string]string{"text": "hi"})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("message status = %d, want 200", res.StatusCode)
	}
	if msg["status"] != "sent" || msg["isMock"] != true {
		t.Fatalf("message response = %v", msg)
	}

	res, ignored := doJSON(t, http.MethodPost, ts.URL+"/v1/sessions/"+id+"/messages", map[string]string{"text": "  "})
	if res.StatusCode != http.StatusAccepted {
		t.Fatalf("blank message status = %d, want 202", res.StatusCode)
	}
	if ignored["status"] != "ignored" {
		t.Fatalf("blank message response = %v", ignored)
	}

	res, snap = doJSON(t, http.MethodPost, ts.URL+"/v1/sessions/"+id+"/disconnect", nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("disconnect status = %d, want 200", res.StatusCode)
	}
	if snap["connection_state"] != "disconnected" {
		t.Fatalf("state after disconnect = %v", snap["connection_state"])
	}

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/v1/sessions/"+id, nil)
	delRes, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	delRes.Body.Close()
	if delRes.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", delRes.StatusCode)
	}

	res, _ = doJSON(t, http.MethodGet, ts.URL+"/v1/sessions/"+id, nil)
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("get after delete status = %d, want 404", res.StatusCode)
	}
}

func TestSessionConnectWithoutRTCUsesDevCredentials(t *testing.T) {
	// Without RTC_* config the dev credential source feeds the mock
	// transport, so the lifecycle still works end to end.
	ts := newTestServer(t, serverOptions{})

	_, snap := doJSON(t, http.MethodPost, ts.URL+"/v1/sessions", nil)
	id, _ := snap["session_id"].(string)

	res, snap := doJSON(t, http.MethodPost, ts.URL+"/v1/sessions/"+id+"/connect", nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("connect status = %d, want 200", res.StatusCode)
	}
	if snap["connection_state"] != "connected" {
		t.Fatalf("state = %v, want connected", snap["connection_state"])
	}
}

func TestSendMessageChargesCredits(t *testing.T) {
	accounts := account.NewService()
	ts := newTestServer(t, serverOptions{rtcConfigured: true, accounts: accounts})

	_, snap := doJSON(t, http.MethodPost, ts.URL+"/v1/sessions", nil)
	id, _ := snap["session_id"].(string)
	if res, _ := doJSON(t, http.MethodPost, ts.URL+"/v1/sessions/"+id+"/connect", nil); res.StatusCode != http.StatusOK {
		t.Fatalf("connect failed")
	}

	if res, _ := doJSON(t, http.MethodPost, ts.URL+"/v1/sessions/"+id+"/messages", map[string]string{"text": "hi"}); res.StatusCode != http.StatusOK {
		t.Fatalf("message status = %d, want 200", res.StatusCode)
	}
	if bal := accounts.Credits().Balance; bal != 149 {
		t.Fatalf("balance after one message = %d, want 149", bal)
	}

	// Blank sends are ignored and free.
	if res, _ := doJSON(t, http.MethodPost, ts.URL+"/v1/sessions/"+id+"/messages", map[string]string{"text": " "}); res.StatusCode != http.StatusAccepted {
		t.Fatalf("blank message should be a free no-op")
	}
	if bal := accounts.Credits().Balance; bal != 149 {
		t.Fatalf("blank send charged: balance = %d", bal)
	}

	// Drain the balance; the next send is refused before reaching the proxy.
	if _, ok := accounts.Spend(149); !ok {
		t.Fatalf("drain failed")
	}
	res, body := doJSON(t, http.MethodPost, ts.URL+"/v1/sessions/"+id+"/messages", map[string]string{"text": "hi again"})
	if res.StatusCode != http.StatusPaymentRequired {
		t.Fatalf("empty-balance status = %d, want 402", res.StatusCode)
	}
	if body["code"] != "insufficient_credits" {
		t.Fatalf("code = %v", body["code"])
	}
}

func TestAccountEndpoints(t *testing.T) {
	ts := newTestServer(t, serverOptions{})

	_, credits := doJSON(t, http.MethodGet, ts.URL+"/v1/credits", nil)
	if credits["balance"] != float64(150) {
		t.Fatalf("seed balance = %v, want 150", credits["balance"])
	}

	res, purchase := doJSON(t, http.MethodPost, ts.URL+"/v1/credits/purchase", map[string]string{"packageId": "starter"})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("purchase status = %d, want 200", res.StatusCode)
	}
	if purchase["new_balance"] != float64(200) {
		t.Fatalf("new_balance = %v, want 200", purchase["new_balance"])
	}

	res, _ = doJSON(t, http.MethodPost, ts.URL+"/v1/credits/purchase", map[string]string{"packageId": "mega"})
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("unknown package status = %d, want 400", res.StatusCode)
	}

	res, sub := doJSON(t, http.MethodPut, ts.URL+"/v1/subscription", map[string]string{"planId": "pro"})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("plan change status = %d, want 200", res.StatusCode)
	}
	if sub["plan_id"] != "pro" {
		t.Fatalf("plan_id = %v, want pro", sub["plan_id"])
	}

	_, settings := doJSON(t, http.MethodPut, ts.URL+"/v1/settings", map[string]bool{
		"email_notifications": false,
		"dark_mode":           true,
	})
	if settings["dark_mode"] != true || settings["email_notifications"] != false {
		t.Fatalf("settings = %v", settings)
	}
}

func TestStatusEndpoint(t *testing.T) {
	ts := newTestServer(t, serverOptions{})

	res, body := doJSON(t, http.MethodGet, ts.URL+"/v1/status", nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.StatusCode)
	}
	if body["rtc_configured"] != false || body["avatar_mode"] != "mock" {
		t.Fatalf("status body = %v", body)
	}
	checks, _ := body["checks"].([]any)
	if len(checks) != 3 {
		t.Fatalf("checks = %d, want 3", len(checks))
	}
}

func TestPerfLatencyEndpoint(t *testing.T) {
	ts := newTestServer(t, serverOptions{rtcConfigured: true})

	// Mint once so at least one stage has a sample.
	if res, _ := doJSON(t, http.MethodPost, ts.URL+"/api/token", nil); res.StatusCode != http.StatusOK {
		t.Fatalf("mint failed")
	}

	res, body := doJSON(t, http.MethodGet, ts.URL+"/v1/perf/latency", nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.StatusCode)
	}
	stages, _ := body["stages"].([]any)
	if len(stages) != 1 {
		t.Fatalf("stages = %d, want 1", len(stages))
	}
	stage, _ := stages[0].(map[string]any)
	if stage["stage"] != "token_mint" {
		t.Fatalf("stage = %v", stage["stage"])
	}
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t, serverOptions{})

	res, body := doJSON(t, http.MethodGet, ts.URL+"/healthz", nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.StatusCode)
	}
	if body["status"] != "ok" {
		t.Fatalf("body = %v", body)
	}
}
