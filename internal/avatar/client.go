package avatar

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrEmptyText is the only error Generate returns to callers: blank input is
// the caller's fault and retryable with valid text. Upstream failures are
// absorbed by the mock-fallback contract instead.
var ErrEmptyText = errors.New("text is required")

// Response is the transient result of one generation round-trip.
type Response struct {
	VideoURL    string
	AudioStream string
	SessionID   string
	IsMock      bool
	Note        string
}

// Client forwards generation requests to the avatar upstream. When the API
// key or persona is missing, or the upstream misbehaves, it degrades to a
// structurally valid mock response so the caller never hard-fails on a
// third-party dependency. Stateless and safe for concurrent use.
type Client struct {
	apiKey    string
	personaID string
	baseURL   string
	client    *http.Client
}

func NewClient(apiKey, personaID, baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		apiKey:    strings.TrimSpace(apiKey),
		personaID: strings.TrimSpace(personaID),
		baseURL:   strings.TrimSpace(baseURL),
		client:    &http.Client{Timeout: timeout},
	}
}

// Configured reports whether live upstream calls are possible.
func (c *Client) Configured() bool {
	return c.apiKey != "" && c.personaID != "" && c.baseURL != ""
}

type generateRequest struct {
	PersonaID string `json:"persona_id"`
	Text      string `json:"text"`
	Stream    bool   `json:"stream"`
}

type generatePayload struct {
	VideoURL    string `json:"video_url"`
	StreamURL   string `json:"stream_url"`
	AudioStream string `json:"audio_stream"`
	SessionID   string `json:"session_id"`
}

// Generate issues one bounded upstream request for the given text.
// Outcomes: ErrEmptyText for blank input; a mock Response when unconfigured;
// a fallback mock Response on upstream timeout, network failure, or non-2xx;
// a live Response otherwise.
func (c *Client) Generate(ctx context.Context, text string) (Response, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Response{}, ErrEmptyText
	}

	if !c.Configured() {
		return Response{
			IsMock: true,
			Note:   "avatar API key and persona ID need to be configured",
		}, nil
	}

	payload, err := json.Marshal(generateRequest{
		PersonaID: c.personaID,
		Text:      text,
		Stream:    true,
	})
	if err != nil {
		return Response{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return Response{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	res, err := c.client.Do(req)
	if err != nil {
		return fallback(fmt.Sprintf("avatar upstream unreachable: %v", err)), nil
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return fallback(fmt.Sprintf("avatar upstream status %d: %s", res.StatusCode, strings.TrimSpace(string(body)))), nil
	}

	var out generatePayload
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return fallback(fmt.Sprintf("avatar upstream returned malformed payload: %v", err)), nil
	}

	videoURL := out.VideoURL
	if videoURL == "" {
		videoURL = out.StreamURL
	}
	return Response{
		VideoURL:    videoURL,
		AudioStream: out.AudioStream,
		SessionID:   out.SessionID,
	}, nil
}

func fallback(note string) Response {
	return Response{IsMock: true, Note: note}
}
