package token

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNotConfigured means the signing key, secret, or service URL is missing.
// This is fatal for the token endpoint, not retryable by the caller.
var ErrNotConfigured = errors.New("realtime transport is not configured")

const credentialTTL = 15 * time.Minute

// Issuer mints short-lived room-scoped access credentials for the
// real-time media service. Stateless; one Mint call per connection attempt.
type Issuer struct {
	apiKey     string
	apiSecret  string
	serviceURL string
	now        func() time.Time
}

func NewIssuer(apiKey, apiSecret, serviceURL string) *Issuer {
	return &Issuer{
		apiKey:     strings.TrimSpace(apiKey),
		apiSecret:  strings.TrimSpace(apiSecret),
		serviceURL: strings.TrimSpace(serviceURL),
		now:        time.Now,
	}
}

// Request carries the caller-supplied naming; every field may be empty.
type Request struct {
	ParticipantName string
	RoomName        string
	AgentName       string
}

// Grant is one minted credential plus where to use it.
type Grant struct {
	Token     string
	URL       string
	Identity  string
	RoomName  string
	ExpiresAt time.Time
}

// videoGrant mirrors the media server's room permission claim.
type videoGrant struct {
	Room           string `json:"room"`
	RoomJoin       bool   `json:"roomJoin"`
	CanPublish     bool   `json:"canPublish"`
	CanPublishData bool   `json:"canPublishData"`
	CanSubscribe   bool   `json:"canSubscribe"`
}

type agentDispatch struct {
	AgentName string `json:"agent_name"`
}

type roomConfig struct {
	Agents []agentDispatch `json:"agents"`
}

type claims struct {
	jwt.RegisteredClaims
	Name       string      `json:"name,omitempty"`
	Video      videoGrant  `json:"video"`
	RoomConfig *roomConfig `json:"roomConfig,omitempty"`
}

// Mint issues a signed credential granting join, publish, publish-data and
// subscribe rights on exactly one room for 15 minutes. Absent inputs get
// pseudo-random default identities and room names; collisions between
// concurrent anonymous sessions are accepted, not eliminated.
func (i *Issuer) Mint(req Request) (Grant, error) {
	if i.apiKey == "" || i.apiSecret == "" || i.serviceURL == "" {
		return Grant{}, ErrNotConfigured
	}

	name := strings.TrimSpace(req.ParticipantName)
	identity := name
	if identity == "" {
		identity = fmt.Sprintf("user-%d", rand.Intn(10_000))
	}
	if name == "" {
		name = "user"
	}
	room := strings.TrimSpace(req.RoomName)
	if room == "" {
		room = fmt.Sprintf("avatar-room-%d", rand.Intn(10_000))
	}

	now := i.now()
	expires := now.Add(credentialTTL)
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.apiKey,
			Subject:   identity,
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		Name: name,
		Video: videoGrant{
			Room:           room,
			RoomJoin:       true,
			CanPublish:     true,
			CanPublishData: true,
			CanSubscribe:   true,
		},
	}
	if agent := strings.TrimSpace(req.AgentName); agent != "" {
		c.RoomConfig = &roomConfig{Agents: []agentDispatch{{AgentName: agent}}}
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(i.apiSecret))
	if err != nil {
		return Grant{}, fmt.Errorf("sign credential: %w", err)
	}

	return Grant{
		Token:     signed,
		URL:       i.serviceURL,
		Identity:  identity,
		RoomName:  room,
		ExpiresAt: expires,
	}, nil
}
