package token

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// DevSource mints placeholder credentials for running without a media
// server. It pairs with the mock transport: the URL passes the ws/wss
// scheme check but points nowhere real, and the token is unsigned.
type DevSource struct{}

func NewDevSource() *DevSource { return &DevSource{} }

func (DevSource) Mint(req Request) (Grant, error) {
	identity := strings.TrimSpace(req.ParticipantName)
	if identity == "" {
		identity = fmt.Sprintf("user-%d", rand.Intn(10_000))
	}
	room := strings.TrimSpace(req.RoomName)
	if room == "" {
		room = fmt.Sprintf("avatar-room-%d", rand.Intn(10_000))
	}
	return Grant{
		Token:     "dev-" + identity,
		URL:       "wss://joblens.local/mock",
		Identity:  identity,
		RoomName:  room,
		ExpiresAt: time.Now().Add(credentialTTL),
	}, nil
}
