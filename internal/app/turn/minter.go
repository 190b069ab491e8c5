// Package turn mints TURN REST credentials (draft-uberti-behave-turn-rest):
//
//	username   = <unix_now + expiry_seconds>
//	credential = base64(hmac_sha1(shared_secret, username))
//
// The relay server verifies them statelessly, so secrets never leave this process.
package turn

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"strconv"
	"time"

	"github.com/dkeye/signalmaster/internal/domain"
	"github.com/pion/webrtc/v4"
)

const DefaultExpiry int64 = 86400

type Server struct {
	URL    string `mapstructure:"url"`
	Secret string `mapstructure:"secret"`
	// Expiry in seconds; zero falls back to the minter default.
	Expiry int64 `mapstructure:"expiry"`
}

type Minter struct {
	servers       []Server
	defaultExpiry int64
	now           func() time.Time
}

type MinterConfig struct {
	Servers       []Server
	DefaultExpiry int64
	Now           func() time.Time
}

func NewMinter(cfg MinterConfig) (*Minter, error) {
	for _, s := range cfg.Servers {
		if s.Secret == "" {
			return nil, fmt.Errorf("turn server %s: shared secret is required", s.URL)
		}
		if s.Expiry < 0 {
			return nil, fmt.Errorf("turn server %s: expiry must be >= 0", s.URL)
		}
	}
	if cfg.DefaultExpiry <= 0 {
		cfg.DefaultExpiry = DefaultExpiry
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Minter{
		servers:       cfg.Servers,
		defaultExpiry: cfg.DefaultExpiry,
		now:           cfg.Now,
	}, nil
}

// Mint returns one credential per configured server, all computed from the same clock reading.
func (m *Minter) Mint() []domain.RelayCredential {
	now := m.now().UTC().Unix()
	out := make([]domain.RelayCredential, 0, len(m.servers))
	for _, s := range m.servers {
		expiry := s.Expiry
		if expiry == 0 {
			expiry = m.defaultExpiry
		}
		username := strconv.FormatInt(now+expiry, 10)
		out = append(out, domain.RelayCredential{
			Username:   username,
			Credential: Sign(s.Secret, username),
			URL:        s.URL,
		})
	}
	return out
}

// Sign is the credential a relay server expects for username.
func Sign(secret, username string) string {
	mac := hmac.New(sha1.New, []byte(secret))
	_, _ = mac.Write([]byte(username))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// ICEServers merges STUN servers and minted TURN credentials into RTCIceServer entries.
func ICEServers(stun []domain.StunServer, creds []domain.RelayCredential) []webrtc.ICEServer {
	out := make([]webrtc.ICEServer, 0, len(stun)+len(creds))
	for _, s := range stun {
		out = append(out, webrtc.ICEServer{URLs: []string{s.URL}})
	}
	for _, c := range creds {
		out = append(out, webrtc.ICEServer{
			URLs:       []string{c.URL},
			Username:   c.Username,
			Credential: c.Credential,
		})
	}
	return out
}
