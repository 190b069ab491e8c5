package turn

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"testing"
	"time"

	"github.com/dkeye/signalmaster/internal/domain"
	"github.com/stretchr/testify/require"
)

func fixedClock(unix int64) func() time.Time {
	return func() time.Time { return time.Unix(unix, 0).UTC() }
}

func TestMint_DeterministicWithFixedTime(t *testing.T) {
	req := require.New(t)
	m, err := NewMinter(MinterConfig{
		Servers: []Server{{URL: "turn:turn.example.org:3478", Secret: "shared-secret", Expiry: 3600}},
		Now:     fixedClock(1_700_000_000),
	})
	req.NoError(err)

	creds := m.Mint()
	req.Len(creds, 1)
	req.Equal("1700003600", creds[0].Username)
	req.Equal("turn:turn.example.org:3478", creds[0].URL)
	req.Equal(expectedCredential(t, "shared-secret", "1700003600"), creds[0].Credential)

	// same inputs, same output
	req.Equal(creds, m.Mint())
}

func TestMint_DefaultExpiry(t *testing.T) {
	req := require.New(t)
	m, err := NewMinter(MinterConfig{
		Servers: []Server{
			{URL: "turn:a.example.org", Secret: "a"},
			{URL: "turns:b.example.org", Secret: "b", Expiry: 10},
		},
		Now: fixedClock(42),
	})
	req.NoError(err)

	creds := m.Mint()
	req.Len(creds, 2)
	req.Equal("86442", creds[0].Username)
	req.Equal("52", creds[1].Username)
}

func TestMint_CredentialIsBase64HMACSHA1(t *testing.T) {
	req := require.New(t)
	m, err := NewMinter(MinterConfig{
		Servers: []Server{{URL: "turn:x", Secret: "secret", Expiry: 1}},
		Now:     fixedClock(0),
	})
	req.NoError(err)

	cred := m.Mint()[0]
	decoded, err := base64.StdEncoding.DecodeString(cred.Credential)
	req.NoError(err)
	req.Len(decoded, sha1.Size)

	mac := hmac.New(sha1.New, []byte("secret"))
	_, _ = mac.Write([]byte(cred.Username))
	req.Equal(mac.Sum(nil), decoded)
}

func TestNewMinter_RejectsMissingSecret(t *testing.T) {
	_, err := NewMinter(MinterConfig{Servers: []Server{{URL: "turn:x"}}})
	require.Error(t, err)
}

func TestMint_NoServers(t *testing.T) {
	m, err := NewMinter(MinterConfig{})
	require.NoError(t, err)
	require.Empty(t, m.Mint())
}

func TestICEServers_Merges(t *testing.T) {
	req := require.New(t)
	got := ICEServers(
		[]domain.StunServer{{URL: "stun:stun.example.org:3478"}},
		[]domain.RelayCredential{{Username: "1", Credential: "c", URL: "turn:turn.example.org"}},
	)
	req.Len(got, 2)
	req.Equal([]string{"stun:stun.example.org:3478"}, got[0].URLs)
	req.Empty(got[0].Username)
	req.Equal([]string{"turn:turn.example.org"}, got[1].URLs)
	req.Equal("1", got[1].Username)
	req.Equal("c", got[1].Credential)
}

func expectedCredential(t *testing.T, secret, username string) string {
	t.Helper()
	mac := hmac.New(sha1.New, []byte(secret))
	_, _ = mac.Write([]byte(username))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
