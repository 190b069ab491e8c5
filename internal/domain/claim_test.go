package domain

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

var token = strings.Repeat("Ab3", 16) + "xy"

func session(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func TestParseSession_Valid(t *testing.T) {
	req := require.New(t)

	claim, err := ParseSession(session("alice@example.org:standup:" + token))
	req.NoError(err)
	req.Equal(Claim{Participant: "alice@example.org", Room: "standup", Token: token}, claim)
}

func TestParseSession_UnpaddedBase64(t *testing.T) {
	raw := base64.RawStdEncoding.EncodeToString([]byte("bob:daily-sync:" + token))
	claim, err := ParseSession(raw)
	require.NoError(t, err)
	require.Equal(t, "daily-sync", claim.Room)
}

func TestParseSession_Rejects(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want error
	}{
		{"empty", "", ErrNoSession},
		{"not base64", "%%%", ErrMalformedSession},
		{"two fields", session("alice:standup"), ErrMalformedSession},
		{"four fields", session("alice:standup:" + token + ":x"), ErrMalformedSession},
		{"participant with space", session("alice smith:standup:" + token), ErrInvalidClaim},
		{"participant too long", session(strings.Repeat("a", 41) + ":standup:" + token), ErrInvalidClaim},
		{"room with dot", session("alice:stand.up:" + token), ErrInvalidClaim},
		{"room too long", session("alice:" + strings.Repeat("r", 51) + ":" + token), ErrInvalidClaim},
		{"short token", session("alice:standup:abc"), ErrInvalidClaim},
		{"token with dash", session("alice:standup:" + token[:49] + "-"), ErrInvalidClaim},
		{"empty participant", session(":standup:" + token), ErrInvalidClaim},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseSession(tc.raw)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestClaimValidate_Limits(t *testing.T) {
	req := require.New(t)
	req.NoError(Claim{Participant: strings.Repeat("p", 40), Room: strings.Repeat("r", 50), Token: token}.Validate())
	req.NoError(Claim{Participant: "a.b-c_d@e", Room: "a_b-c", Token: token}.Validate())
}
