package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFile_Defaults(t *testing.T) {
	req := require.New(t)
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	req.NoError(err)
	req.Equal(8888, cfg.Port)
	req.Equal("vroomsession", cfg.SessionCookie)
	req.Equal("mysql", cfg.Auth.Driver)
	req.Equal(5*time.Second, cfg.PingPeriod)
	req.Equal(20*time.Second, cfg.PongWait)
	req.EqualValues(86400, cfg.TurnDefaultExpiry)
	req.False(cfg.EnforceClaimRoom)
}

func TestLoadFile_Servers(t *testing.T) {
	req := require.New(t)
	path := writeConfig(t, `
port: 9000
auth:
  driver: badger
  badger:
    path: /tmp/grants
stun_servers:
  - url: "stun:stun.example.org:3478"
turn_servers:
  - url: "turn:turn.example.org:3478"
    secret: s3cret
    expiry: 600
`)
	cfg, err := LoadFile(path)
	req.NoError(err)
	req.Equal(9000, cfg.Port)
	req.Equal("badger", cfg.Auth.Driver)
	req.Equal("/tmp/grants", cfg.Auth.Badger.Path)
	req.Len(cfg.StunServers, 1)
	req.Equal("stun:stun.example.org:3478", cfg.StunServers[0].URL)
	req.Len(cfg.TurnServers, 1)
	req.Equal("s3cret", cfg.TurnServers[0].Secret)
	req.EqualValues(600, cfg.TurnServers[0].Expiry)
}

func TestLoadFile_EnvOverride(t *testing.T) {
	t.Setenv("SIGNAL_PORT", "9100")
	t.Setenv("SIGNAL_AUTH_DRIVER", "mongo")
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.Equal(t, 9100, cfg.Port)
	require.Equal(t, "mongo", cfg.Auth.Driver)
}

func TestLoadFile_RejectsBadServers(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"turn url in stun list", `
stun_servers:
  - url: "turn:turn.example.org"
`},
		{"turn without secret", `
turn_servers:
  - url: "turn:turn.example.org"
`},
		{"not an ice url", `
stun_servers:
  - url: "http://example.org"
`},
		{"unknown driver", `
auth:
  driver: redis
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFile(writeConfig(t, tt.body))
			require.Error(t, err)
		})
	}
}
