package signal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRoomRateLimiter_SlidingWindow(t *testing.T) {
	req := require.New(t)
	rl := NewRoomRateLimiter(2, 10*time.Second)
	now := time.Unix(1_700_000_000, 0)
	rl.now = func() time.Time { return now }

	req.True(rl.Allow("a"))
	req.True(rl.Allow("a"))
	req.False(rl.Allow("a"))
	req.True(rl.Allow("b"), "limits are per connection")

	now = now.Add(11 * time.Second)
	req.True(rl.Allow("a"))
}

func TestRoomRateLimiter_Forget(t *testing.T) {
	rl := NewRoomRateLimiter(1, time.Minute)
	require.True(t, rl.Allow("a"))
	require.False(t, rl.Allow("a"))
	rl.Forget("a")
	require.True(t, rl.Allow("a"))
}

func TestRoomRateLimiter_DisabledOrNil(t *testing.T) {
	var nilLimiter *RoomRateLimiter
	require.True(t, nilLimiter.Allow("a"))
	nilLimiter.Forget("a")

	off := NewRoomRateLimiter(0, time.Minute)
	for i := 0; i < 100; i++ {
		require.True(t, off.Allow("a"))
	}
}
