package signal

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/dkeye/signalmaster/internal/app/orch"
	"github.com/dkeye/signalmaster/internal/app/turn"
	"github.com/dkeye/signalmaster/internal/core"
	"github.com/dkeye/signalmaster/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// ClaimContextKey is where the admission middleware leaves the admitted domain.Claim.
const ClaimContextKey = "claim"

const minSendBuffer = 8

type Settings struct {
	ReadLimit        int64
	PingPeriod       time.Duration
	PongWait         time.Duration
	SendBuffer       int
	EnforceClaimRoom bool
}

type SignalWSController struct {
	Orch     *orch.Orchestrator
	Minter   *turn.Minter
	Stun     []domain.StunServer
	Limiter  *RoomRateLimiter
	Settings Settings
}

func NewSignalWSController(o *orch.Orchestrator, minter *turn.Minter, stun []domain.StunServer, limiter *RoomRateLimiter, s Settings) *SignalWSController {
	if s.SendBuffer < minSendBuffer {
		s.SendBuffer = minSendBuffer
	}
	return &SignalWSController{
		Orch:     o,
		Minter:   minter,
		Stun:     stun,
		Limiter:  limiter,
		Settings: s,
	}
}

type wsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *wsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return core.ErrConnectionClosed
	}
	select {
	case c.send <- f:
	default:
		return core.ErrBackpressure
	}
	return nil
}

func (c *wsSignalConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignal upgrades an admitted request and runs the connection until it goes away.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	claim, _ := c.MustGet(ClaimContextKey).(domain.Claim)
	sid := domain.ConnectionID(uuid.NewString())

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	if ctl.Settings.ReadLimit > 0 {
		ws.SetReadLimit(ctl.Settings.ReadLimit)
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("participant", claim.Participant).Msg("new WS connection")

	conn := &wsSignalConn{
		conn: ws,
		send: make(chan core.Frame, ctl.Settings.SendBuffer),
	}
	sess := core.NewMemberSession(domain.NewMember(sid, claim), conn)
	ctx, cancel := context.WithCancel(ctx)
	ctl.Orch.Connect(sid, sess, cancel)

	ctl.greet(sid, conn)
	ctl.sendICEConfig(conn)

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cancel, sid, conn)
}
