package signal

import (
	"context"
	"time"

	"github.com/dkeye/signalmaster/internal/core"
	"github.com/dkeye/signalmaster/internal/domain"
	"github.com/dkeye/signalmaster/internal/protocol"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const writeWait = 5 * time.Second

func (ctl *SignalWSController) writePump(ctx context.Context, c *wsSignalConn) {
	ticker := time.NewTicker(ctl.Settings.PingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()
	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Warn().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				log.Debug().Err(err).Str("module", "signal").Msg("writePump ping failed")
				return
			}
		}
	}
}

// readPump processes the connection's events in arrival order. Whatever ends it,
// the connection leaves its room exactly once.
func (ctl *SignalWSController) readPump(ctx context.Context, cancel context.CancelFunc, sid domain.ConnectionID, c *wsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump closing")
		cancel()
		ctl.Orch.Disconnect(sid)
		ctl.Limiter.Forget(sid)
		c.Close()
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(ctl.Settings.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(ctl.Settings.PongWait))
	})

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
					log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("readPump read error")
				}
				return
			}
			ctl.handleSignal(sid, c, data)
		}
	}
}

func (ctl *SignalWSController) handleSignal(sid domain.ConnectionID, c *wsSignalConn, data []byte) {
	in, err := protocol.Decode(data)
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("bad frame")
		return
	}

	switch in.Event {
	case protocol.EventCreate:
		ctl.handleCreate(sid, c, in)
	case protocol.EventJoin:
		ctl.handleJoin(sid, c, in)
	case protocol.EventLeave:
		ctl.handleLeave(sid)
	case protocol.EventShareScreen:
		ctl.handleShareScreen(sid)
	case protocol.EventUnshareScreen:
		ctl.handleUnshareScreen(sid)
	case protocol.EventSetResource:
		ctl.handleSetResource(sid, in)
	case protocol.EventMessage:
		ctl.handleMessage(sid, in)
	default:
		log.Warn().Str("module", "signal").Str("event", in.Event).Msg("unknown event")
	}
}

func (ctl *SignalWSController) sendEvent(c core.SignalConnection, name string, args ...any) {
	f, err := protocol.Event(name, args...)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendEvent encode")
		return
	}
	_ = c.TrySend(f)
}

// sendAck answers the client's callback, if it asked for one.
func (ctl *SignalWSController) sendAck(c core.SignalConnection, in protocol.Inbound, args ...any) {
	if in.Ack == nil {
		return
	}
	f, err := protocol.Ack(*in.Ack, args...)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendAck encode")
		return
	}
	_ = c.TrySend(f)
}
