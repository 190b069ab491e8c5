package signal

import (
	"errors"

	"github.com/dkeye/signalmaster/internal/domain"
	"github.com/dkeye/signalmaster/internal/protocol"
	"github.com/rs/zerolog/log"
)

// Ack errors, node-callback style: the first argument is the error.
const (
	ackTaken       = "taken"
	ackForbidden   = "forbidden"
	ackRateLimited = "rate_limited"
	ackUnavailable = "unavailable"
)

func (ctl *SignalWSController) handleCreate(
	sid domain.ConnectionID,
	conn *wsSignalConn,
	in protocol.Inbound,
) {
	if !ctl.Limiter.Allow(sid) {
		ctl.sendAck(conn, in, ackRateLimited)
		return
	}
	// anything but a non-empty string means "pick a name for me"
	name, _ := in.StringArg(0)
	if ctl.Settings.EnforceClaimRoom {
		claimed := ctl.claimOf(sid).Room
		if name == "" {
			name = claimed
		}
		if name != claimed {
			log.Warn().Str("module", "signal").Str("sid", string(sid)).Str("room", name).Msg("create outside claimed room")
			ctl.sendAck(conn, in, ackForbidden)
			return
		}
	}

	room, err := ctl.Orch.Create(sid, name)
	switch {
	case errors.Is(err, domain.ErrRoomTaken):
		ctl.sendAck(conn, in, ackTaken)
	case err != nil:
		log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("create failed")
		ctl.sendAck(conn, in, ackUnavailable)
	default:
		ctl.sendAck(conn, in, nil, room)
	}
}

func (ctl *SignalWSController) handleJoin(
	sid domain.ConnectionID,
	conn *wsSignalConn,
	in protocol.Inbound,
) {
	name, ok := in.StringArg(0)
	if !ok || name == "" {
		log.Debug().Str("module", "signal").Str("sid", string(sid)).Msg("join without a room name, ignored")
		return
	}
	if !ctl.Limiter.Allow(sid) {
		ctl.sendAck(conn, in, ackRateLimited)
		return
	}
	if ctl.Settings.EnforceClaimRoom && name != ctl.claimOf(sid).Room {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Str("room", name).Msg("join outside claimed room, ignored")
		return
	}

	snap, err := ctl.Orch.Join(sid, domain.RoomName(name))
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Str("room", name).Msg("join failed")
		return
	}
	ctl.sendAck(conn, in, nil, domain.RoomDescription{Clients: snap})
}

// handleLeave leaves the current room; the connection stays open.
func (ctl *SignalWSController) handleLeave(sid domain.ConnectionID) {
	ctl.Orch.Leave(sid)
}

func (ctl *SignalWSController) claimOf(sid domain.ConnectionID) domain.Claim {
	sess, ok := ctl.Orch.Registry.GetSession(sid)
	if !ok {
		return domain.Claim{}
	}
	return sess.Meta().Claim
}
