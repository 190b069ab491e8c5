package orch

import (
	"context"
	"errors"

	"github.com/dkeye/signalmaster/internal/app"
	"github.com/dkeye/signalmaster/internal/core"
	"github.com/dkeye/signalmaster/internal/domain"
	"github.com/dkeye/signalmaster/internal/metrics"
	"github.com/rs/zerolog/log"
)

var ErrUnknownConnection = errors.New("unknown connection")

type Orchestrator struct {
	Registry *app.Registry
	Rooms    core.RoomManager
	Policy   app.Policy
	Metrics  *metrics.Metrics
}

// Connect registers an admitted connection with default resources and no room.
func (o *Orchestrator) Connect(sid domain.ConnectionID, sess core.MemberSession, cancel context.CancelFunc) {
	o.Registry.Bind(sid, sess, cancel)
	o.Metrics.ConnectionOpened()
}

// Disconnect performs the connection's full leave and forgets it.
// Calling it again, or after an explicit Leave, does nothing.
func (o *Orchestrator) Disconnect(sid domain.ConnectionID) {
	o.Leave(sid)
	if o.Registry.Unbind(sid) {
		o.Metrics.ConnectionClosed()
		log.Info().Str("module", "orch").Str("sid", string(sid)).Msg("disconnected")
	}
}

func (o *Orchestrator) SetResource(sid domain.ConnectionID, kind domain.ResourceKind, on bool) error {
	sess, ok := o.Registry.GetSession(sid)
	if !ok {
		return ErrUnknownConnection
	}
	return sess.Meta().SetResource(kind, on)
}

func (o *Orchestrator) applyPolicy(d app.Delivery, res core.PublishResult) {
	o.Metrics.Dropped(len(res.Dropped))
	if o.Policy == nil {
		return
	}
	for _, slow := range res.Dropped {
		sid := slow.Meta().ID
		switch o.Policy.OnBackPressure(d, slow) {
		case app.KickMember:
			log.Warn().Str("module", "orch").Str("sid", string(sid)).Msg("kicking slow member")
			o.Registry.Cancel(sid)
		case app.DropFrame:
			log.Debug().Str("module", "orch").Str("sid", string(sid)).Msg("dropped frame for slow member")
		}
	}
}
