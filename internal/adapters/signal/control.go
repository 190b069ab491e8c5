package signal

import (
	"encoding/json"

	"github.com/dkeye/signalmaster/internal/domain"
	"github.com/dkeye/signalmaster/internal/protocol"
	"github.com/rs/zerolog/log"
)

// shareScreen only updates state; peers learn about the feed from the media negotiation.
func (ctl *SignalWSController) handleShareScreen(sid domain.ConnectionID) {
	if err := ctl.Orch.SetResource(sid, domain.ResourceScreen, true); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("shareScreen")
	}
}

func (ctl *SignalWSController) handleUnshareScreen(sid domain.ConnectionID) {
	if err := ctl.Orch.RemoveFeed(sid, domain.ResourceScreen); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("unshareScreen")
	}
}

// handleSetResource is setResource(kind, on). State only, nothing is broadcast.
func (ctl *SignalWSController) handleSetResource(sid domain.ConnectionID, in protocol.Inbound) {
	raw, _ := in.StringArg(0)
	kind, err := domain.ParseResourceKind(raw)
	if err != nil {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Str("kind", raw).Msg("setResource: unknown kind")
		return
	}
	var on bool
	if err := json.Unmarshal(in.Arg(1), &on); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("setResource: bad value")
		return
	}
	if err := ctl.Orch.SetResource(sid, kind, on); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("setResource")
	}
}
