package signal

import (
	"encoding/json"

	"github.com/dkeye/signalmaster/internal/domain"
	"github.com/dkeye/signalmaster/internal/protocol"
	"github.com/rs/zerolog/log"
)

// handleMessage forwards an opaque negotiation payload (offer, answer, candidate...)
// to the connection named in its "to" field.
func (ctl *SignalWSController) handleMessage(sid domain.ConnectionID, in protocol.Inbound) {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(in.Arg(0), &payload); err != nil || payload == nil {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Msg("bad message payload")
		return
	}
	ctl.Orch.Relay(sid, payload)
}
