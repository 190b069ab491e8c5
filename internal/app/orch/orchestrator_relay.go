package orch

import (
	"encoding/json"

	"github.com/dkeye/signalmaster/internal/app"
	"github.com/dkeye/signalmaster/internal/core"
	"github.com/dkeye/signalmaster/internal/domain"
	"github.com/dkeye/signalmaster/internal/protocol"
	"github.com/rs/zerolog/log"
)

// Relay hands payload to the connection named by its "to" field, with "from"
// set to the sender. Everything else passes through untouched. Unknown targets
// are dropped without telling the sender.
func (o *Orchestrator) Relay(from domain.ConnectionID, payload map[string]json.RawMessage) bool {
	var to domain.ConnectionID
	if err := json.Unmarshal(payload["to"], &to); err != nil || to == "" {
		o.Metrics.RelayMiss()
		log.Debug().Str("module", "orch.relay").Str("from", string(from)).Msg("message without target")
		return false
	}
	target, ok := o.Registry.GetSession(to)
	if !ok {
		o.Metrics.RelayMiss()
		log.Debug().Str("module", "orch.relay").Str("from", string(from)).Str("to", string(to)).Msg("target gone, dropping")
		return false
	}

	fromRaw, err := json.Marshal(from)
	if err != nil {
		return false
	}
	payload["from"] = fromRaw
	frame, err := protocol.Event(protocol.EventMessage, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "orch.relay").Msg("encode message")
		return false
	}
	if err := target.Signal().TrySend(frame); err != nil {
		o.applyPolicy(app.DeliveryRelay, core.PublishResult{Dropped: []core.MemberSession{target}})
		return false
	}
	o.Metrics.Relayed()
	return true
}
