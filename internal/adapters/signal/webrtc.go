package signal

import (
	"github.com/dkeye/signalmaster/internal/app/turn"
	"github.com/dkeye/signalmaster/internal/core"
	"github.com/dkeye/signalmaster/internal/domain"
	"github.com/dkeye/signalmaster/internal/protocol"
)

// sendICEConfig hands out STUN servers and freshly minted TURN credentials.
func (ctl *SignalWSController) sendICEConfig(conn core.SignalConnection) {
	var creds []domain.RelayCredential
	if ctl.Minter != nil {
		creds = ctl.Minter.Mint()
	}
	if len(ctl.Stun) > 0 {
		ctl.sendEvent(conn, protocol.EventStunServers, ctl.Stun)
	}
	if len(creds) > 0 {
		ctl.sendEvent(conn, protocol.EventTurnServers, creds)
	}
	ctl.sendEvent(conn, protocol.EventICEServers, turn.ICEServers(ctl.Stun, creds))
}
