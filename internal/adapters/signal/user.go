package signal

import (
	"github.com/dkeye/signalmaster/internal/core"
	"github.com/dkeye/signalmaster/internal/domain"
	"github.com/dkeye/signalmaster/internal/protocol"
)

type greeting struct {
	ID domain.ConnectionID `json:"id"`
}

// greet tells the client its own connection id, the address peers use to reach it.
func (ctl *SignalWSController) greet(sid domain.ConnectionID, conn core.SignalConnection) {
	ctl.sendEvent(conn, protocol.EventConnect, greeting{ID: sid})
}
