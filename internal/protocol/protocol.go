// Package protocol is the Socket.IO-style envelope spoken over the signaling WebSocket.
//
// Client to server:
//
//	{"event": "join", "args": ["standup"], "ack": 3}
//
// Server to client, either a pushed event or an ack answering a client's ack id:
//
//	{"event": "remove", "args": [{"id": "..."}]}
//	{"ack": 3, "args": [null, {"clients": {}}]}
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dkeye/signalmaster/internal/core"
)

// Events consumed from clients.
const (
	EventCreate        = "create"
	EventJoin          = "join"
	EventLeave         = "leave"
	EventShareScreen   = "shareScreen"
	EventUnshareScreen = "unshareScreen"
	EventSetResource   = "setResource"
	EventMessage       = "message"
)

// Events emitted to clients.
const (
	EventConnect     = "connect"
	EventStunServers = "stunservers"
	EventTurnServers = "turnservers"
	EventICEServers  = "iceservers"
	EventAdd         = "add"
	EventRemove      = "remove"
)

var ErrNoEvent = errors.New("missing event name")

// Inbound is a decoded client frame. Args stay raw so handlers decide their own shapes.
type Inbound struct {
	Event string            `json:"event"`
	Args  []json.RawMessage `json:"args"`
	Ack   *int64            `json:"ack,omitempty"`
}

// Arg returns the i-th argument, or nil when the client sent fewer.
func (in Inbound) Arg(i int) json.RawMessage {
	if i < 0 || i >= len(in.Args) {
		return nil
	}
	return in.Args[i]
}

// StringArg reports the i-th argument if it is a JSON string.
func (in Inbound) StringArg(i int) (string, bool) {
	raw := in.Arg(i)
	if len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

type outbound struct {
	Event string `json:"event,omitempty"`
	Ack   *int64 `json:"ack,omitempty"`
	Args  []any  `json:"args"`
}

func Decode(data []byte) (Inbound, error) {
	var in Inbound
	if err := json.Unmarshal(data, &in); err != nil {
		return Inbound{}, fmt.Errorf("decode frame: %w", err)
	}
	if in.Event == "" {
		return Inbound{}, ErrNoEvent
	}
	return in, nil
}

func Event(name string, args ...any) (core.Frame, error) {
	return encode(outbound{Event: name, Args: nonNil(args)})
}

func Ack(id int64, args ...any) (core.Frame, error) {
	return encode(outbound{Ack: &id, Args: nonNil(args)})
}

func encode(o outbound) (core.Frame, error) {
	b, err := json.Marshal(o)
	if err != nil {
		return nil, fmt.Errorf("encode %q: %w", o.Event, err)
	}
	return core.Frame(b), nil
}

func nonNil(args []any) []any {
	if args == nil {
		return []any{}
	}
	return args
}
