package app

import "github.com/dkeye/signalmaster/internal/core"

// Delivery says which kind of frame a member failed to take.
type Delivery int

const (
	// DeliveryPresence is a room fan-out: add or remove.
	DeliveryPresence Delivery = iota
	// DeliveryRelay is a point-to-point negotiation message.
	DeliveryRelay
)

type BackpressureAction int

const (
	DropFrame BackpressureAction = iota
	KickMember
)

type Policy interface {
	OnBackPressure(d Delivery, member core.MemberSession) BackpressureAction
}

// SimplePolicy kicks a member that missed a presence update, since its view of
// the room is now wrong. A missed relay frame is only dropped.
type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(d Delivery, _ core.MemberSession) BackpressureAction {
	if d == DeliveryPresence {
		return KickMember
	}
	return DropFrame
}
