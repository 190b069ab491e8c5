package core

import (
	"errors"

	"github.com/dkeye/signalmaster/internal/domain"
)

// ErrRoomClosed is returned by a room that was retired while the caller held a reference.
// The caller should look the room up again.
var ErrRoomClosed = errors.New("room closed")

// MemberSession binds domain.Member and its transport endpoint.
// This is what a room stores and fans out to.
type MemberSession interface {
	Meta() *domain.Member
	Signal() SignalConnection
}

// PublishResult reports delivery stats/backpressure to orchestrator.
type PublishResult struct {
	SendTo  int
	Dropped []MemberSession
}

// RoomService is the core-facing API of a room.
// It owns the membership set but never touches transport resources.
// Every mutation is serialized on the room's own lock, so unrelated rooms never contend.
type RoomService interface {
	Name() domain.RoomName
	MemberCount() int
	Describe() domain.Snapshot

	// Join adds the member, announces it to everybody already there and returns
	// the snapshot taken before the member was added.
	Join(sid domain.ConnectionID, ms MemberSession, announce Frame) (domain.Snapshot, PublishResult, error)
	// JoinIfEmpty is Join guarded by an emptiness check under the same lock.
	JoinIfEmpty(sid domain.ConnectionID, ms MemberSession, announce Frame) (domain.Snapshot, PublishResult, error)
	// Leave removes the member and announces it to the rest. Reports false if sid was not a member.
	Leave(sid domain.ConnectionID, announce Frame) (PublishResult, bool)
	Broadcast(from domain.ConnectionID, data Frame) PublishResult

	// Retire closes an empty room. Reports false and leaves the room open if it has members.
	Retire() bool
}

type RoomInfo struct {
	Name        domain.RoomName `json:"name"`
	MemberCount int             `json:"client_count"`
}

type RoomManager interface {
	GetOrCreate(name domain.RoomName) RoomService
	Get(name domain.RoomName) (RoomService, bool)
	List() []RoomInfo
	// Release drops the room if nobody is left in it.
	Release(name domain.RoomName)
	Count() int
}
