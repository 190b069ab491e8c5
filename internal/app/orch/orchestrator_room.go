package orch

import (
	"errors"

	"github.com/dkeye/signalmaster/internal/app"
	"github.com/dkeye/signalmaster/internal/core"
	"github.com/dkeye/signalmaster/internal/domain"
	"github.com/dkeye/signalmaster/internal/protocol"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// a room can be retired between lookup and join; retry against the fresh one
const maxJoinAttempts = 8

// Join moves sid into name, leaving any previous room first, and returns the
// members that were already there.
func (o *Orchestrator) Join(sid domain.ConnectionID, name domain.RoomName) (domain.Snapshot, error) {
	sess, ok := o.Registry.GetSession(sid)
	if !ok {
		return nil, ErrUnknownConnection
	}
	o.Leave(sid)
	return o.enter(sid, sess, name, false)
}

// Create joins a room nobody is in. An empty name gets a random one.
// A name that is in use yields domain.ErrRoomTaken and leaves the caller where it was.
// The new room is reserved before the old one is left, so a lost race changes nothing.
func (o *Orchestrator) Create(sid domain.ConnectionID, requested string) (domain.RoomName, error) {
	sess, ok := o.Registry.GetSession(sid)
	if !ok {
		return "", ErrUnknownConnection
	}
	name := domain.RoomName(requested)
	if name == "" {
		name = domain.RoomName(uuid.NewString())
	}
	prev, hadRoom := o.RoomOf(sid)
	if _, err := o.enter(sid, sess, name, true); err != nil {
		if errors.Is(err, domain.ErrRoomTaken) {
			log.Info().Str("module", "orch").Str("sid", string(sid)).Str("room", string(name)).Msg("create: taken")
		}
		return "", err
	}
	if hadRoom {
		o.leaveRoom(sid, prev)
	}
	return name, nil
}

func (o *Orchestrator) enter(sid domain.ConnectionID, sess core.MemberSession, name domain.RoomName, exclusive bool) (domain.Snapshot, error) {
	announce, err := protocol.Event(protocol.EventAdd, domain.Presence{ID: sid, Resources: sess.Meta().Resources()})
	if err != nil {
		return nil, err
	}
	for attempt := 0; attempt < maxJoinAttempts; attempt++ {
		room := o.Rooms.GetOrCreate(name)
		var (
			snap domain.Snapshot
			res  core.PublishResult
		)
		if exclusive {
			snap, res, err = room.JoinIfEmpty(sid, sess, announce)
		} else {
			snap, res, err = room.Join(sid, sess, announce)
		}
		if errors.Is(err, core.ErrRoomClosed) {
			continue
		}
		if err != nil {
			log.Info().Err(err).Str("module", "orch").Str("sid", string(sid)).Str("room", string(name)).Msg("join refused")
			return nil, err
		}
		o.Registry.UpdateRoom(sid, name)
		o.Metrics.SetRooms(o.Rooms.Count())
		o.applyPolicy(app.DeliveryPresence, res)
		log.Info().Str("module", "orch").Str("sid", string(sid)).Str("room", string(name)).Int("members", len(snap)).Msg("joined")
		return snap, nil
	}
	return nil, core.ErrRoomClosed
}

// Leave is the full leave: everybody else in the room gets a remove without type.
// No-op when sid is not in a room.
func (o *Orchestrator) Leave(sid domain.ConnectionID) {
	name, _, ok := o.Registry.RoomOf(sid)
	if !ok {
		return
	}
	o.Registry.RemoveRoom(sid)
	o.leaveRoom(sid, name)
}

// leaveRoom takes sid out of name's membership; the registry is the caller's business.
func (o *Orchestrator) leaveRoom(sid domain.ConnectionID, name domain.RoomName) {
	room, ok := o.Rooms.Get(name)
	if !ok {
		return
	}
	announce, err := protocol.Event(protocol.EventRemove, domain.Removal{ID: sid})
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Msg("encode remove")
	}
	if res, removed := room.Leave(sid, announce); removed {
		o.applyPolicy(app.DeliveryPresence, res)
		log.Info().Str("module", "orch").Str("sid", string(sid)).Str("room", string(name)).Msg("left room")
	}
	o.Rooms.Release(name)
	o.Metrics.SetRooms(o.Rooms.Count())
}

// RemoveFeed turns one feed off and tells the room, without leaving it.
func (o *Orchestrator) RemoveFeed(sid domain.ConnectionID, kind domain.ResourceKind) error {
	if err := o.SetResource(sid, kind, false); err != nil {
		return err
	}
	name, _, ok := o.Registry.RoomOf(sid)
	if !ok {
		return nil
	}
	room, ok := o.Rooms.Get(name)
	if !ok {
		return nil
	}
	announce, err := protocol.Event(protocol.EventRemove, domain.Removal{ID: sid, Type: kind})
	if err != nil {
		return err
	}
	o.applyPolicy(app.DeliveryPresence, room.Broadcast(sid, announce))
	return nil
}

// Describe is the current presence of a room; empty when nobody is in it.
func (o *Orchestrator) Describe(name domain.RoomName) domain.Snapshot {
	room, ok := o.Rooms.Get(name)
	if !ok {
		return domain.Snapshot{}
	}
	return room.Describe()
}

func (o *Orchestrator) RoomOf(sid domain.ConnectionID) (domain.RoomName, bool) {
	name, _, ok := o.Registry.RoomOf(sid)
	return name, ok
}
