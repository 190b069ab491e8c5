package core

import (
	"sync"

	"github.com/dkeye/signalmaster/internal/domain"
	"github.com/rs/zerolog/log"
)

// roomImpl is a threadsafe in-memory room.
// It never closes adapter-owned resources.
type roomImpl struct {
	name    domain.RoomName
	mu      sync.RWMutex
	members map[domain.ConnectionID]MemberSession
	closed  bool
}

func NewRoomService(name domain.RoomName) RoomService {
	return &roomImpl{
		name:    name,
		members: make(map[domain.ConnectionID]MemberSession),
	}
}

func (r *roomImpl) Name() domain.RoomName { return r.name }

func (r *roomImpl) MemberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

func (r *roomImpl) Describe() domain.Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.describeLocked()
}

func (r *roomImpl) describeLocked() domain.Snapshot {
	out := make(domain.Snapshot, len(r.members))
	for sid, ms := range r.members {
		out[sid] = ms.Meta().Resources()
	}
	return out
}

func (r *roomImpl) Join(sid domain.ConnectionID, ms MemberSession, announce Frame) (domain.Snapshot, PublishResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, PublishResult{}, ErrRoomClosed
	}
	return r.joinLocked(sid, ms, announce)
}

func (r *roomImpl) JoinIfEmpty(sid domain.ConnectionID, ms MemberSession, announce Frame) (domain.Snapshot, PublishResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, PublishResult{}, ErrRoomClosed
	}
	if len(r.members) > 0 {
		return nil, PublishResult{}, domain.ErrRoomTaken
	}
	return r.joinLocked(sid, ms, announce)
}

func (r *roomImpl) joinLocked(sid domain.ConnectionID, ms MemberSession, announce Frame) (domain.Snapshot, PublishResult, error) {
	snap := r.describeLocked()
	delete(snap, sid)
	res := r.broadcastLocked(sid, announce)
	r.members[sid] = ms
	log.Info().Str("module", "core.room").Str("room", string(r.name)).Str("sid", string(sid)).Msg("member added")
	return snap, res, nil
}

func (r *roomImpl) Leave(sid domain.ConnectionID, announce Frame) (PublishResult, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[sid]; !ok {
		return PublishResult{}, false
	}
	delete(r.members, sid)
	log.Info().Str("module", "core.room").Str("room", string(r.name)).Str("sid", string(sid)).Msg("member removed")
	return r.broadcastLocked(sid, announce), true
}

func (r *roomImpl) Broadcast(from domain.ConnectionID, data Frame) PublishResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.broadcastLocked(from, data)
}

func (r *roomImpl) broadcastLocked(from domain.ConnectionID, data Frame) PublishResult {
	res := PublishResult{}
	if data == nil {
		return res
	}
	for sid, m := range r.members {
		if sid == from {
			continue
		}
		if err := m.Signal().TrySend(data); err != nil {
			res.Dropped = append(res.Dropped, m)
			continue
		}
		res.SendTo++
	}
	log.Debug().Str("module", "core.room").Str("from", string(from)).Int("sent_to", res.SendTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}

func (r *roomImpl) Retire() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.members) > 0 {
		return false
	}
	r.closed = true
	return true
}
