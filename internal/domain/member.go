package domain

import "sync"

type ConnectionID string

// Member is the per-connection state a room fans out to.
// Only the owning connection mutates its resources.
type Member struct {
	ID    ConnectionID
	Claim Claim

	mu        sync.RWMutex
	resources Resources
}

func NewMember(id ConnectionID, claim Claim) *Member {
	return &Member{ID: id, Claim: claim, resources: DefaultResources()}
}

func (m *Member) Resources() Resources {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.resources
}

func (m *Member) SetResource(kind ResourceKind, on bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch kind {
	case ResourceScreen:
		m.resources.Screen = on
	case ResourceVideo:
		m.resources.Video = on
	case ResourceAudio:
		m.resources.Audio = on
	default:
		return ErrUnknownResource
	}
	return nil
}
