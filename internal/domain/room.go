package domain

import "errors"

var ErrRoomTaken = errors.New("taken")

type RoomName string

// Snapshot maps every member of a room to its declared resources.
type Snapshot map[ConnectionID]Resources

// RoomDescription is what a joining client receives about the members already there.
type RoomDescription struct {
	Clients Snapshot `json:"clients"`
}

// Presence announces a member that just joined.
type Presence struct {
	ID        ConnectionID `json:"id"`
	Resources Resources    `json:"resources"`
}

// Removal announces a member leaving (Type empty) or dropping a single feed.
type Removal struct {
	ID   ConnectionID `json:"id"`
	Type ResourceKind `json:"type,omitempty"`
}
