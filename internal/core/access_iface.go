//go:generate go run go.uber.org/mock/mockgen -source=access_iface.go -destination=../mocks/mock_access_store.go -package=mocks

package core

import (
	"context"

	"github.com/dkeye/signalmaster/internal/domain"
)

// AccessStore answers whether the front-end granted a participant access to a room.
// It is read-only from the signaling side.
type AccessStore interface {
	HasAccess(ctx context.Context, claim domain.Claim) (bool, error)
	Ping(ctx context.Context) error
	Close() error
}
