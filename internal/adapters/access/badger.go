package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/dkeye/signalmaster/internal/domain"
)

var ErrStoreClosed = errors.New("access store closed")

// BadgerStore keeps grants in an embedded database, one key per grant.
// Claim fields cannot contain ':' so the key is unambiguous.
type BadgerStore struct {
	db *badger.DB
}

func NewBadgerStore(path string) (*BadgerStore, error) {
	db, err := badger.Open(badger.DefaultOptions(path).WithLoggingLevel(badger.ERROR))
	if err != nil {
		return nil, fmt.Errorf("open badger %s: %w", path, err)
	}
	return &BadgerStore{db: db}, nil
}

func NewBadgerStoreFromDB(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

func grantKey(c domain.Claim) []byte {
	return []byte("access:" + c.Room + ":" + c.Participant + ":" + c.Token)
}

// Grant records that the participant may join the room with the token.
func (s *BadgerStore) Grant(claim domain.Claim) error {
	if err := claim.Validate(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(grantKey(claim), []byte(claim.Participant))
	})
}

func (s *BadgerStore) Revoke(claim domain.Claim) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(grantKey(claim))
	})
}

func (s *BadgerStore) HasAccess(ctx context.Context, claim domain.Claim) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(grantKey(claim))
		return err
	})
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("read grant: %w", err)
	}
	return true, nil
}

func (s *BadgerStore) Ping(ctx context.Context) error {
	if s.db.IsClosed() {
		return ErrStoreClosed
	}
	return ctx.Err()
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}
