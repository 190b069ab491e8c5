package access

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dkeye/signalmaster/internal/config"
	"github.com/dkeye/signalmaster/internal/domain"
	"github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
)

// The front-end records every participant that entered a room with its current token.
const hasAccessQuery = "SELECT `participant` FROM `participants` " +
	"WHERE `participant` = ? AND `id` IN (SELECT `id` FROM `rooms` WHERE `name` = ? AND `token` = ?) LIMIT 1"

type MySQLStore struct {
	db *sql.DB
}

func NewMySQLStore(ctx context.Context, cfg config.MySQLConfig) (*MySQLStore, error) {
	dsn, err := mysql.ParseDSN(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse mysql dsn: %w", err)
	}
	connector, err := mysql.NewConnector(dsn)
	if err != nil {
		return nil, fmt.Errorf("mysql connector: %w", err)
	}
	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}
	log.Info().Str("module", "access.mysql").Str("addr", dsn.Addr).Str("db", dsn.DBName).Msg("connected")
	return &MySQLStore{db: db}, nil
}

// NewMySQLStoreFromDB wraps an already opened handle.
func NewMySQLStoreFromDB(db *sql.DB) *MySQLStore {
	return &MySQLStore{db: db}
}

func (s *MySQLStore) HasAccess(ctx context.Context, claim domain.Claim) (bool, error) {
	var participant string
	err := s.db.QueryRowContext(ctx, hasAccessQuery, claim.Participant, claim.Room, claim.Token).Scan(&participant)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("query participants: %w", err)
	}
	return true, nil
}

func (s *MySQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *MySQLStore) Close() error {
	return s.db.Close()
}
