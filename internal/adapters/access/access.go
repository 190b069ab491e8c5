// Package access implements core.AccessStore on top of the databases the
// front-end may write its room grants to.
package access

import (
	"context"
	"fmt"

	"github.com/dkeye/signalmaster/internal/config"
	"github.com/dkeye/signalmaster/internal/core"
)

const (
	DriverMySQL  = "mysql"
	DriverMongo  = "mongo"
	DriverBadger = "badger"
)

// Open connects the store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.AuthConfig) (core.AccessStore, error) {
	switch cfg.Driver {
	case DriverMySQL:
		return NewMySQLStore(ctx, cfg.MySQL)
	case DriverMongo:
		return NewMongoStore(ctx, cfg.Mongo)
	case DriverBadger:
		return NewBadgerStore(cfg.Badger.Path)
	default:
		return nil, fmt.Errorf("unknown auth driver %q", cfg.Driver)
	}
}
