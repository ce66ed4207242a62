package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/primerdw/bartender-api/internal/credentials"
)

// PoolOpts tunes the database/sql pool of a connection.
type PoolOpts struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration // default 5s
}

// Connect opens and pings a connection for the given credentials.
func Connect(c credentials.Credentials, opts PoolOpts) (*sqlx.DB, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	var (
		db  *sqlx.DB
		err error
	)
	switch c.Driver {
	case credentials.DriverMySQL:
		db, err = NewMySQLConnection(c.DSN())
	default:
		db, err = NewClickHouseConnection(c.DSN())
	}
	if err != nil {
		return nil, fmt.Errorf("%s open: %w", c.Driver, err)
	}

	applyPool(db, opts)

	timeout := opts.PingTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s ping: %w", c.Driver, err)
	}

	return db, nil
}

func applyPool(db *sqlx.DB, opts PoolOpts) {
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}
	if opts.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(opts.ConnMaxIdleTime)
	}
}
