package db

import (
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/jmoiron/sqlx"
)

// NewClickHouseConnection opens a ClickHouse pool from a DSN such as
// clickhouse://svc:pw@localhost:9000/bartender?dial_timeout=5s&secure=true.
// The pool is not pinged here.
func NewClickHouseConnection(dsn string) (*sqlx.DB, error) {
	opts, err := clickhouse.ParseDSN(dsn)
	if err != nil {
		return nil, err
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = 5 * time.Second
	}
	return sqlx.NewDb(clickhouse.OpenDB(opts), "clickhouse"), nil
}
