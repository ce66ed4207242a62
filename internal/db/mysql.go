package db

import (
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

// NewMySQLConnection opens a MySQL pool. Used when the key registry (or the
// data tables) live in MySQL rather than ClickHouse.
func NewMySQLConnection(dsn string) (*sqlx.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("empty MySQL DSN")
	}
	return sqlx.Open("mysql", dsn)
}
