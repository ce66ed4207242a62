package util

import (
	"github.com/oklog/ulid/v2"
)

// New generates a new ULID string. Safe for concurrent use.
func New() string {
	return ulid.Make().String()
}
