// Package audit records one event per lookup request to an external sink.
// Publishing is best-effort; it never changes a response.
package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Event describes a finished lookup. The caller's API key is never stored,
// only its fingerprint.
type Event struct {
	ID             string    `json:"id"`
	RequestID      string    `json:"request_id,omitempty"`
	Resource       string    `json:"resource"`
	Outcome        string    `json:"outcome"`
	Status         int       `json:"status"`
	Rows           int       `json:"rows"`
	Params         []string  `json:"params,omitempty"`
	KeyFingerprint string    `json:"key_fingerprint,omitempty"`
	DurationMs     int64     `json:"duration_ms"`
	At             time.Time `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

// Fingerprint returns a short, stable digest of an API key.
func Fingerprint(apiKey string) string {
	if apiKey == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(sum[:8])
}
