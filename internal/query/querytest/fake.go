// Package querytest provides an in-memory query.Client for tests.
package querytest

import (
	"context"
	"sync"

	"github.com/primerdw/bartender-api/internal/model"
)

// Call is one recorded Query invocation.
type Call struct {
	SQL    string
	Params map[string]any
}

// Fake answers every query with Rows or Err and records the calls.
type Fake struct {
	mu      sync.Mutex
	Rows    []model.Row
	Err     error
	PingErr error
	calls   []Call
}

func (f *Fake) Query(_ context.Context, sql string, params map[string]any) ([]model.Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{SQL: sql, Params: params})
	if f.Err != nil {
		return nil, f.Err
	}
	return append([]model.Row(nil), f.Rows...), nil
}

func (f *Fake) Ping(context.Context) error { return f.PingErr }

func (f *Fake) Close() error { return nil }

// Calls returns a copy of the recorded calls.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallCount is len(Calls()).
func (f *Fake) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}
