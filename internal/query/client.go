package query

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/primerdw/bartender-api/internal/metrics"
	"github.com/primerdw/bartender-api/internal/model"
)

// Client runs read-only statements against the analytical database.
// Parameters are bound by name (":name" in the SQL text).
type Client interface {
	Query(ctx context.Context, sql string, params map[string]any) ([]model.Row, error)
	Ping(ctx context.Context) error
	Close() error
}

// SQLClient is a sqlx-backed Client.
type SQLClient struct {
	db      *sqlx.DB
	target  string
	timeout time.Duration
}

var _ Client = (*SQLClient)(nil)

// NewSQLClient wraps db. target labels metrics ("data", "keys"); timeout
// bounds every call when > 0.
func NewSQLClient(db *sqlx.DB, target string, timeout time.Duration) *SQLClient {
	return &SQLClient{db: db, target: target, timeout: timeout}
}

func (c *SQLClient) Query(ctx context.Context, sql string, params map[string]any) ([]model.Row, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	if params == nil {
		params = map[string]any{}
	}

	start := time.Now()
	defer func() {
		metrics.QueryDuration.WithLabelValues(c.target).Observe(time.Since(start).Seconds())
	}()

	rows, err := c.db.NamedQueryContext(ctx, sql, params)
	if err != nil {
		// Drivers report an expired context in their own words.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%s query: %w: %w", c.target, ctxErr, err)
		}
		return nil, fmt.Errorf("%s query: %w", c.target, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("%s columns: %w", c.target, err)
	}

	out := make([]model.Row, 0)
	for rows.Next() {
		vals, err := rows.SliceScan()
		if err != nil {
			return nil, fmt.Errorf("%s scan: %w", c.target, err)
		}
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				vals[i] = string(b)
			}
		}
		out = append(out, model.Row{Columns: cols, Values: vals})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s rows: %w", c.target, err)
	}
	return out, nil
}

func (c *SQLClient) Ping(ctx context.Context) error { return c.db.PingContext(ctx) }

func (c *SQLClient) Close() error { return c.db.Close() }
