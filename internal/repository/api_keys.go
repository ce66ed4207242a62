package repository

import (
	"context"
	"fmt"

	"github.com/primerdw/bartender-api/internal/apperr"
	"github.com/primerdw/bartender-api/internal/lookup"
	"github.com/primerdw/bartender-api/internal/query"
)

// APIKeysRepository validates caller keys against the key registry table.
type APIKeysRepository interface {
	IsValid(ctx context.Context, apiKey string) (bool, error)
}

type APIKeysRepositoryImpl struct {
	client query.Client
	q      string
}

var _ APIKeysRepository = (*APIKeysRepositoryImpl)(nil)

// NewAPIKeysRepository builds a validator reading table through client.
func NewAPIKeysRepository(client query.Client, table string) (*APIKeysRepositoryImpl, error) {
	if !lookup.ValidIdentifier(table) {
		return nil, fmt.Errorf("invalid key table identifier %q", table)
	}
	return &APIKeysRepositoryImpl{
		client: client,
		q: fmt.Sprintf(
			"SELECT 1 FROM %s WHERE api_key = :api_key AND active = true LIMIT 1",
			lookup.QuoteIdent(table)),
	}, nil
}

// IsValid reports whether an active record exists for apiKey. An empty key
// is invalid and costs no query. Lookup failures come back as upstream
// errors, never as false.
func (r *APIKeysRepositoryImpl) IsValid(ctx context.Context, apiKey string) (bool, error) {
	if apiKey == "" {
		return false, nil
	}
	rows, err := r.client.Query(ctx, r.q, map[string]any{"api_key": apiKey})
	if err != nil {
		return false, apperr.Upstream("api key lookup", err)
	}
	return len(rows) > 0, nil
}
