package repository

import (
	"context"

	"github.com/primerdw/bartender-api/internal/apperr"
	"github.com/primerdw/bartender-api/internal/lookup"
	"github.com/primerdw/bartender-api/internal/model"
	"github.com/primerdw/bartender-api/internal/query"
)

// LookupRepository runs resource lookups against the data tables.
type LookupRepository interface {
	Find(ctx context.Context, res lookup.Resource, req lookup.Request) ([]model.Row, error)
}

type lookupRepository struct {
	client  query.Client
	maxRows int
}

func NewLookupRepository(client query.Client, maxRows int) LookupRepository {
	return &lookupRepository{client: client, maxRows: maxRows}
}

// Find returns the matching rows, possibly none. Build and execution
// failures are upstream errors.
func (r *lookupRepository) Find(ctx context.Context, res lookup.Resource, req lookup.Request) ([]model.Row, error) {
	st, err := lookup.Build(res, req, r.maxRows)
	if err != nil {
		return nil, apperr.Upstream("build "+res.Name, err)
	}

	rows, err := r.client.Query(ctx, st.SQL, st.Params)
	if err != nil {
		return nil, apperr.Upstream("lookup "+res.Name, err)
	}
	return rows, nil
}
