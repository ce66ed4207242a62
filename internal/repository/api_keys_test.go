package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/primerdw/bartender-api/internal/apperr"
	"github.com/primerdw/bartender-api/internal/model"
	"github.com/primerdw/bartender-api/internal/query/querytest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIKeysIsValid(t *testing.T) {
	fake := &querytest.Fake{Rows: []model.Row{{Columns: []string{"1"}, Values: []any{uint8(1)}}}}
	repo, err := NewAPIKeysRepository(fake, "ep_keys.api_keys")
	require.NoError(t, err)

	ok, err := repo.IsValid(context.Background(), "K1")
	require.NoError(t, err)
	assert.True(t, ok)

	calls := fake.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t,
		"SELECT 1 FROM `ep_keys`.`api_keys` WHERE api_key = :api_key AND active = true LIMIT 1",
		calls[0].SQL)
	assert.Equal(t, map[string]any{"api_key": "K1"}, calls[0].Params)
}

func TestAPIKeysNoRecordIsInvalid(t *testing.T) {
	fake := &querytest.Fake{}
	repo, err := NewAPIKeysRepository(fake, "api_keys")
	require.NoError(t, err)

	ok, err := repo.IsValid(context.Background(), "inactive-or-unknown")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAPIKeysEmptyKeySkipsQuery(t *testing.T) {
	fake := &querytest.Fake{}
	repo, err := NewAPIKeysRepository(fake, "api_keys")
	require.NoError(t, err)

	ok, err := repo.IsValid(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, fake.CallCount())
}

func TestAPIKeysLookupFailureIsNotInvalid(t *testing.T) {
	fake := &querytest.Fake{Err: errors.New("dial tcp: connection refused")}
	repo, err := NewAPIKeysRepository(fake, "api_keys")
	require.NoError(t, err)

	ok, err := repo.IsValid(context.Background(), "K1")
	assert.False(t, ok)

	var up *apperr.UpstreamError
	require.ErrorAs(t, err, &up)
	assert.NotErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestAPIKeysRejectsBadTable(t *testing.T) {
	_, err := NewAPIKeysRepository(&querytest.Fake{}, "keys WHERE 1=1 --")
	assert.Error(t, err)
}
