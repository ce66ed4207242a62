package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/primerdw/bartender-api/internal/audit"
	"github.com/primerdw/bartender-api/internal/lookup"
	"github.com/primerdw/bartender-api/internal/model"
	"github.com/primerdw/bartender-api/internal/query/querytest"
	"github.com/primerdw/bartender-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubKeys struct {
	valid map[string]bool
	err   error
}

func (s stubKeys) IsValid(_ context.Context, key string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.valid[key], nil
}

type memRecorder struct {
	mu     sync.Mutex
	events []audit.Event
}

func (m *memRecorder) Record(ev audit.Event) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	return true
}

func (m *memRecorder) Events() []audit.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]audit.Event(nil), m.events...)
}

type fixture struct {
	srv  *Server
	data *querytest.Fake
	rec  *memRecorder
}

func newFixture(t *testing.T, keys stubKeys, expose bool) *fixture {
	t.Helper()
	resources, err := lookup.Catalog(lookup.Tables{Items: "bartender.item_master", Products: "bartender.products"})
	require.NoError(t, err)

	data := &querytest.Fake{}
	rec := &memRecorder{}
	srv := NewServer(Options{Prefix: "/bartender", ExposeErrors: expose}, Deps{
		Keys:      keys,
		Lookups:   repository.NewLookupRepository(data, 1000),
		Resources: resources,
		Audit:     rec,
	})
	return &fixture{srv: srv, data: data, rec: rec}
}

func (f *fixture) get(target, apiKey string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if apiKey != "" {
		req.Header.Set("X-API-KEY", apiKey)
	}
	rec := httptest.NewRecorder()
	f.srv.ServeHTTP(rec, req)
	return rec
}

var validK1 = stubKeys{valid: map[string]bool{"K1": true}}

func TestUnauthorizedNeverQueries(t *testing.T) {
	f := newFixture(t, validK1, false)

	for _, target := range []string{
		"/bartender/items?param=ABC-1",
		"/bartender/items/search?param=ABC",
		"/bartender/product?barcode=000&mall=X",
		"/bartender/product_primer?barcode=000",
	} {
		for _, key := range []string{"", "wrong", "k1"} {
			rec := f.get(target, key)
			assert.Equal(t, http.StatusUnauthorized, rec.Code, target)
			assert.JSONEq(t, `{"error":"Unauthorized. Invalid API key."}`, rec.Body.String())
		}
	}
	assert.Zero(t, f.data.CallCount())
}

func TestProductWithInvalidKey(t *testing.T) {
	f := newFixture(t, validK1, false)

	rec := f.get("/bartender/product?barcode=000&mall=X", "bad")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Unauthorized. Invalid API key."}`, rec.Body.String())
}

func TestKeyLookupFailureIs500(t *testing.T) {
	f := newFixture(t, stubKeys{err: errors.New("registry unreachable")}, false)

	rec := f.get("/bartender/items?param=ABC-1", "K1")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal error"}`, rec.Body.String())
	assert.Zero(t, f.data.CallCount())
}

func TestItemsScenario(t *testing.T) {
	f := newFixture(t, validK1, false)
	f.data.Rows = []model.Row{{
		Columns: []string{"reference_1", "cas_no"},
		Values:  []any{"ABC-1", "999-99-9"},
	}}

	rec := f.get("/bartender/items?param=ABC-1", "K1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json"))
	assert.Equal(t, `[{"reference_1":"ABC-1","cas_no":"999-99-9"}]`, strings.TrimSpace(rec.Body.String()))

	calls := f.data.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "ABC-1", calls[0].Params["param"])
	assert.Contains(t, calls[0].SQL, "(reference_1 = :param OR cas_no = :param)")
}

func TestRowsBecomeArray(t *testing.T) {
	f := newFixture(t, validK1, false)
	cols := []string{"barcode", "mall_group_name", "description"}
	for i := 0; i < 3; i++ {
		f.data.Rows = append(f.data.Rows, model.Row{Columns: cols, Values: []any{"000", "X", i}})
	}

	rec := f.get("/bartender/product?barcode=000&mall=X", "K1")
	require.Equal(t, http.StatusOK, rec.Code)

	var body []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 3)
	for _, obj := range body {
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		assert.ElementsMatch(t, cols, keys)
	}
}

func TestNotFoundMessages(t *testing.T) {
	f := newFixture(t, validK1, false)

	cases := map[string]string{
		"/bartender/items?param=nope":            `{"message":"No items found"}`,
		"/bartender/items/search?param=nope":     `{"message":"No items found"}`,
		"/bartender/product?barcode=1&mall=Y":    `{"message":"Product not found"}`,
		"/bartender/product_primer?barcode=1":    `{"message":"Product not found"}`,
		"/bartender/product_primer?barcode=":     `{"message":"Product not found"}`,
		"/bartender/product_primer?unrelated=xx": `{"message":"Product not found"}`,
	}
	for target, want := range cases {
		rec := f.get(target, "K1")
		assert.Equal(t, http.StatusNotFound, rec.Code, target)
		assert.JSONEq(t, want, rec.Body.String(), target)
	}
}

func TestUpstreamFailure(t *testing.T) {
	f := newFixture(t, validK1, false)
	f.data.Err = errors.New("code: 60, Table bartender.products doesn't exist")

	rec := f.get("/bartender/product_primer?barcode=000", "K1")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal error"}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "Table")
}

func TestUpstreamFailureExposed(t *testing.T) {
	f := newFixture(t, validK1, true)
	f.data.Err = errors.New("boom")

	rec := f.get("/bartender/product_primer?barcode=000", "K1")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"boom"}`, rec.Body.String())
}

func TestOversizedParameter(t *testing.T) {
	f := newFixture(t, validK1, false)

	rec := f.get("/bartender/product_primer?barcode="+strings.Repeat("9", lookup.MaxValueLen+1), "K1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"invalid parameter barcode"}`, rec.Body.String())
	assert.Zero(t, f.data.CallCount())
}

func TestHostileValuesStayBound(t *testing.T) {
	f := newFixture(t, validK1, false)
	hostile := `0' OR '1'='1' --`

	f.get("/bartender/product?barcode="+strings.ReplaceAll(hostile, " ", "%20")+"&mall=X", "K1")

	calls := f.data.Calls()
	require.Len(t, calls, 1)
	assert.NotContains(t, calls[0].SQL, hostile)
	assert.NotContains(t, calls[0].SQL, "'")
	assert.Equal(t, hostile, calls[0].Params["barcode"])
}

func TestIdenticalRequestsIdenticalBodies(t *testing.T) {
	f := newFixture(t, validK1, false)
	f.data.Rows = []model.Row{
		{Columns: []string{"barcode", "price"}, Values: []any{"000", 12.5}},
		{Columns: []string{"barcode", "price"}, Values: []any{"000", nil}},
	}

	first := f.get("/bartender/product_primer?barcode=000", "K1")
	second := f.get("/bartender/product_primer?barcode=000", "K1")
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, first.Body.Bytes(), second.Body.Bytes())
}

func TestAuditEvents(t *testing.T) {
	f := newFixture(t, validK1, false)
	f.data.Rows = []model.Row{{Columns: []string{"barcode"}, Values: []any{"000"}}}

	f.get("/bartender/product?barcode=000", "K1")
	f.get("/bartender/product?barcode=000", "bad")

	evs := f.rec.Events()
	require.Len(t, evs, 2)

	assert.Equal(t, "product", evs[0].Resource)
	assert.Equal(t, "ok", evs[0].Outcome)
	assert.Equal(t, 1, evs[0].Rows)
	assert.Equal(t, []string{"barcode"}, evs[0].Params)
	assert.Equal(t, audit.Fingerprint("K1"), evs[0].KeyFingerprint)
	assert.NotEmpty(t, evs[0].ID)
	assert.NotEmpty(t, evs[0].RequestID)

	assert.Equal(t, "unauthorized", evs[1].Outcome)
	assert.Equal(t, http.StatusUnauthorized, evs[1].Status)
	assert.Empty(t, evs[1].KeyFingerprint)
}

func TestUnknownRoute(t *testing.T) {
	f := newFixture(t, validK1, false)

	rec := f.get("/bartender/unknown", "K1")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Not Found"}`, rec.Body.String())
}
