package lookup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalogByName(t *testing.T) map[string]Resource {
	t.Helper()
	resources, err := Catalog(Tables{Items: "bartender.item_master", Products: "bartender.products"})
	require.NoError(t, err)

	out := make(map[string]Resource, len(resources))
	for _, r := range resources {
		out[r.Name] = r
	}
	return out
}

func TestBuildItemsMatchesEitherColumn(t *testing.T) {
	res := catalogByName(t)["items"]

	st, err := Build(res, NewRequest(map[string]string{"param": "ABC-1"}), 1000)
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT * FROM `bartender`.`item_master` WHERE (reference_1 = :param OR cas_no = :param) LIMIT :max_rows",
		st.SQL)
	assert.Equal(t, map[string]any{"param": "ABC-1", "max_rows": 1000}, st.Params)
}

func TestBuildProductCombinesWithAnd(t *testing.T) {
	res := catalogByName(t)["product"]

	st, err := Build(res, NewRequest(map[string]string{"barcode": "000", "mall": "X"}), 0)
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT * FROM `bartender`.`products` WHERE barcode = :barcode AND mall_group_name = :mall",
		st.SQL)
	assert.Equal(t, map[string]any{"barcode": "000", "mall": "X"}, st.Params)
}

func TestBuildOmitsAbsentFilters(t *testing.T) {
	res := catalogByName(t)["product"]

	st, err := Build(res, NewRequest(map[string]string{"mall": "X"}), 10)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM `bartender`.`products` WHERE mall_group_name = :mall LIMIT :max_rows", st.SQL)
	assert.NotContains(t, st.Params, "barcode")

	st, err = Build(res, Request{}, 10)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM `bartender`.`products` LIMIT :max_rows", st.SQL)
}

func TestBuildEmptyValueIsAFilter(t *testing.T) {
	res := catalogByName(t)["product_primer"]

	st, err := Build(res, NewRequest(map[string]string{"barcode": ""}), 0)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM `bartender`.`products` WHERE barcode = :barcode", st.SQL)
	assert.Equal(t, "", st.Params["barcode"])
}

func TestBuildContainsWrapsAndEscapes(t *testing.T) {
	res := catalogByName(t)["items_search"]

	st, err := Build(res, NewRequest(map[string]string{"param": `50%_off\`}), 0)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM `bartender`.`item_master` WHERE reference_1 LIKE :param", st.SQL)
	assert.Equal(t, `%50\%\_off\\%`, st.Params["param"])
}

func TestBuildNeverInlinesUserValues(t *testing.T) {
	hostile := []string{
		`x' OR '1'='1`,
		`000"; DROP TABLE products; --`,
		`/* comment */ 1`,
		"`x`) OR 1=1 --",
	}
	for name, res := range catalogByName(t) {
		for _, v := range hostile {
			values := map[string]string{}
			for _, p := range res.Params() {
				values[p] = v
			}
			st, err := Build(res, NewRequest(values), 100)
			require.NoError(t, err, name)
			assert.NotContains(t, st.SQL, v, name)
			for _, p := range res.Params() {
				assert.Contains(t, st.Params[p], v, name)
			}
		}
	}
}

func TestBuildRejectsBadIdentifiers(t *testing.T) {
	_, err := Build(Resource{Table: "products; DROP"}, Request{}, 0)
	assert.Error(t, err)

	_, err = Build(Resource{
		Table:   "products",
		Filters: []Filter{{Param: "p", Columns: []string{"a b"}}},
	}, NewRequest(map[string]string{"p": "x"}), 0)
	assert.Error(t, err)

	_, err = Catalog(Tables{Items: "items`", Products: "products"})
	assert.Error(t, err)
}
