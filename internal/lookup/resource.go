package lookup

import (
	"fmt"
	"regexp"
)

type Match int

const (
	Exact Match = iota
	Contains
)

func (m Match) String() string {
	if m == Contains {
		return "contains"
	}
	return "exact"
}

// Filter binds one query-string parameter to one or more columns. When
// several columns are listed the value may match any of them.
type Filter struct {
	Param   string
	Columns []string
	Match   Match
}

// Resource is one lookup endpoint.
type Resource struct {
	Name     string
	Path     string
	Table    string
	NotFound string
	Filters  []Filter
}

// Params lists the query-string parameters the resource reads.
func (r Resource) Params() []string {
	out := make([]string, 0, len(r.Filters))
	for _, f := range r.Filters {
		out = append(out, f.Param)
	}
	return out
}

// Tables names the backing tables of the catalog.
type Tables struct {
	Items    string
	Products string
}

var identRe = regexp.MustCompile(`^[A-Za-z0-9_.\-]+$`)

// ValidIdentifier reports whether s can be used as a table or column name.
func ValidIdentifier(s string) bool { return identRe.MatchString(s) }

// Catalog returns the lookup resources served by the gateway.
func Catalog(t Tables) ([]Resource, error) {
	for _, name := range []string{t.Items, t.Products} {
		if !ValidIdentifier(name) {
			return nil, fmt.Errorf("invalid table identifier %q", name)
		}
	}

	return []Resource{
		{
			Name:     "items",
			Path:     "/items",
			Table:    t.Items,
			NotFound: "No items found",
			Filters: []Filter{
				{Param: "param", Columns: []string{"reference_1", "cas_no"}, Match: Exact},
			},
		},
		{
			Name:     "items_search",
			Path:     "/items/search",
			Table:    t.Items,
			NotFound: "No items found",
			Filters: []Filter{
				{Param: "param", Columns: []string{"reference_1"}, Match: Contains},
			},
		},
		{
			Name:     "product",
			Path:     "/product",
			Table:    t.Products,
			NotFound: "Product not found",
			Filters: []Filter{
				{Param: "barcode", Columns: []string{"barcode"}, Match: Exact},
				{Param: "mall", Columns: []string{"mall_group_name"}, Match: Exact},
			},
		},
		{
			Name:     "product_primer",
			Path:     "/product_primer",
			Table:    t.Products,
			NotFound: "Product not found",
			Filters: []Filter{
				{Param: "barcode", Columns: []string{"barcode"}, Match: Exact},
			},
		},
	}, nil
}
