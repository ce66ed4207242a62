package lookup

import (
	"net/url"
	"unicode/utf8"

	"github.com/primerdw/bartender-api/internal/apperr"
)

// MaxValueLen caps the length of a single parameter value, in runes.
const MaxValueLen = 256

// Request holds the filter values of one call. A nil entry, or no entry,
// means the parameter was not supplied; a pointer to "" is a filter on
// the empty string.
type Request struct {
	values map[string]*string
}

// NewRequest builds a Request from explicit values. Handy in tests and CLI.
func NewRequest(values map[string]string) Request {
	r := Request{values: make(map[string]*string, len(values))}
	for k, v := range values {
		v := v
		r.values[k] = &v
	}
	return r
}

// ParseRequest reads the resource's parameters from q. Only the first value
// of a repeated parameter is used; undeclared parameters are ignored.
func ParseRequest(res Resource, q url.Values) (Request, error) {
	r := Request{values: make(map[string]*string, len(res.Filters))}
	for _, p := range res.Params() {
		vs, ok := q[p]
		if !ok || len(vs) == 0 {
			continue
		}
		v := vs[0]
		if !utf8.ValidString(v) || utf8.RuneCountInString(v) > MaxValueLen {
			return Request{}, apperr.Invalid(p)
		}
		r.values[p] = &v
	}
	return r, nil
}

// Value returns the parameter value and whether it was supplied.
func (r Request) Value(param string) (string, bool) {
	v := r.values[param]
	if v == nil {
		return "", false
	}
	return *v, true
}

// Supplied counts the parameters present in the request.
func (r Request) Supplied() int {
	n := 0
	for _, v := range r.values {
		if v != nil {
			n++
		}
	}
	return n
}
