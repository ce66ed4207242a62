package lookup

import (
	"fmt"
	"strings"
)

// Statement is SQL text with named placeholders (":name") and the values
// bound to them. User input only ever lives in Params.
type Statement struct {
	SQL    string
	Params map[string]any
}

const maxRowsParam = "max_rows"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Build renders the lookup for res. A filter whose parameter is absent adds
// no clause. The result is capped at maxRows rows when maxRows > 0.
func Build(res Resource, req Request, maxRows int) (Statement, error) {
	if !ValidIdentifier(res.Table) {
		return Statement{}, fmt.Errorf("invalid table identifier %q", res.Table)
	}

	var sb strings.Builder
	params := make(map[string]any, len(res.Filters)+1)

	sb.WriteString("SELECT * FROM ")
	sb.WriteString(QuoteIdent(res.Table))

	clauses := 0
	for _, f := range res.Filters {
		v, ok := req.Value(f.Param)
		if !ok {
			continue
		}
		if _, dup := params[f.Param]; dup {
			return Statement{}, fmt.Errorf("parameter %q bound twice", f.Param)
		}

		cond, err := filterCondition(f)
		if err != nil {
			return Statement{}, err
		}
		if clauses == 0 {
			sb.WriteString(" WHERE ")
		} else {
			sb.WriteString(" AND ")
		}
		sb.WriteString(cond)
		clauses++

		if f.Match == Contains {
			params[f.Param] = "%" + likeEscaper.Replace(v) + "%"
		} else {
			params[f.Param] = v
		}
	}

	if maxRows > 0 {
		sb.WriteString(" LIMIT :" + maxRowsParam)
		params[maxRowsParam] = maxRows
	}

	return Statement{SQL: sb.String(), Params: params}, nil
}

func filterCondition(f Filter) (string, error) {
	if len(f.Columns) == 0 {
		return "", fmt.Errorf("filter %q has no columns", f.Param)
	}
	op := "="
	if f.Match == Contains {
		op = "LIKE"
	}

	parts := make([]string, 0, len(f.Columns))
	for _, col := range f.Columns {
		if !ValidIdentifier(col) {
			return "", fmt.Errorf("invalid column identifier %q", col)
		}
		parts = append(parts, fmt.Sprintf("%s %s :%s", col, op, f.Param))
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return "(" + strings.Join(parts, " OR ") + ")", nil
}

// QuoteIdent back-quotes every dotted segment: db.table -> `db`.`table`.
func QuoteIdent(name string) string {
	segs := strings.Split(name, ".")
	for i, s := range segs {
		segs[i] = "`" + s + "`"
	}
	return strings.Join(segs, ".")
}
