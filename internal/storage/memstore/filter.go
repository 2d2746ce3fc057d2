package memstore

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"goDT/internal/query"
	"goDT/internal/sql"
)

type matcher func(row sql.Row) bool

// compile turns a predicate into a row matcher over the given column index.
// Contains renders the cell as text (the in-memory CAST) and tests for a
// case-folded literal substring, so LIKE metacharacters in the needle match
// only themselves.
func compile(p query.Predicate, index map[string]int) matcher {
	fold := cases.Fold()
	return compileWith(p, index, fold)
}

func compileWith(p query.Predicate, index map[string]int, fold cases.Caser) matcher {
	switch t := p.(type) {
	case query.Contains:
		idx, ok := index[t.Column.String()]
		if !ok {
			// Column not found: no rows match.
			return func(sql.Row) bool { return false }
		}
		needle := fold.String(t.Value)
		return func(row sql.Row) bool {
			if idx >= len(row) || row[idx].Type == sql.TypeNull {
				return false
			}
			return strings.Contains(fold.String(row[idx].Text()), needle)
		}
	case query.And:
		ms := make([]matcher, len(t))
		for i, e := range t {
			ms[i] = compileWith(e, index, fold)
		}
		return func(row sql.Row) bool {
			for _, m := range ms {
				if !m(row) {
					return false
				}
			}
			return true
		}
	case query.Or:
		ms := make([]matcher, len(t))
		for i, e := range t {
			ms[i] = compileWith(e, index, fold)
		}
		return func(row sql.Row) bool {
			for _, m := range ms {
				if m(row) {
					return true
				}
			}
			return false
		}
	case nil:
		return func(sql.Row) bool { return true }
	}
	return func(sql.Row) bool { return false }
}

// sortRows orders rows in place by the clauses; clauses on unknown columns
// are ignored. The sort is stable so ties keep storage order.
func sortRows(rows []sql.Row, order []query.SortClause, index map[string]int) {
	type key struct {
		idx  int
		desc bool
	}
	keys := make([]key, 0, len(order))
	for _, c := range order {
		if idx, ok := index[c.Column.String()]; ok {
			keys = append(keys, key{idx: idx, desc: c.Dir == query.Desc})
		}
	}
	if len(keys) == 0 {
		return
	}
	slices.SortStableFunc(rows, func(a, b sql.Row) int {
		for _, k := range keys {
			c := sql.Compare(a[k.idx], b[k.idx])
			if c == 0 {
				continue
			}
			if k.desc {
				return -c
			}
			return c
		}
		return 0
	})
}
