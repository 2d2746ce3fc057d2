package memstore

import (
	"context"
	"slices"

	"goDT/internal/query"
	"goDT/internal/sql"
	"goDT/internal/storage"
)

// rowSet is a view over a snapshot. The snapshot is never mutated, so views
// derived from one another share it.
type rowSet struct {
	cols    []string
	rows    []sql.Row
	index   map[string]int
	filters []query.Predicate
	order   []query.SortClause
	paged   bool
	offset  int64
	limit   int64
}

func newRowSet(cols []string, rows []sql.Row) *rowSet {
	index := make(map[string]int, len(cols))
	for i, c := range cols {
		index[c] = i
	}
	return &rowSet{cols: cols, rows: rows, index: index}
}

func (rs *rowSet) clone() *rowSet {
	c := *rs
	c.filters = slices.Clone(rs.filters)
	c.order = slices.Clone(rs.order)
	return &c
}

func (rs *rowSet) Filter(p query.Predicate) storage.RowSet {
	if p == nil {
		return rs
	}
	c := rs.clone()
	c.filters = append(c.filters, p)
	return c
}

func (rs *rowSet) OrderBy(clauses ...query.SortClause) storage.RowSet {
	c := rs.clone()
	c.order = slices.Clone(clauses)
	return c
}

func (rs *rowSet) Page(offset, limit int64) storage.RowSet {
	c := rs.clone()
	c.paged = true
	c.offset = max(offset, 0)
	c.limit = limit
	return c
}

func (rs *rowSet) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return int64(len(rs.filtered())), nil
}

func (rs *rowSet) Fetch(ctx context.Context) ([]string, []sql.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	rows := rs.filtered()
	if len(rs.order) > 0 {
		rows = slices.Clone(rows)
		sortRows(rows, rs.order, rs.index)
	}
	if rs.paged {
		n := int64(len(rows))
		start := min(rs.offset, n)
		end := n
		// Compared against the remainder so start+limit cannot overflow.
		if rs.limit >= 0 && rs.limit < n-start {
			end = start + rs.limit
		}
		rows = rows[start:end]
	}

	// Hand out copies so callers cannot touch the snapshot.
	out := make([]sql.Row, len(rows))
	for i, r := range rows {
		out[i] = slices.Clone(r)
	}
	return slices.Clone(rs.cols), out, nil
}

func (rs *rowSet) filtered() []sql.Row {
	if len(rs.filters) == 0 {
		return rs.rows
	}
	m := compile(query.AllOf(rs.filters...), rs.index)
	var out []sql.Row
	for _, row := range rs.rows {
		if m(row) {
			out = append(out, row)
		}
	}
	return out
}
