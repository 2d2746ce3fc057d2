package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	sq "github.com/Masterminds/squirrel"

	"goDT/internal/query"
	dtsql "goDT/internal/sql"
	"goDT/internal/storage"
)

type rowSet struct {
	db      *sql.DB
	dialect query.Dialect
	query   Query
	exprs   map[string]string // computed field ref -> expression

	where  []sq.Sqlizer
	order  []query.SortClause
	paged  bool
	offset int64
	limit  int64
}

func newRowSet(db *sql.DB, d query.Dialect, q Query) *rowSet {
	exprs := make(map[string]string)
	for _, f := range q.Fields {
		if f.Expr != "" {
			exprs[f.Ref] = f.Expr
		}
	}
	return &rowSet{db: db, dialect: d, query: q, exprs: exprs}
}

func (r *rowSet) clone() *rowSet {
	c := *r
	c.where = slices.Clone(r.where)
	c.order = slices.Clone(r.order)
	return &c
}

func (r *rowSet) Filter(p query.Predicate) storage.RowSet {
	if p == nil {
		return r
	}
	c := r.clone()
	c.where = append(c.where, c.sqlize(p))
	return c
}

func (r *rowSet) OrderBy(clauses ...query.SortClause) storage.RowSet {
	c := r.clone()
	c.order = slices.Clone(clauses)
	return c
}

func (r *rowSet) Page(offset, limit int64) storage.RowSet {
	c := r.clone()
	c.paged = true
	c.offset = max(offset, 0)
	c.limit = limit
	return c
}

func (r *rowSet) Count(ctx context.Context) (int64, error) {
	stmt, args, err := r.countSQL()
	if err != nil {
		return 0, err
	}
	var n int64
	if err := r.db.QueryRowContext(ctx, stmt, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

func (r *rowSet) Fetch(ctx context.Context) ([]string, []dtsql.Row, error) {
	stmt, args, err := r.selectSQL()
	if err != nil {
		return nil, nil, err
	}
	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch: %w", err)
	}
	defer rows.Close()

	cols := make([]string, len(r.query.Fields))
	for i, f := range r.query.Fields {
		cols[i] = f.Ref
	}

	var out []dtsql.Row
	raw := make([]any, len(cols))
	dest := make([]any, len(cols))
	for i := range raw {
		dest[i] = &raw[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, nil, fmt.Errorf("scan: %w", err)
		}
		row := make(dtsql.Row, len(cols))
		for i, x := range raw {
			row[i] = toValue(x)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("fetch: %w", err)
	}
	return cols, out, nil
}

// toValue converts a scanned driver value. Types without a direct mapping
// (numeric decimals, driver specific structs) keep their printed form.
func toValue(x any) dtsql.Value {
	v, err := dtsql.FromAny(x)
	if err != nil {
		return dtsql.String(fmt.Sprint(x))
	}
	return v
}

// base is the SELECT over the source with filters applied but without
// columns, ordering or paging.
func (r *rowSet) base() sq.SelectBuilder {
	b := sq.Select().From(r.query.From)
	for _, j := range r.query.Joins {
		b = b.JoinClause(j)
	}
	for _, w := range r.where {
		b = b.Where(w)
	}
	return b.PlaceholderFormat(placeholder(r.dialect))
}

func (r *rowSet) countSQL() (string, []any, error) {
	return r.base().Columns("COUNT(*)").ToSql()
}

func (r *rowSet) selectSQL() (string, []any, error) {
	b := r.base()
	for _, f := range r.query.Fields {
		b = b.Column(f.selectSQL())
	}
	for _, o := range r.order {
		b = b.OrderBy(r.expr(o.Column) + " " + string(o.Dir))
	}
	if r.paged {
		b = r.paginate(b)
	}
	return b.ToSql()
}

func (r *rowSet) paginate(b sq.SelectBuilder) sq.SelectBuilder {
	if r.dialect == query.Oracle {
		b = b.Suffix(fmt.Sprintf("OFFSET %d ROWS", r.offset))
		if r.limit >= 0 {
			b = b.Suffix(fmt.Sprintf("FETCH NEXT %d ROWS ONLY", r.limit))
		}
		return b
	}
	if r.limit >= 0 {
		b = b.Limit(uint64(r.limit))
	} else if r.dialect == query.MySQL || r.dialect == query.SQLite {
		// Both need a LIMIT before OFFSET.
		b = b.Limit(1<<63 - 1)
	}
	if r.offset > 0 {
		b = b.Offset(uint64(r.offset))
	}
	return b
}

// expr returns the SQL expression for a column reference: the computed
// expression for a computed field, the reference itself otherwise.
func (r *rowSet) expr(c query.Column) string {
	if e, ok := r.exprs[c.String()]; ok {
		return e
	}
	return c.String()
}
