package sqlstore

import (
	sq "github.com/Masterminds/squirrel"

	"goDT/internal/query"
)

func placeholder(d query.Dialect) sq.PlaceholderFormat {
	switch d {
	case query.Postgres:
		return sq.Dollar
	case query.Oracle:
		return sq.Colon
	}
	return sq.Question
}

// sqlize translates a predicate tree into squirrel conditions. The search
// atom always travels as a bound argument.
func (r *rowSet) sqlize(p query.Predicate) sq.Sqlizer {
	switch p := p.(type) {
	case query.Contains:
		return r.contains(p)
	case query.And:
		out := make(sq.And, 0, len(p))
		for _, e := range p {
			out = append(out, r.sqlize(e))
		}
		return out
	case query.Or:
		out := make(sq.Or, 0, len(p))
		for _, e := range p {
			out = append(out, r.sqlize(e))
		}
		return out
	}
	return sq.Expr("1=1")
}

func (r *rowSet) contains(c query.Contains) sq.Sqlizer {
	cast := c.Cast
	if cast == "" {
		cast = r.dialect.CastType()
	}
	col := "CAST(" + r.expr(c.Column) + " AS " + cast + ")"
	pattern := query.LikePattern(c.Value)

	switch r.dialect {
	case query.Postgres:
		return sq.Expr(col+" ILIKE ?", pattern)
	case query.MySQL:
		return sq.Expr("LOWER("+col+") LIKE LOWER(?)", pattern)
	default:
		return sq.Expr("LOWER("+col+") LIKE LOWER(?) ESCAPE '\\'", pattern)
	}
}
