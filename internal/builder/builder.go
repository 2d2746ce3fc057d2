// Package builder turns normalized request parameters into the filter
// predicate and sort clauses handed to a data source.
//
// Terms that reference a column which does not resolve are dropped; the
// builders return the corresponding errors so callers can log them, but they
// never fail the request.
package builder

import "goDT/internal/query"

// Builder builds predicates for one database dialect. It holds no request
// state and may be shared.
type Builder struct {
	cast string
}

// New returns a Builder casting searched columns to d's text type.
func New(d query.Dialect) Builder {
	return Builder{cast: d.CastType()}
}

func (b Builder) contains(col query.Column, value string) query.Predicate {
	return query.Contains{Column: col, Cast: b.cast, Value: value}
}
