package builder

import (
	"goDT/internal/column"
	"goDT/internal/query"
	"goDT/internal/request"
)

// Order resolves the requested sorts, keeping the client's order: the first
// clause is the primary key. Clauses whose column does not resolve are
// dropped and reported.
func (b Builder) Order(rv *column.Resolver, order []request.OrderParam) ([]query.SortClause, []error) {
	var clauses []query.SortClause
	var errs []error
	for _, o := range order {
		col, err := rv.SortColumn(o.Column)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		clauses = append(clauses, query.SortClause{Column: col, Dir: query.ParseDirection(o.Dir)})
	}
	return clauses, errs
}
