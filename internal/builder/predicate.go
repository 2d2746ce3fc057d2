package builder

import (
	"slices"
	"strings"

	"goDT/internal/column"
	"goDT/internal/query"
)

// Search builds the global search filter. value is split on whitespace into
// atoms; each atom must be contained in at least one searchable column and
// every atom must match. An empty value yields a nil predicate.
func (b Builder) Search(reg *column.Registry, value string) (query.Predicate, []error) {
	atoms := strings.Fields(value)
	if len(atoms) == 0 {
		return nil, nil
	}
	cols, errs := reg.Searchable()
	if len(cols) == 0 {
		return nil, errs
	}

	groups := make([]query.Predicate, 0, len(atoms))
	for _, atom := range atoms {
		alts := make([]query.Predicate, 0, len(cols))
		for _, col := range cols {
			alts = append(alts, b.contains(col, atom))
		}
		groups = append(groups, query.AnyOf(alts...))
	}
	return query.AllOf(groups...), errs
}

// CompositeSearch builds one predicate per column from that column's own
// search value (keyed by display index) and requires all of them to match.
// Values are matched whole, not split into atoms.
func (b Builder) CompositeSearch(rv *column.Resolver, perColumn map[int]string) (query.Predicate, []error) {
	if len(perColumn) == 0 {
		return nil, nil
	}
	indexes := make([]int, 0, len(perColumn))
	for idx := range perColumn {
		indexes = append(indexes, idx)
	}
	slices.Sort(indexes)

	var preds []query.Predicate
	var errs []error
	for _, idx := range indexes {
		value := perColumn[idx]
		if strings.TrimSpace(value) == "" {
			continue
		}
		col, err := rv.SearchColumn(idx)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		preds = append(preds, b.contains(col, value))
	}
	return query.AllOf(preds...), errs
}
