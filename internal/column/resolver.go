package column

import (
	"slices"
	"strconv"

	"goDT/internal/query"
)

// Resolver resolves display column indexes for one request. It is cheap to
// build and must not be shared between requests.
type Resolver struct {
	reg       *Registry
	displayed []string
}

// Resolver binds r to the client's display order. An empty displayed list
// falls back to the registry's declaration order.
func (r *Registry) Resolver(displayed []string) *Resolver {
	if len(displayed) == 0 {
		displayed = r.Names()
	}
	return &Resolver{reg: r, displayed: displayed}
}

// Displayed returns the display order in effect.
func (rv *Resolver) Displayed() []string { return rv.displayed }

func (rv *Resolver) displayName(index int) (string, error) {
	if index < 0 || index >= len(rv.displayed) {
		return "", unresolvable(strconv.Itoa(index), "display index out of range", nil)
	}
	return rv.displayed[index], nil
}

// SortColumn resolves the column at display index for ordering.
//
// A declared display name resolves through its Spec. Otherwise the name is
// matched positionally against the sortable columns: an integer name n
// selects the n-th sortable column, a name equal to a sortable Source selects
// that column, and any other name selects the sortable column at the name's
// position in the display order.
func (rv *Resolver) SortColumn(index int) (query.Column, error) {
	name, err := rv.displayName(index)
	if err != nil {
		return query.Column{}, err
	}
	reg := rv.reg
	if idx, ok := reg.byName[name]; ok {
		if !reg.entries[idx].spec.Sortable {
			return query.Column{}, unresolvable(name, "column is not sortable", nil)
		}
		return reg.column(idx)
	}

	var pos int
	if n, err := strconv.Atoi(name); err == nil {
		pos = n
	} else if idx, ok := reg.bySource[name]; ok && reg.entries[idx].spec.Sortable {
		return reg.column(idx)
	} else {
		pos = slices.Index(rv.displayed, name)
	}
	if pos < 0 || pos >= len(reg.sortable) {
		return query.Column{}, unresolvable(name, "no sortable column at position "+strconv.Itoa(pos), nil)
	}
	return reg.column(reg.sortable[pos])
}

// SearchColumn resolves the column at display index for a per-column
// search. A declared display name must be searchable; an undeclared one
// selects the searchable column at the same index.
func (rv *Resolver) SearchColumn(index int) (query.Column, error) {
	name, err := rv.displayName(index)
	if err != nil {
		return query.Column{}, err
	}
	reg := rv.reg
	if idx, ok := reg.byName[name]; ok {
		if !reg.entries[idx].spec.Searchable {
			return query.Column{}, unresolvable(name, "column is not searchable", nil)
		}
		return reg.column(idx)
	}
	if index >= len(reg.searchable) {
		return query.Column{}, unresolvable(name, "no searchable column at position "+strconv.Itoa(index), nil)
	}
	return reg.column(reg.searchable[index])
}
