// Package column maps the logical columns a client sees to the physical
// columns of the data source.
//
// A Registry is built once per table definition and is read-only
// afterwards. Each request then gets its own Resolver, bound to the display
// order the client sent.
package column

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/jinzhu/inflection"
	"github.com/rs/zerolog"

	"goDT/internal/query"
)

// Spec declares one logical column.
type Spec struct {
	// Name is the display name the client uses (columns[].data).
	Name string
	// Source is "Entity.column", or a bare name for a virtual column.
	Source     string
	Sortable   bool
	Searchable bool
	// Legacy marks a Source written as "table_names.column": the fragment
	// before the dot is singularized and camelized to find the entity.
	Legacy bool
}

type entry struct {
	spec Spec
	col  query.Column
	err  error
}

// Registry holds the declared columns of one table with their physical
// references resolved.
type Registry struct {
	entries    []entry
	byName     map[string]int
	bySource   map[string]int
	sortable   []int
	searchable []int
}

var (
	identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	tableRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)
)

// NewRegistry validates specs and resolves every Source against entities,
// which maps logical entity names to physical table names. With an empty
// entities map, entity names are used as table names.
//
// A column whose Source cannot be resolved is kept, logged, and reported as
// unresolvable whenever a request references it.
func NewRegistry(specs []Spec, entities map[string]string, log zerolog.Logger) (*Registry, error) {
	for entity, table := range entities {
		if !tableRe.MatchString(table) {
			return nil, fmt.Errorf("entity %q: invalid table name %q", entity, table)
		}
	}

	r := &Registry{
		entries:  make([]entry, 0, len(specs)),
		byName:   make(map[string]int, len(specs)),
		bySource: make(map[string]int, len(specs)),
	}
	for i, s := range specs {
		if s.Name == "" {
			return nil, fmt.Errorf("column %d: missing name", i)
		}
		if s.Source == "" {
			return nil, fmt.Errorf("column %q: missing source", s.Name)
		}
		if _, dup := r.byName[s.Name]; dup {
			return nil, fmt.Errorf("column %q declared twice", s.Name)
		}

		col, legacyUsed, err := resolve(s, entities)
		switch {
		case err != nil:
			log.Warn().Str("column", s.Name).Str("source", s.Source).Err(err).
				Msg("column source does not resolve; requests referencing it will drop the term")
		case legacyUsed:
			log.Warn().Str("column", s.Name).Str("source", s.Source).Str("resolved", col.String()).
				Msg("[DEPRECATED] table_name.column_name notation; declare the source as Entity.column")
		}

		idx := len(r.entries)
		r.entries = append(r.entries, entry{spec: s, col: col, err: err})
		r.byName[s.Name] = idx
		if _, seen := r.bySource[s.Source]; !seen {
			r.bySource[s.Source] = idx
		}
		if s.Sortable {
			r.sortable = append(r.sortable, idx)
		}
		if s.Searchable {
			r.searchable = append(r.searchable, idx)
		}
	}
	return r, nil
}

// resolve tries the strategy the column's Legacy flag selects, then the other
// one. legacyUsed reports whether the legacy strategy produced the result.
func resolve(s Spec, entities map[string]string) (col query.Column, legacyUsed bool, err error) {
	first, second := modernSource, legacySource
	if s.Legacy {
		first, second = legacySource, modernSource
	}
	col, err = first(s.Source, entities)
	if err == nil {
		return col, s.Legacy, nil
	}
	col, err2 := second(s.Source, entities)
	if err2 == nil {
		return col, !s.Legacy, nil
	}
	return query.Column{}, false, err
}

func modernSource(source string, entities map[string]string) (query.Column, error) {
	entity, name, ok := strings.Cut(source, ".")
	if !ok {
		return virtual(source)
	}
	table, err := lookupEntity(entity, entities)
	if err != nil {
		return query.Column{}, err
	}
	return physical(table, name)
}

func legacySource(source string, entities map[string]string) (query.Column, error) {
	fragment, name, ok := strings.Cut(source, ".")
	if !ok {
		return virtual(source)
	}
	entity := strcase.ToCamel(inflection.Singular(fragment))
	table, ok := entities[entity]
	if !ok {
		return query.Column{}, fmt.Errorf("unknown entity %q (from %q)", entity, fragment)
	}
	return physical(table, name)
}

func lookupEntity(entity string, entities map[string]string) (string, error) {
	if table, ok := entities[entity]; ok {
		return table, nil
	}
	if len(entities) == 0 && tableRe.MatchString(entity) {
		return entity, nil
	}
	return "", fmt.Errorf("unknown entity %q", entity)
}

func physical(table, name string) (query.Column, error) {
	if name == "" {
		return virtual(table)
	}
	if !identRe.MatchString(name) {
		return query.Column{}, fmt.Errorf("invalid column name %q", name)
	}
	return query.Column{Table: table, Name: name}, nil
}

func virtual(name string) (query.Column, error) {
	if !identRe.MatchString(name) {
		return query.Column{}, fmt.Errorf("invalid virtual column name %q", name)
	}
	return query.Column{Name: name}, nil
}

// Names returns the declared display names in declaration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.spec.Name
	}
	return out
}

// Specs returns the declared columns in declaration order.
func (r *Registry) Specs() []Spec {
	out := make([]Spec, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.spec
	}
	return out
}

// Lookup returns the physical column for a declared display name.
func (r *Registry) Lookup(name string) (query.Column, error) {
	idx, ok := r.byName[name]
	if !ok {
		return query.Column{}, unresolvable(name, "unknown column", nil)
	}
	return r.column(idx)
}

// Searchable returns the physical columns of every searchable column that
// resolved, in declaration order, and the errors of those that did not.
func (r *Registry) Searchable() ([]query.Column, []error) {
	var cols []query.Column
	var errs []error
	for _, idx := range r.searchable {
		col, err := r.column(idx)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		cols = append(cols, col)
	}
	return cols, errs
}

func (r *Registry) column(idx int) (query.Column, error) {
	e := r.entries[idx]
	if e.err != nil {
		return query.Column{}, unresolvable(e.spec.Name, "source "+e.spec.Source+" does not resolve", e.err)
	}
	return e.col, nil
}
