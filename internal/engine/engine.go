package engine

import (
	"errors"
	"fmt"
	"slices"

	"goDT/internal/builder"
	"goDT/internal/column"
	"goDT/internal/paginate"
	"goDT/internal/query"
	"goDT/internal/request"
	"goDT/internal/storage"
)

// ErrMethodNotImplemented is returned at construction when a table or the
// engine lacks a required collaborator.
var ErrMethodNotImplemented = errors.New("method not implemented")

// ErrUnknownTable is returned for a table name the engine does not serve.
var ErrUnknownTable = errors.New("unknown table")

// Config holds the engine-wide settings.
type Config struct {
	Dialect   query.Dialect
	Paginator paginate.Paginator
	// PageSize is the length used when a request carries none.
	PageSize int64
	// CompositeSearch applies the per-column search values of a request.
	CompositeSearch bool
	// OnDropped, when set, is called for every sort or search term that is
	// dropped because its column did not resolve. kind is "sort" or "search".
	OnDropped func(table, kind string, err error)
}

// Table is one servable data-grid table.
type Table struct {
	Name    string
	Columns *column.Registry
	Source  storage.Source
	// Serializer shapes fetched rows into the response data; nil selects
	// Projection(Columns).
	Serializer Serializer
}

// Engine answers data-grid requests for a fixed set of tables. It holds no
// per-request state and is safe for concurrent use.
type Engine struct {
	cfg        Config
	builder    builder.Builder
	normalizer request.Normalizer
	tables     map[string]*Table
}

// New validates cfg and tables and returns a ready engine. The engine keeps
// its own copy of each table.
func New(cfg Config, tables ...*Table) (*Engine, error) {
	if cfg.Dialect.CastType() == "" {
		return nil, fmt.Errorf("engine: unknown dialect %q", cfg.Dialect)
	}
	if cfg.Paginator == nil {
		return nil, fmt.Errorf("engine: no paginator: %w", ErrMethodNotImplemented)
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = request.DefaultLength
	}

	e := &Engine{
		cfg:        cfg,
		builder:    builder.New(cfg.Dialect),
		normalizer: request.Normalizer{PageSize: cfg.PageSize},
		tables:     make(map[string]*Table, len(tables)),
	}
	for _, t := range tables {
		if t == nil || t.Name == "" {
			return nil, errors.New("engine: table without a name")
		}
		if _, dup := e.tables[t.Name]; dup {
			return nil, fmt.Errorf("engine: table %q declared twice", t.Name)
		}
		if t.Columns == nil {
			return nil, fmt.Errorf("engine: table %q has no columns", t.Name)
		}
		if t.Source == nil {
			return nil, fmt.Errorf("engine: table %q has no raw record source: %w", t.Name, ErrMethodNotImplemented)
		}
		own := *t
		if own.Serializer == nil {
			own.Serializer = Projection(own.Columns)
		}
		e.tables[t.Name] = &own
	}
	return e, nil
}

// Tables returns the served table names in sorted order.
func (e *Engine) Tables() []string {
	names := make([]string, 0, len(e.tables))
	for name := range e.tables {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Table returns the named table.
func (e *Engine) Table(name string) (*Table, error) {
	t, ok := e.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTable, name)
	}
	return t, nil
}
