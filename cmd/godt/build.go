package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"goDT/internal/column"
	"goDT/internal/config"
	"goDT/internal/engine"
	"goDT/internal/paginate"
	"goDT/internal/storage"
	"goDT/internal/storage/memstore"
	"goDT/internal/storage/sqlstore"
)

// buildEngine wires the configured tables to their sources. The returned
// close function releases the database, if one was opened.
func buildEngine(ctx context.Context, cfg *config.Config, defs *config.Tables, log zerolog.Logger,
	onDropped func(table, kind string, err error)) (*engine.Engine, func() error, error) {
	pager, err := paginate.ByName(cfg.Paginator, cfg.PageSize)
	if err != nil {
		return nil, nil, err
	}

	b := &sourceBuilder{cfg: cfg, store: memstore.New()}
	closeFn := func() error {
		if b.db != nil {
			return b.db.Close()
		}
		return nil
	}

	tables := make([]*engine.Table, 0, len(defs.Tables))
	for _, name := range defs.Names() {
		def := defs.Tables[name]
		reg, err := column.NewRegistry(def.Specs(), def.Entities, log.With().Str("table", name).Logger())
		if err != nil {
			closeFn()
			return nil, nil, fmt.Errorf("table %s: %w", name, err)
		}
		src, err := b.source(ctx, def, reg)
		if err != nil {
			closeFn()
			return nil, nil, fmt.Errorf("table %s: %w", name, err)
		}
		tables = append(tables, &engine.Table{Name: name, Columns: reg, Source: src})
	}

	eng, err := engine.New(engine.Config{
		Dialect:         cfg.Dialect(),
		Paginator:       pager,
		PageSize:        cfg.PageSize,
		CompositeSearch: cfg.CompositeSearch,
		OnDropped:       onDropped,
	}, tables...)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return eng, closeFn, nil
}

type sourceBuilder struct {
	cfg   *config.Config
	store *memstore.Store
	db    *sql.DB
}

func (b *sourceBuilder) source(ctx context.Context, def config.TableDef, reg *column.Registry) (storage.Source, error) {
	if def.Memory != nil {
		return b.memory(def.Memory, reg)
	}

	if b.db == nil {
		db, err := sqlstore.Open(ctx, b.cfg.Dialect(), b.cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		b.db = db
	}

	// Select every declared column that resolved; computed ones through their
	// expression.
	q := sqlstore.Query{From: def.From, Joins: def.Joins}
	seen := make(map[string]bool)
	for _, name := range reg.Names() {
		col, err := reg.Lookup(name)
		if err != nil || seen[col.String()] {
			continue
		}
		seen[col.String()] = true
		f := sqlstore.Field{Ref: col.String()}
		if col.Virtual() {
			expr, ok := def.Computed[col.Name]
			if !ok {
				return nil, fmt.Errorf("column %s: no computed expression for %q", name, col.Name)
			}
			f.Expr = expr
		}
		q.Fields = append(q.Fields, f)
	}
	return sqlstore.NewSource(b.db, b.cfg.Dialect(), q)
}

func (b *sourceBuilder) memory(m *config.MemoryTable, reg *column.Registry) (storage.Source, error) {
	schema, err := m.Schema()
	if err != nil {
		return nil, err
	}
	rows, err := m.Data()
	if err != nil {
		return nil, err
	}
	if err := b.store.CreateTable(m.Table, schema); err != nil {
		return nil, err
	}
	if err := b.store.Insert(m.Table, rows...); err != nil {
		return nil, err
	}

	// Every resolved column must be one the store holds.
	stored, err := b.store.TableSchema(m.Table)
	if err != nil {
		return nil, err
	}
	have := make(map[string]bool, len(stored))
	for _, c := range stored {
		have[m.Table+"."+c.Name] = true
	}
	for _, name := range reg.Names() {
		col, err := reg.Lookup(name)
		if err != nil {
			continue
		}
		if !have[col.String()] {
			return nil, fmt.Errorf("column %s: %q is not a column of memory table %s", name, col, m.Table)
		}
	}
	return b.store.Source(m.Table), nil
}

// demoTables is served when no tables file is configured.
func demoTables() *config.Tables {
	return &config.Tables{Tables: map[string]config.TableDef{
		"users": {
			Memory: &config.MemoryTable{
				Table: "users",
				Columns: []config.MemoryColumn{
					{Name: "id", Type: "int"},
					{Name: "name", Type: "string"},
					{Name: "active", Type: "bool"},
				},
				Rows: [][]any{
					{1, "Alice", true},
					{2, "Bob", false},
					{3, "Carol", true},
				},
			},
			Columns: []config.ColumnDef{
				{Name: "id", Source: "users.id", Sortable: true},
				{Name: "name", Source: "users.name", Sortable: true, Searchable: true},
				{Name: "active", Source: "users.active", Sortable: true, Searchable: true},
			},
		},
	}}
}
