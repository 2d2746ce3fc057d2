package memstore

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"goDT/internal/sql"
	"goDT/internal/storage"
)

type table struct {
	name string
	cols []sql.Column // column names
	rows []sql.Row    // stored rows
}

// Store is an in-memory storage engine. Reads take a snapshot, so a RowSet
// obtained from Records is unaffected by later writes.
type Store struct {
	mu     sync.RWMutex
	tables map[string]*table
}

// New creates a new in-memory storage engine.
func New() *Store {
	return &Store{
		tables: make(map[string]*table),
	}
}

// CreateTable creates a new empty table.
func (s *Store) CreateTable(name string, cols []sql.Column) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tables[name]; exists {
		return fmt.Errorf("table %s already exists", name)
	}

	s.tables[name] = &table{
		name: name,
		cols: slices.Clone(cols),
		rows: make([]sql.Row, 0),
	}

	return nil
}

// Insert appends rows to a table after checking them against its schema.
// NULL is accepted in any column.
func (s *Store) Insert(tableName string, rows ...sql.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tables[tableName]
	if !ok {
		return fmt.Errorf("table %s does not exist", tableName)
	}

	for _, row := range rows {
		if len(row) != len(t.cols) {
			return fmt.Errorf("column count mismatch: expected %d, got %d", len(t.cols), len(row))
		}
		// Type check each value against the column definition.
		for i, col := range t.cols {
			val := row[i]
			if val.Type != col.Type && val.Type != sql.TypeNull {
				return fmt.Errorf("type mismatch for column %q: expected %v, got %v", col.Name, col.Type, val.Type)
			}
		}
	}
	for _, row := range rows {
		t.rows = append(t.rows, slices.Clone(row))
	}
	return nil
}

// TableSchema returns the column definitions for a table.
func (s *Store) TableSchema(name string) ([]sql.Column, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tables[name]
	if !ok {
		return nil, fmt.Errorf("table %s does not exist", name)
	}
	return slices.Clone(t.cols), nil
}

// Computed is a virtual column derived from the stored columns of a row.
// get returns the value of a stored column by bare name (NULL if unknown).
type Computed struct {
	Name string
	Eval func(get func(col string) sql.Value) sql.Value
}

// Records snapshots a table as a RowSet. Stored columns are addressed as
// "table.column"; computed columns by their bare name.
func (s *Store) Records(tableName string, computed ...Computed) (storage.RowSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tables[tableName]
	if !ok {
		return nil, fmt.Errorf("table %s does not exist", tableName)
	}

	cols := make([]string, 0, len(t.cols)+len(computed))
	bare := make(map[string]int, len(t.cols))
	for i, c := range t.cols {
		cols = append(cols, t.name+"."+c.Name)
		bare[c.Name] = i
	}
	for _, c := range computed {
		cols = append(cols, c.Name)
	}

	// Deep copy so callers never see later writes.
	rows := make([]sql.Row, len(t.rows))
	for i, r := range t.rows {
		row := make(sql.Row, len(t.cols), len(cols))
		copy(row, r)
		get := func(col string) sql.Value {
			if idx, ok := bare[col]; ok {
				return r[idx]
			}
			return sql.Null()
		}
		for _, c := range computed {
			row = append(row, c.Eval(get))
		}
		rows[i] = row
	}

	return newRowSet(cols, rows), nil
}

// Source returns a storage.Source that snapshots tableName on every call.
func (s *Store) Source(tableName string, computed ...Computed) storage.Source {
	return storage.SourceFunc(func(ctx context.Context) (storage.RowSet, error) {
		return s.Records(tableName, computed...)
	})
}
