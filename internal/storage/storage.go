package storage

import (
	"context"

	"goDT/internal/query"
	"goDT/internal/sql"
)

// RowSet is a lazily evaluated, immutable view over a data source's rows.
// Filter, OrderBy and Page return new views; nothing is read until Count or
// Fetch.
//
// Different implementations are possible:
//   - in-memory (memstore, for tests and small fixed tables)
//   - SQL databases through a query builder (sqlstore)
type RowSet interface {
	// Count returns the number of rows in the view, ignoring ordering and
	// paging bounds.
	Count(ctx context.Context) (int64, error)

	// Filter narrows the view. A nil predicate returns the view unchanged.
	Filter(p query.Predicate) RowSet

	// OrderBy replaces the view's ordering.
	OrderBy(clauses ...query.SortClause) RowSet

	// Page bounds the view to limit rows starting at offset. A negative limit
	// leaves the end unbounded.
	Page(offset, limit int64) RowSet

	// Fetch reads the rows of the view, honouring ordering and paging.
	Fetch(ctx context.Context) (cols []string, rows []sql.Row, err error)
}

// Source supplies the raw, unfiltered rows of one table.
type Source interface {
	RawRecords(ctx context.Context) (RowSet, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (RowSet, error)

func (f SourceFunc) RawRecords(ctx context.Context) (RowSet, error) { return f(ctx) }
