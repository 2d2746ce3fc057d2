// Package paginate bounds a row set to the page a request asks for.
//
// Strategies are injected into the engine at construction. Simple mirrors
// page-number pagination libraries (start is rounded down to a page
// boundary); Window passes start and length through untouched.
package paginate

import (
	"fmt"
	"strings"

	"goDT/internal/request"
	"goDT/internal/storage"
)

// Paginator bounds rs for a request's start and length. Callers never pass
// length == request.NoPagination; that case skips pagination entirely.
type Paginator interface {
	Paginate(rs storage.RowSet, start, length int64) storage.RowSet
}

// PaginatorFunc adapts a function to Paginator.
type PaginatorFunc func(rs storage.RowSet, start, length int64) storage.RowSet

func (f PaginatorFunc) Paginate(rs storage.RowSet, start, length int64) storage.RowSet {
	return f(rs, start, length)
}

// Simple is page-number pagination: perPage = length (PerPage when length is
// not positive), page = start/perPage + 1, offset = (page-1)*perPage.
type Simple struct {
	PerPage int64
}

// Window bounds the row set to exactly [start, start+length).
type Window struct{}

func (s Simple) Paginate(rs storage.RowSet, start, length int64) storage.RowSet {
	perPage := length
	if perPage <= 0 {
		perPage = s.PerPage
	}
	if perPage <= 0 {
		perPage = request.DefaultLength
	}
	_, offset := PageOffset(start, perPage)
	return rs.Page(offset, perPage)
}

func (Window) Paginate(rs storage.RowSet, start, length int64) storage.RowSet {
	return rs.Page(max(start, 0), length)
}

// PageOffset returns the 1-based page containing start and the offset of
// that page's first row.
func PageOffset(start, perPage int64) (page, offset int64) {
	start = max(start, 0)
	page = start/perPage + 1
	return page, (page - 1) * perPage
}

// Strategy names accepted by ByName.
const (
	StrategySimple = "simple"
	StrategyWindow = "window"
)

// ByName returns the strategy configured under name. An empty name selects
// Simple.
func ByName(name string, perPage int64) (Paginator, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", StrategySimple:
		return Simple{PerPage: perPage}, nil
	case StrategyWindow:
		return Window{}, nil
	}
	return nil, fmt.Errorf("unknown paginator %q (supported: %s, %s)", name, StrategySimple, StrategyWindow)
}
