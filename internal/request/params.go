// Package request turns the raw parameters sent by a data-grid client into
// one canonical Params value.
//
// The client may encode the list-valued fields (columns, order) either as a
// map keyed by numeric strings, as a JSON array, or as a string holding a
// JSON array; search may be a map or a string holding a JSON object. Each
// field is decoded independently, once, at this boundary.
package request

// DefaultLength is the page size used when the request carries none.
const DefaultLength = 10

// NoPagination is the length sentinel that asks for every matching row.
const NoPagination = -1

// Params is a normalized data-grid request.
type Params struct {
	// Draw is echoed back to the client unchanged.
	Draw int64
	// Start is the zero-based offset of the first requested row.
	Start int64
	// Length is the page size, or NoPagination.
	Length int64

	Columns []ColumnParam
	Order   []OrderParam
	// Search is the global search value; empty means no search.
	Search string
	// PerColumnSearch maps a display index to that column's own non-empty
	// search value.
	PerColumnSearch map[int]string
}

// ColumnParam is one entry of the client's visible column list.
type ColumnParam struct {
	Data       string
	Name       string
	Searchable bool
	Orderable  bool
	Search     string
}

// OrderParam is one requested sort, by display column index.
type OrderParam struct {
	Column int
	Dir    string
}

// Paginated reports whether the request should be bounded to one page.
func (p Params) Paginated() bool {
	return p.Length != NoPagination
}

// DisplayedColumns returns the columns[].data values in display order.
func (p Params) DisplayedColumns() []string {
	if len(p.Columns) == 0 {
		return nil
	}
	out := make([]string, len(p.Columns))
	for i, c := range p.Columns {
		out[i] = c.Data
	}
	return out
}
