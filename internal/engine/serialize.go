package engine

import (
	"fmt"

	"goDT/internal/column"
	"goDT/internal/sql"
)

// Serializer shapes the fetched page into the response's data array.
type Serializer interface {
	Serialize(cols []string, rows []sql.Row) ([]any, error)
}

// SerializerFunc adapts a function to Serializer.
type SerializerFunc func(cols []string, rows []sql.Row) ([]any, error)

func (f SerializerFunc) Serialize(cols []string, rows []sql.Row) ([]any, error) {
	return f(cols, rows)
}

// Projection returns the default serializer: every row becomes an object
// keyed by display name, holding each declared column that resolved.
func Projection(reg *column.Registry) Serializer {
	return SerializerFunc(func(cols []string, rows []sql.Row) ([]any, error) {
		return projectColumns(reg, cols, rows)
	})
}

func projectColumns(reg *column.Registry, allCols []string, rows []sql.Row) ([]any, error) {
	// Build name -> index map from all columns.
	colIndex := make(map[string]int, len(allCols))
	for i, name := range allCols {
		colIndex[name] = i
	}

	type field struct {
		name string
		idx  int
	}
	var fields []field
	for _, name := range reg.Names() {
		col, err := reg.Lookup(name)
		if err != nil {
			continue
		}
		idx, ok := colIndex[col.String()]
		if !ok {
			return nil, fmt.Errorf("column %q (%s) is not selected by the source", name, col)
		}
		fields = append(fields, field{name: name, idx: idx})
	}

	out := make([]any, 0, len(rows))
	for _, r := range rows {
		obj := make(map[string]any, len(fields))
		for _, f := range fields {
			if f.idx >= len(r) {
				return nil, fmt.Errorf("internal error: column index %d out of range", f.idx)
			}
			obj[f.name] = r[f.idx].Interface()
		}
		out = append(out, obj)
	}
	return out, nil
}
