package query

import "strings"

// Column is a resolved physical column reference. Table is empty for a
// virtual (computed) column, which is referenced by its bare name.
type Column struct {
	Table string
	Name  string
}

// ParseColumn splits "table.column" at the first dot. A reference without a
// dot is a virtual column.
func ParseColumn(ref string) Column {
	table, name, ok := strings.Cut(ref, ".")
	if !ok {
		return Column{Name: ref}
	}
	return Column{Table: table, Name: name}
}

// Virtual reports whether c has no storage location.
func (c Column) Virtual() bool { return c.Table == "" }

func (c Column) String() string {
	if c.Table == "" {
		return c.Name
	}
	return c.Table + "." + c.Name
}
