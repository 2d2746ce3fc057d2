package query

import "strings"

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// ParseDirection accepts "asc" and "desc" in any case. Anything else is Asc.
func ParseDirection(s string) Direction {
	if strings.EqualFold(s, "desc") {
		return Desc
	}
	return Asc
}

// SortClause orders by one physical column.
type SortClause struct {
	Column Column
	Dir    Direction
}

func (c SortClause) String() string {
	return c.Column.String() + " " + string(c.Dir)
}
