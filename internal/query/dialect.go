package query

import (
	"fmt"
	"strings"
)

// Dialect identifies the database engine behind a data source.
type Dialect string

const (
	Oracle   Dialect = "oracle"
	Postgres Dialect = "postgres"
	MySQL    Dialect = "mysql"
	SQLite   Dialect = "sqlite"
)

// ParseDialect maps an engine name (including the adapter aliases pg,
// postgresql, mysql2 and sqlite3) to a Dialect.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "oracle":
		return Oracle, nil
	case "postgres", "postgresql", "pg":
		return Postgres, nil
	case "mysql", "mysql2":
		return MySQL, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	}
	return "", fmt.Errorf("unknown database engine %q (supported: oracle, postgres, mysql, sqlite)", s)
}

// CastType is the text type a column is cast to before substring matching.
func (d Dialect) CastType() string {
	switch d {
	case Oracle:
		return "VARCHAR2(4000)"
	case Postgres:
		return "VARCHAR"
	case MySQL:
		return "CHAR"
	case SQLite:
		return "TEXT"
	}
	return ""
}
