// Package sqlstore implements storage.RowSet on top of database/sql. Queries
// are built with squirrel and rendered for the configured dialect.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"goDT/internal/query"
	"goDT/internal/storage"
)

// DriverName returns the database/sql driver registered for d. The oracle
// driver is not bundled; programs that serve Oracle register one under the
// name "oracle".
func DriverName(d query.Dialect) (string, error) {
	switch d {
	case query.Postgres:
		return "pgx", nil
	case query.MySQL:
		return "mysql", nil
	case query.SQLite:
		return "sqlite", nil
	case query.Oracle:
		return "oracle", nil
	}
	return "", fmt.Errorf("no driver for dialect %q", d)
}

// Open opens and pings a database for dialect d.
func Open(ctx context.Context, d query.Dialect, dsn string) (*sql.DB, error) {
	driver, err := DriverName(d)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", d, err)
	}
	return db, nil
}

// Field is one selected column. Ref is how the rest of the system addresses
// it ("table.column" or a bare name for a computed column). Expr, when set,
// is the SQL expression computing it.
type Field struct {
	Ref  string
	Expr string
}

func (f Field) selectSQL() string {
	if f.Expr == "" {
		return f.Ref
	}
	return f.Expr + " AS " + f.Ref
}

// Query describes the raw record set of one table: the FROM clause, any
// joins (full clauses such as "LEFT JOIN orgs ON orgs.id = users.org_id")
// and the selected fields.
type Query struct {
	From   string
	Joins  []string
	Fields []Field
}

func (q Query) validate() error {
	if strings.TrimSpace(q.From) == "" {
		return errors.New("sqlstore: query has no FROM clause")
	}
	if len(q.Fields) == 0 {
		return errors.New("sqlstore: query selects no fields")
	}
	for _, f := range q.Fields {
		if f.Ref == "" {
			return errors.New("sqlstore: field without ref")
		}
	}
	return nil
}

// Source serves the raw records of a Query from a database.
type Source struct {
	db      *sql.DB
	dialect query.Dialect
	query   Query
}

var _ storage.Source = (*Source)(nil)

// NewSource validates q and binds it to db.
func NewSource(db *sql.DB, d query.Dialect, q Query) (*Source, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}
	if d.CastType() == "" {
		return nil, fmt.Errorf("sqlstore: unknown dialect %q", d)
	}
	return &Source{db: db, dialect: d, query: q}, nil
}

// RawRecords returns the unfiltered view. It does not touch the database.
func (s *Source) RawRecords(ctx context.Context) (storage.RowSet, error) {
	return newRowSet(s.db, s.dialect, s.query), nil
}
