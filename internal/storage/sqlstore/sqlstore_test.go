package sqlstore

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goDT/internal/query"
	dtsql "goDT/internal/sql"
	"goDT/internal/storage"
)

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	for _, stmt := range []string{
		`CREATE TABLE organizations (id INTEGER PRIMARY KEY, name TEXT NOT NULL)`,
		`CREATE TABLE users (id INTEGER PRIMARY KEY, first_name TEXT, last_name TEXT, email TEXT, org_id INTEGER)`,
		`INSERT INTO organizations (id, name) VALUES (1, 'Acme'), (2, 'Globex')`,
		`INSERT INTO users (id, first_name, last_name, email, org_id) VALUES
			(1, 'Alice', 'Smith', 'alice@example.org', 1),
			(2, 'Bob', 'Stone', 'bob@smith.io', 2),
			(3, 'Carol', 'Alison', 'carol@example.org', 1),
			(4, '100%', 'Dave_', NULL, 2)`,
	} {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	return db
}

var usersQuery = Query{
	From:  "users",
	Joins: []string{"JOIN organizations ON organizations.id = users.org_id"},
	Fields: []Field{
		{Ref: "users.id"},
		{Ref: "users.first_name"},
		{Ref: "users.email"},
		{Ref: "organizations.name"},
		{Ref: "full_name", Expr: "users.first_name || ' ' || users.last_name"},
	},
}

func rawUsers(t *testing.T) storage.RowSet {
	t.Helper()
	src, err := NewSource(openSQLite(t), query.SQLite, usersQuery)
	require.NoError(t, err)
	rs, err := src.RawRecords(context.Background())
	require.NoError(t, err)
	return rs
}

func ids(rows []dtsql.Row) []int64 {
	out := make([]int64, len(rows))
	for i, r := range rows {
		out[i] = r[0].I64
	}
	return out
}

func contains(col, v string) query.Contains {
	return query.Contains{Column: query.ParseColumn(col), Value: v}
}

func TestSQLite_FetchAndCount(t *testing.T) {
	rs := rawUsers(t)
	ctx := context.Background()

	n, err := rs.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	cols, rows, err := rs.OrderBy(query.SortClause{Column: query.ParseColumn("users.id"), Dir: query.Asc}).Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"users.id", "users.first_name", "users.email", "organizations.name", "full_name"}, cols)
	require.Len(t, rows, 4)
	assert.Equal(t, "Alice Smith", rows[0][4].S)
	assert.Equal(t, "Acme", rows[0][3].S)
	assert.Equal(t, dtsql.TypeNull, rows[3][2].Type)
}

func TestSQLite_Filter(t *testing.T) {
	rs := rawUsers(t)
	ctx := context.Background()

	pred := query.And{
		query.Or{contains("users.first_name", "ali"), contains("users.email", "ali"), contains("full_name", "ali")},
		query.Or{contains("users.first_name", "SMITH"), contains("users.email", "SMITH"), contains("full_name", "SMITH")},
	}
	filtered := rs.Filter(pred)

	n, err := filtered.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, rows, err := filtered.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids(rows))

	// Integer columns are cast before matching.
	n, err = rs.Filter(contains("users.id", "3")).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSQLite_FilterTreatsMetacharactersLiterally(t *testing.T) {
	rs := rawUsers(t)
	ctx := context.Background()

	tests := []struct {
		needle string
		want   int64
	}{
		{"%", 1},
		{"_", 1},
		{"0%", 1},
		{"e_", 1},
		{`\`, 0},
		{"a_b", 0},
	}
	for _, tt := range tests {
		t.Run(tt.needle, func(t *testing.T) {
			n, err := rs.Filter(contains("full_name", tt.needle)).Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, n)
		})
	}
}

func TestSQLite_OrderAndPage(t *testing.T) {
	rs := rawUsers(t)
	ctx := context.Background()

	sorted := rs.OrderBy(
		query.SortClause{Column: query.ParseColumn("organizations.name"), Dir: query.Desc},
		query.SortClause{Column: query.ParseColumn("full_name"), Dir: query.Asc},
	)
	_, rows, err := sorted.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 2, 1, 3}, ids(rows))

	_, rows, err = sorted.Page(1, 2).Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 1}, ids(rows))

	_, rows, err = sorted.Page(2, -1).Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, ids(rows))

	n, err := sorted.Page(1, 2).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestGeneratedSQLPerDialect(t *testing.T) {
	q := Query{From: "users", Fields: []Field{{Ref: "users.name"}}}
	pred := query.Or{contains("users.name", "50%"), contains("users.email", "x")}

	tests := []struct {
		dialect query.Dialect
		where   string
		paging  string
	}{
		{
			dialect: query.Postgres,
			where:   "WHERE (CAST(users.name AS VARCHAR) ILIKE $1 OR CAST(users.email AS VARCHAR) ILIKE $2)",
			paging:  "ORDER BY users.name DESC LIMIT 10 OFFSET 20",
		},
		{
			dialect: query.MySQL,
			where:   "WHERE (LOWER(CAST(users.name AS CHAR)) LIKE LOWER(?) OR LOWER(CAST(users.email AS CHAR)) LIKE LOWER(?))",
			paging:  "ORDER BY users.name DESC LIMIT 10 OFFSET 20",
		},
		{
			dialect: query.SQLite,
			where:   `WHERE (LOWER(CAST(users.name AS TEXT)) LIKE LOWER(?) ESCAPE '\' OR LOWER(CAST(users.email AS TEXT)) LIKE LOWER(?) ESCAPE '\')`,
			paging:  "ORDER BY users.name DESC LIMIT 10 OFFSET 20",
		},
		{
			dialect: query.Oracle,
			where:   `WHERE (LOWER(CAST(users.name AS VARCHAR2(4000))) LIKE LOWER(:1) ESCAPE '\' OR LOWER(CAST(users.email AS VARCHAR2(4000))) LIKE LOWER(:2) ESCAPE '\')`,
			paging:  "ORDER BY users.name DESC OFFSET 20 ROWS FETCH NEXT 10 ROWS ONLY",
		},
	}
	for _, tt := range tests {
		t.Run(string(tt.dialect), func(t *testing.T) {
			rs := newRowSet(nil, tt.dialect, q).
				Filter(pred).
				OrderBy(query.SortClause{Column: query.ParseColumn("users.name"), Dir: query.Desc}).
				Page(20, 10).(*rowSet)

			stmt, args, err := rs.selectSQL()
			require.NoError(t, err)
			assert.Contains(t, stmt, tt.where)
			assert.Contains(t, stmt, tt.paging)
			assert.Equal(t, []any{`%50\%%`, "%x%"}, args)

			count, _, err := rs.countSQL()
			require.NoError(t, err)
			assert.Contains(t, count, "SELECT COUNT(*) FROM users")
			assert.NotContains(t, count, "ORDER BY")
		})
	}
}

func TestNewSourceValidation(t *testing.T) {
	_, err := NewSource(nil, query.SQLite, Query{Fields: []Field{{Ref: "a"}}})
	assert.ErrorContains(t, err, "FROM")

	_, err = NewSource(nil, query.SQLite, Query{From: "t"})
	assert.ErrorContains(t, err, "no fields")

	_, err = NewSource(nil, query.Dialect("db2"), usersQuery)
	assert.ErrorContains(t, err, "unknown dialect")

	_, err = DriverName(query.Dialect("db2"))
	assert.Error(t, err)
}
