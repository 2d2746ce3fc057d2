package memstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goDT/internal/query"
	"goDT/internal/sql"
)

func usersStore(t *testing.T) *Store {
	t.Helper()
	store := New()
	require.NoError(t, store.CreateTable("users", []sql.Column{
		{Name: "id", Type: sql.TypeInt},
		{Name: "name", Type: sql.TypeString},
		{Name: "email", Type: sql.TypeString},
		{Name: "active", Type: sql.TypeBool},
	}))
	require.NoError(t, store.Insert("users",
		sql.Row{sql.Int(1), sql.String("Alice Smith"), sql.String("alice@example.org"), sql.Bool(true)},
		sql.Row{sql.Int(2), sql.String("Bob Stone"), sql.String("bob@smith.io"), sql.Bool(false)},
		sql.Row{sql.Int(3), sql.String("Carol Alison"), sql.String("carol@example.org"), sql.Bool(true)},
		sql.Row{sql.Int(4), sql.String("100% Dave_"), sql.Null(), sql.Bool(true)},
	))
	return store
}

func ids(t *testing.T, rows []sql.Row) []int64 {
	t.Helper()
	out := make([]int64, len(rows))
	for i, r := range rows {
		out[i] = r[0].I64
	}
	return out
}

func contains(col, v string) query.Contains {
	return query.Contains{Column: query.ParseColumn(col), Value: v}
}

// TestMemstoreCreateInsertRecords verifies that we can create a table,
// insert rows, and read them back through a RowSet.
func TestMemstoreCreateInsertRecords(t *testing.T) {
	store := usersStore(t)
	ctx := context.Background()

	rs, err := store.Records("users")
	require.NoError(t, err)

	cols, rows, err := rs.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"users.id", "users.name", "users.email", "users.active"}, cols)
	assert.Equal(t, []int64{1, 2, 3, 4}, ids(t, rows))

	n, err := rs.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	schema, err := store.TableSchema("users")
	require.NoError(t, err)
	assert.Len(t, schema, 4)
}

func TestMemstoreInsertValidation(t *testing.T) {
	store := usersStore(t)

	err := store.Insert("users", sql.Row{sql.Int(5)})
	assert.ErrorContains(t, err, "column count mismatch")

	err = store.Insert("users", sql.Row{sql.String("x"), sql.String("n"), sql.String("e"), sql.Bool(true)})
	assert.ErrorContains(t, err, "type mismatch")

	err = store.Insert("nope", sql.Row{})
	assert.ErrorContains(t, err, "does not exist")

	assert.ErrorContains(t, store.CreateTable("users", nil), "already exists")
}

func TestRecordsIsSnapshot(t *testing.T) {
	store := usersStore(t)
	ctx := context.Background()

	rs, err := store.Records("users")
	require.NoError(t, err)

	require.NoError(t, store.Insert("users",
		sql.Row{sql.Int(5), sql.String("Eve"), sql.String("eve@example.org"), sql.Bool(true)}))

	n, err := rs.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	// Mutating fetched rows does not leak back.
	_, rows, err := rs.Fetch(ctx)
	require.NoError(t, err)
	rows[0][1] = sql.String("Mallory")
	_, again, err := rs.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Alice Smith", again[0][1].S)
}

func TestRowSetFilter(t *testing.T) {
	rs, err := usersStore(t).Records("users")
	require.NoError(t, err)
	ctx := context.Background()

	// (name or email contains "ali") and (name or email contains "smith")
	pred := query.And{
		query.Or{contains("users.name", "ali"), contains("users.email", "ali")},
		query.Or{contains("users.name", "smith"), contains("users.email", "smith")},
	}
	_, rows, err := rs.Filter(pred).Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids(t, rows))

	// Case-insensitive.
	_, rows, err = rs.Filter(contains("users.name", "ALISON")).Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, ids(t, rows))

	// Non-text columns are matched through their text form.
	_, rows, err = rs.Filter(contains("users.id", "3")).Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, ids(t, rows))

	// Unknown column matches nothing.
	n, err := rs.Filter(contains("users.nope", "a")).Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	// Nil predicate is no filter.
	n, err = rs.Filter(nil).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestRowSetFilterIsLiteral(t *testing.T) {
	rs, err := usersStore(t).Records("users")
	require.NoError(t, err)
	ctx := context.Background()

	for needle, want := range map[string][]int64{
		"%":     {4},
		"_":     {4},
		"100%":  {4},
		"e_":    {4},
		"a%b":   nil,
		`\`:     nil,
		"dave_": {4},
	} {
		_, rows, err := rs.Filter(contains("users.name", needle)).Fetch(ctx)
		require.NoError(t, err)
		if want == nil {
			assert.Empty(t, rows, "needle %q", needle)
			continue
		}
		assert.Equal(t, want, ids(t, rows), "needle %q", needle)
	}
}

func TestRowSetOrderAndPage(t *testing.T) {
	rs, err := usersStore(t).Records("users")
	require.NoError(t, err)
	ctx := context.Background()

	sorted := rs.OrderBy(
		query.SortClause{Column: query.ParseColumn("users.active"), Dir: query.Desc},
		query.SortClause{Column: query.ParseColumn("users.name"), Dir: query.Asc},
	)
	_, rows, err := sorted.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 1, 3, 2}, ids(t, rows))

	_, rows, err = sorted.Page(1, 2).Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, ids(t, rows))

	// Count ignores paging.
	n, err := sorted.Page(1, 2).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	_, rows, err = sorted.Page(10, 5).Fetch(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)

	// NULLs sort first ascending.
	_, rows, err = rs.OrderBy(query.SortClause{Column: query.ParseColumn("users.email"), Dir: query.Asc}).Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), rows[0][0].I64)
}

func TestRecordsComputed(t *testing.T) {
	store := usersStore(t)
	ctx := context.Background()

	rs, err := store.Records("users", Computed{
		Name: "name_length",
		Eval: func(get func(string) sql.Value) sql.Value {
			return sql.Int(int64(len(get("name").S)))
		},
	})
	require.NoError(t, err)

	cols, rows, err := rs.OrderBy(query.SortClause{Column: query.ParseColumn("name_length"), Dir: query.Desc}).Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "name_length", cols[4])
	assert.Equal(t, []int64{3, 1, 4, 2}, ids(t, rows))
}

func TestRowSetContextCancelled(t *testing.T) {
	rs, err := usersStore(t).Records("users")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = rs.Count(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
