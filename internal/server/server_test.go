package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goDT/internal/column"
	"goDT/internal/engine"
	"goDT/internal/paginate"
	"goDT/internal/query"
	"goDT/internal/sql"
	"goDT/internal/storage"
	"goDT/internal/storage/memstore"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Draw            int64            `json:"draw"`
	RecordsTotal    int64            `json:"recordsTotal"`
	RecordsFiltered int64            `json:"recordsFiltered"`
	Data            []map[string]any `json:"data"`
	Error           string           `json:"error"`
}

func testServer(t *testing.T, logBuf *bytes.Buffer) (*Server, *Metrics) {
	t.Helper()
	store := memstore.New()
	require.NoError(t, store.CreateTable("users", []sql.Column{
		{Name: "id", Type: sql.TypeInt},
		{Name: "name", Type: sql.TypeString},
	}))
	require.NoError(t, store.Insert("users",
		sql.Row{sql.Int(1), sql.String("Alice")},
		sql.Row{sql.Int(2), sql.String("Bob")},
		sql.Row{sql.Int(3), sql.String("Carol")},
	))

	reg, err := column.NewRegistry([]column.Spec{
		{Name: "id", Source: "users.id", Sortable: true},
		{Name: "name", Source: "users.name", Sortable: true, Searchable: true},
		{Name: "ghost", Source: "nope.a b", Sortable: true},
	}, nil, zerolog.Nop())
	require.NoError(t, err)

	m := NewMetrics()
	eng, err := engine.New(engine.Config{
		Dialect:   query.SQLite,
		Paginator: paginate.Simple{},
		OnDropped: m.DroppedTerm,
	},
		&engine.Table{Name: "users", Columns: reg, Source: store.Source("users")},
		&engine.Table{Name: "broken", Columns: reg, Source: storage.SourceFunc(func(ctx context.Context) (storage.RowSet, error) {
			return nil, errors.New("connection refused")
		})},
	)
	require.NoError(t, err)

	log := zerolog.Nop()
	if logBuf != nil {
		log = zerolog.New(logBuf)
	}
	return New(eng, log, m), m
}

func do(t *testing.T, s *Server, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func TestTable_GetWithBracketedQuery(t *testing.T) {
	s, _ := testServer(t, nil)

	q := url.Values{}
	q.Set("draw", "3")
	q.Set("start", "0")
	q.Set("length", "2")
	q.Set("columns[0][data]", "id")
	q.Set("columns[1][data]", "name")
	q.Set("order[0][column]", "1")
	q.Set("order[0][dir]", "desc")
	req := httptest.NewRequest(http.MethodGet, "/api/tables/users?"+q.Encode(), nil)

	w, env := do(t, s, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(3), env.Draw)
	assert.Equal(t, int64(3), env.RecordsTotal)
	assert.Equal(t, int64(3), env.RecordsFiltered)
	require.Len(t, env.Data, 2)
	assert.Equal(t, "Carol", env.Data[0]["name"])
	assert.Equal(t, "Bob", env.Data[1]["name"])
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestTable_PostJSON(t *testing.T) {
	s, _ := testServer(t, nil)

	body := `{"draw": 9, "start": 0, "length": -1,
		"columns": [{"data": "id"}, {"data": "name"}],
		"search": "{\"value\": \"o\", \"regex\": false}"}`
	req := httptest.NewRequest(http.MethodPost, "/api/tables/users", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w, env := do(t, s, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(9), env.Draw)
	assert.Equal(t, int64(2), env.RecordsFiltered)
	assert.Len(t, env.Data, 2)
}

func TestTable_PostForm(t *testing.T) {
	s, _ := testServer(t, nil)

	form := url.Values{}
	form.Set("draw", "1")
	form.Set("search[value]", "ali")
	req := httptest.NewRequest(http.MethodPost, "/api/tables/users", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w, env := do(t, s, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, env.Data, 1)
	assert.Equal(t, "Alice", env.Data[0]["name"])
}

func TestTable_Errors(t *testing.T) {
	s, _ := testServer(t, nil)

	tests := []struct {
		name   string
		req    *http.Request
		status int
		msg    string
	}{
		{
			name:   "unknown table",
			req:    httptest.NewRequest(http.MethodGet, "/api/tables/orders", nil),
			status: http.StatusNotFound,
			msg:    "table not found",
		},
		{
			name:   "malformed columns",
			req:    httptest.NewRequest(http.MethodGet, "/api/tables/users?columns=%5Bnope", nil),
			status: http.StatusBadRequest,
			msg:    "columns",
		},
		{
			name:   "conflicting keys",
			req:    httptest.NewRequest(http.MethodGet, "/api/tables/users?order=1&order[0][dir]=asc", nil),
			status: http.StatusBadRequest,
			msg:    "order",
		},
		{
			name:   "source failure",
			req:    httptest.NewRequest(http.MethodGet, "/api/tables/broken", nil),
			status: http.StatusInternalServerError,
			msg:    "internal server error",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := do(t, s, tt.req)
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, env.Error, tt.msg)
			assert.NotContains(t, env.Error, "connection refused")
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/api/tables/users", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	w, _ := do(t, s, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequestIDAndAccessLog(t *testing.T) {
	var buf bytes.Buffer
	s, _ := testServer(t, &buf)

	req := httptest.NewRequest(http.MethodGet, "/api/tables/users", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	w, _ := do(t, s, req)
	assert.Equal(t, "req-42", w.Header().Get(RequestIDHeader))

	// The access line is written last, after the engine's own debug lines.
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	var line map[string]any
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &line))
	assert.Equal(t, "req-42", line["request_id"])
	assert.Equal(t, "users", line["table"])
	assert.Equal(t, float64(200), line["status"])
	assert.Equal(t, "request completed", line["message"])
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := testServer(t, nil)

	q := url.Values{}
	q.Set("columns[0][data]", "ghost")
	q.Set("order[0][column]", "0")
	do(t, s, httptest.NewRequest(http.MethodGet, "/api/tables/users?"+q.Encode(), nil))

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `godt_http_requests_total{status="200",table="users"} 1`)
	assert.Contains(t, body, `godt_engine_dropped_terms_total{kind="sort",table="users"} 1`)
}

func TestHealthAndTables(t *testing.T) {
	s, _ := testServer(t, nil)

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/tables", nil))
	assert.JSONEq(t, `{"tables":["broken","users"]}`, w.Body.String())
}

func TestToAppError(t *testing.T) {
	app := toAppError(&AppError{Code: http.StatusTeapot, Message: "tea"})
	assert.Equal(t, http.StatusTeapot, app.Code)

	app = toAppError(errors.New("db down"))
	assert.Equal(t, http.StatusInternalServerError, app.Code)
	assert.ErrorContains(t, app, "db down")
}
