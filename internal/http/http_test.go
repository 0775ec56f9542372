package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cayleygraph/gremsql/internal/catalog"
	_ "github.com/cayleygraph/gremsql/query/gremlin/js"
	_ "github.com/cayleygraph/gremsql/query/gremlin/steps"
)

func newHandler(t testing.TB, cfg *Config) http.Handler {
	cat := catalog.NewMemory()
	t.Cleanup(func() { cat.Close() })
	if cfg == nil {
		cfg = &Config{PlanCache: 10}
	}
	api, err := NewAPI(cfg, nil, cat)
	require.NoError(t, err)
	return api.Handler()
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCompile(t *testing.T) {
	h := newHandler(t, nil)
	rec := do(h, "POST", "/api/v1/compile", `g.V().hasLabel('person')`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out CompileResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Equal(t, CompileResult{
		Dialect:  "default",
		SQL:      []string{`SELECT n_0.id AS id, n_0.label AS label FROM vertices AS n_0 WHERE n_0.label IN (?)`},
		Args:     [][]interface{}{{"person"}},
		Columns:  []string{"id", "label"},
		ReadOnly: true,
	}, out)
}

func TestCompileJSON(t *testing.T) {
	h := newHandler(t, nil)
	rec := do(h, "POST", "/api/v1/compile?lang=json", `[{"step":"V"},{"step":"Count"}]`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestErrorCodes(t *testing.T) {
	h := newHandler(t, nil)
	for _, c := range []struct {
		name string
		path string
		body string
		code int
	}{
		{name: "unknown dialect", path: "/api/v1/compile?dialect=oracle", body: `g.V()`, code: http.StatusBadRequest},
		{name: "unknown language", path: "/api/v1/compile?lang=cobol", body: `g.V()`, code: http.StatusBadRequest},
		{name: "syntax", path: "/api/v1/compile", body: `g.V(]`, code: http.StatusBadRequest},
		{name: "incomplete", path: "/api/v1/compile", body: `g.V().out(`, code: http.StatusBadRequest},
		{name: "no database", path: "/api/v1/query", body: `g.V()`, code: http.StatusNotImplemented},
		{name: "load without database", path: "/api/v1/load", body: `{}`, code: http.StatusNotImplemented},
	} {
		t.Run(c.name, func(t *testing.T) {
			rec := do(h, "POST", c.path, c.body)
			require.Equal(t, c.code, rec.Code, rec.Body.String())
			var out map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
			require.NotEmpty(t, out["error"])
		})
	}
}

func TestReadOnly(t *testing.T) {
	h := newHandler(t, &Config{ReadOnly: true})
	rec := do(h, "POST", "/api/v1/query", `g.V('1').drop()`)
	require.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())

	rec = do(h, "POST", "/api/v1/load", `{}`)
	require.Equal(t, http.StatusForbidden, rec.Code)

	// compiling is allowed
	rec = do(h, "POST", "/api/v1/compile", `g.V('1').drop()`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestTraversals(t *testing.T) {
	h := newHandler(t, nil)

	rec := do(h, "GET", "/api/v1/traversals", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[]`, rec.Body.String())

	rec = do(h, "PUT", "/api/v1/traversals/people", `g.V().hasLabel('person')`)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = do(h, "PUT", "/api/v1/traversals/broken", `g.V(]`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(h, "GET", "/api/v1/traversals/people", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var e map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	require.Equal(t, "people", e["name"])
	require.Equal(t, "js", e["lang"])
	require.Equal(t, "g.V().hasLabel('person')", e["text"])

	rec = do(h, "GET", "/api/v1/traversals", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)

	rec = do(h, "POST", "/api/v1/traversals/people/query", "")
	require.Equal(t, http.StatusNotImplemented, rec.Code)

	rec = do(h, "DELETE", "/api/v1/traversals/people", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(h, "GET", "/api/v1/traversals/people", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(h, "DELETE", "/api/v1/traversals/people", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNoCatalog(t *testing.T) {
	api, err := NewAPI(&Config{}, nil, nil)
	require.NoError(t, err)
	rec := do(api.Handler(), "GET", "/api/v1/traversals", "")
	require.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestService(t *testing.T) {
	h := newHandler(t, nil)

	rec := do(h, "GET", "/health", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(h, "GET", "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest("OPTIONS", "/api/v1/query", nil)
	req.Header.Set("Origin", "http://example.com")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "http://example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}
