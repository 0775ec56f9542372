package query_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cayleygraph/gremsql/internal/lru"
	"github.com/cayleygraph/gremsql/query"
	"github.com/cayleygraph/gremsql/query/gremlin"
	"github.com/cayleygraph/gremsql/query/gremlin/js"
	_ "github.com/cayleygraph/gremsql/query/gremlin/steps"
)

func newSession(t *testing.T, cache *lru.Cache) *query.Session {
	s, err := query.NewSession(query.Config{
		Options: &gremlin.Options{NewID: func() string { return "id1" }},
		Cache:   cache,
	})
	require.NoError(t, err)
	require.Equal(t, query.DefaultDialect, s.Dialect())
	return s
}

func TestLanguages(t *testing.T) {
	require.Equal(t, []string{"js", "json"}, query.Languages())
	require.NotNil(t, query.GetLanguage(js.Name))
	require.Nil(t, query.GetLanguage("sparql"))
}

func TestCompileLanguages(t *testing.T) {
	s := newSession(t, nil)
	ctx := context.Background()
	const expect = `SELECT n_0.id AS id, n_0.label AS label FROM vertices AS n_0 WHERE n_0.label IN (?)`

	e, err := s.Compile(ctx, "js", `g.V().hasLabel('person')`)
	require.NoError(t, err)
	require.Len(t, e.Statements, 1)
	require.Equal(t, expect, e.Statements[0].SQL)
	require.Equal(t, []interface{}{"person"}, e.Statements[0].Args)

	e, err = s.Compile(ctx, "json", `[{"step":"V"},{"step":"HasLabel","labels":["person"]}]`)
	require.NoError(t, err)
	require.Equal(t, expect, e.Statements[0].SQL)
}

func TestCompileErrors(t *testing.T) {
	s := newSession(t, nil)
	ctx := context.Background()

	_, err := s.Compile(ctx, "sparql", `SELECT *`)
	require.Error(t, err)

	_, err = s.Compile(ctx, "json", `[{"step":"Nope"}]`)
	require.ErrorIs(t, err, gremlin.ErrInvalidArgument)

	_, err = s.Compile(ctx, "js", `g.V().tree()`)
	require.ErrorIs(t, err, gremlin.ErrUnsupportedOperation)
}

func TestPlanCache(t *testing.T) {
	cache := lru.New(8)
	s := newSession(t, cache)
	ctx := context.Background()

	e1, err := s.Compile(ctx, "js", `g.V().count()`)
	require.NoError(t, err)
	e2, err := s.Compile(ctx, "js", `g.V().count()`)
	require.NoError(t, err)
	require.True(t, e1 == e2, "expected a cached plan")

	_, err = s.Compile(ctx, "js", `g.addV('person')`)
	require.NoError(t, err)
	require.Equal(t, 1, cache.Len())
}

func TestNoDatabase(t *testing.T) {
	s := newSession(t, nil)
	ctx := context.Background()

	_, err := s.Query(ctx, "js", `g.V()`, false)
	require.ErrorIs(t, err, query.ErrNoDatabase)

	_, err = s.Query(ctx, "js", `g.V('1').drop()`, true)
	require.ErrorIs(t, err, query.ErrReadOnly)
}

func TestUnknownDialect(t *testing.T) {
	_, err := query.NewSession(query.Config{Dialect: "oracle"})
	require.Error(t, err)
}
