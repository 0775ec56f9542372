package steps

import (
	"errors"
	"testing"

	"github.com/cayleygraph/quad"
	"github.com/stretchr/testify/require"

	"github.com/cayleygraph/gremsql/graph/sql"
	"github.com/cayleygraph/gremsql/query/gremlin"
)

func newOptions() *gremlin.Options {
	return &gremlin.Options{NewID: func() string { return "id1" }}
}

func render(t testing.TB, tr gremlin.Traversal) []sql.Rendered {
	p, err := gremlin.CompilePlan(tr, newOptions())
	require.NoError(t, err)
	out, err := p.Render(sql.DefaultDialect)
	require.NoError(t, err)
	return out
}

func TestTraversalJSON(t *testing.T) {
	const data = `[
		{"step":"V","ids":["1"]},
		{"step":"Out","labels":["knows"]},
		{"step":"Has","key":"age","pred":{"p":"gt","values":[30]}},
		{"step":"Where","traversal":[{"step":"OutE","labels":["created"]}]},
		{"step":"Values","keys":["name"]}
	]`
	tr, err := gremlin.UnmarshalTraversal([]byte(data))
	require.NoError(t, err)
	require.Len(t, tr, 5)
	require.Equal(t, &V{IDs: []quad.Value{quad.String("1")}}, tr[0])
	require.Equal(t, &Out{Labels: []string{"knows"}}, tr[1])
	has, ok := tr[2].(*Has)
	require.True(t, ok)
	require.Equal(t, gremlin.Gt(quad.Int(30)), *has.Pred)

	out, err := tr.MarshalJSON()
	require.NoError(t, err)
	require.JSONEq(t, data, string(out))
}

func TestUnmarshalErrors(t *testing.T) {
	for _, c := range []struct {
		name string
		data string
	}{
		{name: "unknown step", data: `[{"step":"Teleport"}]`},
		{name: "unknown field", data: `[{"step":"Out","hops":2}]`},
		{name: "bad predicate", data: `[{"step":"Has","key":"age","pred":{"p":"gt","values":[1,2]}}]`},
		{name: "not an array", data: `{"step":"V"}`},
	} {
		t.Run(c.name, func(t *testing.T) {
			_, err := gremlin.UnmarshalTraversal([]byte(c.data))
			require.Error(t, err)
		})
	}
}

func TestRegisteredSteps(t *testing.T) {
	names := gremlin.RegisteredTypes()
	for _, name := range []string{"V", "Out", "Has", "Union", "Match", "Group", "Property", "Drop"} {
		require.Contains(t, names, name)
	}
	require.Equal(t, "GroupCount", gremlin.NameOf(&GroupCount{}))
}

func TestMissingPivot(t *testing.T) {
	for _, s := range []gremlin.Step{
		&Out{}, &OutV{}, &Has{Key: "name"}, &Values{Keys: []string{"name"}},
		&Count{}, &Fold{}, &Order{}, &Dedup{}, &Select{Labels: []string{"a"}},
		&Union{}, &Limit{N: 1}, &Property{Key: "name", Value: quad.String("x")}, &Drop{},
		&Coalesce{Traversals: []gremlin.Traversal{{&Out{}}}},
		&Not{Traversal: gremlin.Traversal{&Out{}}},
		&Map{Traversal: gremlin.Traversal{&Out{}}},
		&FlatMap{Traversal: gremlin.Traversal{&Out{}}},
		&Optional{Traversal: gremlin.Traversal{&Out{}}},
	} {
		t.Run(gremlin.NameOf(s), func(t *testing.T) {
			_, err := gremlin.Compile(gremlin.Traversal{s}, nil)
			require.True(t, errors.Is(err, gremlin.ErrMissingPivot), "%v", err)
		})
	}
}

func TestUnsupported(t *testing.T) {
	for _, c := range []struct {
		name string
		tr   gremlin.Traversal
	}{
		{name: "key of vertex", tr: gremlin.Traversal{&V{}, &Key{}}},
		{name: "out of value", tr: gremlin.Traversal{&V{}, &Values{Keys: []string{"name"}}, &Out{}}},
		{name: "tree", tr: gremlin.Traversal{&V{}, &Out{}, &Tree{}}},
		{name: "repeat until", tr: gremlin.Traversal{&V{}, &Repeat{
			Traversal: gremlin.Traversal{&Out{}}, Until: gremlin.Traversal{&HasLabel{Labels: []string{"x"}}},
		}}},
		{name: "mixed union", tr: gremlin.Traversal{&V{}, &Union{Traversals: []gremlin.Traversal{
			{&Out{}}, {&OutE{}},
		}}}},
		{name: "mixed coalesce", tr: gremlin.Traversal{&V{}, &Coalesce{Traversals: []gremlin.Traversal{
			{&Out{Labels: []string{"created"}}}, {&Constant{Value: quad.String("none")}},
		}}}},
	} {
		t.Run(c.name, func(t *testing.T) {
			_, err := gremlin.Compile(c.tr, nil)
			require.True(t, errors.Is(err, gremlin.ErrUnsupportedOperation), "%v", err)
		})
	}
}

func TestInvalidArguments(t *testing.T) {
	for _, c := range []struct {
		name string
		tr   gremlin.Traversal
	}{
		{name: "range bounds", tr: gremlin.Traversal{&V{}, &Range{Low: 3, High: 1}}},
		{name: "repeat zero", tr: gremlin.Traversal{&V{}, &Repeat{Traversal: gremlin.Traversal{&Out{}}}}},
		{name: "unbound label", tr: gremlin.Traversal{&V{}, &Select{Labels: []string{"a"}}}},
		{name: "duplicate project key", tr: gremlin.Traversal{&V{}, &Project{Keys: []string{"a", "a"}}}},
		{name: "edge without label", tr: gremlin.Traversal{&V{}, &AddE{}}},
		{name: "change id", tr: gremlin.Traversal{&V{}, &Property{Key: "id", Value: quad.String("x")}}},
		{name: "duplicate side effect", tr: gremlin.Traversal{&V{}, &Aggregate{Key: "x"}, &Store{Key: "x"}}},
	} {
		t.Run(c.name, func(t *testing.T) {
			_, err := gremlin.Compile(c.tr, nil)
			require.True(t, errors.Is(err, gremlin.ErrInvalidArgument), "%v", err)
		})
	}
}

func TestErrorNamesStep(t *testing.T) {
	_, err := gremlin.Compile(gremlin.Traversal{&V{}, &Where{Traversal: gremlin.Traversal{&Key{}}}}, nil)
	var ce *gremlin.CompilationError
	require.True(t, errors.As(err, &ce))
	require.Equal(t, "Key", ce.Step)
	require.Equal(t, gremlin.UnsupportedOperation, ce.Kind)
}

func TestStartStepsOnPivot(t *testing.T) {
	c, err := gremlin.Compile(gremlin.Traversal{&V{}, &V{IDs: []quad.Value{quad.String("2")}}}, nil)
	require.NoError(t, err)
	require.Equal(t, gremlin.FreeVertex, c.Pivot().Kind())
	// the second V() is a cross join, so it is recorded as a hop from the first one
	path := c.Path()
	require.Len(t, path, 1)
	require.Equal(t, c.Origin(), path[0].Source)
	require.Nil(t, path[0].Edge)
	require.Equal(t, c.Pivot(), path[0].Sink)
}

func TestHopsRecordPath(t *testing.T) {
	c, err := gremlin.Compile(gremlin.Traversal{&V{}, &Out{}, &In{}}, nil)
	require.NoError(t, err)
	path := c.Path()
	require.Len(t, path, 2)
	require.Equal(t, c.Origin(), path[0].Source)
	require.Equal(t, gremlin.FreeVertex, path[0].Source.Kind())
	require.Equal(t, path[0].Sink, path[1].Source)
	for i, hop := range path {
		require.NotNil(t, hop.Edge, "hop %d", i)
		require.Equal(t, gremlin.BoundEdge, hop.Edge.Kind())
		require.Equal(t, gremlin.BoundVertex, hop.Sink.Kind())
	}
	require.Equal(t, sql.DirOut, gremlin.DirectionOf(path[0].Edge))
	require.Equal(t, sql.DirIn, gremlin.DirectionOf(path[1].Edge))
	require.Equal(t, path[1].Sink, c.Pivot())
}

func TestEdgeDirection(t *testing.T) {
	for _, c := range []struct {
		name string
		tr   gremlin.Traversal
		opts *gremlin.Options
		dir  sql.Direction
	}{
		{name: "outE", tr: gremlin.Traversal{&V{}, &OutE{}}, dir: sql.DirOut},
		{name: "inE", tr: gremlin.Traversal{&V{}, &InE{}}, dir: sql.DirIn},
		{name: "bothE", tr: gremlin.Traversal{&V{}, &BothE{}}, dir: sql.DirBoth},
		{name: "table function", tr: gremlin.Traversal{&V{}, &InE{}}, opts: &gremlin.Options{TableFunctions: true}, dir: sql.DirIn},
		{name: "sealed", tr: gremlin.Traversal{&V{}, &OutE{}, &Limit{N: 1}, &Has{Key: "weight"}}, dir: sql.DirOut},
		{name: "free edge", tr: gremlin.Traversal{&E{}}, dir: ""},
	} {
		t.Run(c.name, func(t *testing.T) {
			ctx, err := gremlin.Compile(c.tr, c.opts)
			require.NoError(t, err)
			require.True(t, ctx.Pivot().Kind().IsEdge())
			require.Equal(t, c.dir, gremlin.DirectionOf(ctx.Pivot()))
		})
	}
	c, err := gremlin.Compile(gremlin.Traversal{&V{}, &Out{}}, nil)
	require.NoError(t, err)
	require.Equal(t, sql.Direction(""), gremlin.DirectionOf(c.Pivot()))
}

func TestOrderDefaultsToIdentity(t *testing.T) {
	c, err := gremlin.Compile(gremlin.Traversal{&V{}, &Order{}}, nil)
	require.NoError(t, err)
	keys := c.OrderKeys()
	require.Len(t, keys, 1)
	require.Equal(t, gremlin.Incr, keys[0].Order)
	require.Equal(t, sql.FieldName{Table: c.Pivot().Name(), Name: "id"}, keys[0].Expr)
}

func TestUnionBranches(t *testing.T) {
	c, err := gremlin.Compile(gremlin.Traversal{&V{}, &Union{Traversals: []gremlin.Traversal{
		{&Out{Labels: []string{"knows"}}},
		{&In{Labels: []string{"created"}}},
	}}}, nil)
	require.NoError(t, err)
	require.Equal(t, gremlin.VertexTable, c.Pivot().Kind())
	u, ok := c.Pivot().(interface{ Branches() []*gremlin.Context })
	require.True(t, ok)
	arms := u.Branches()
	require.Len(t, arms, 2)
	for _, arm := range arms {
		require.Equal(t, c, arm.Parent())
		require.Equal(t, gremlin.BoundVertex, arm.Pivot().Kind())
	}
}

func TestSiblingBranchesAreNotAliased(t *testing.T) {
	knows := gremlin.Traversal{&Out{Labels: []string{"knows"}}}
	c, err := gremlin.Compile(gremlin.Traversal{&V{}, &Union{Traversals: []gremlin.Traversal{knows, knows}}}, nil)
	require.NoError(t, err)
	arms := c.Pivot().(interface{ Branches() []*gremlin.Context }).Branches()
	require.Len(t, arms, 2)
	a, b := arms[0], arms[1]
	require.NotSame(t, a, b)
	require.NotEqual(t, a.Pivot().Name(), b.Pivot().Name())
	require.Len(t, b.Predicates(), len(a.Predicates()))

	n := len(b.Predicates())
	require.NoError(t, a.Apply(gremlin.Traversal{&HasLabel{Labels: []string{"person"}}}))
	require.Len(t, a.Predicates(), n+1)
	require.Len(t, b.Predicates(), n)
	require.Len(t, knows, 1)
}

func TestSelectLabels(t *testing.T) {
	c, err := gremlin.Compile(gremlin.Traversal{
		&V{}, &As{Labels: []string{"a"}},
		&Out{}, &As{Labels: []string{"b"}},
		&Select{Labels: []string{"a", "b", "a"}},
	}, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, c.Projection())
	labels := c.Labels()
	require.Len(t, labels, 2)
	require.Equal(t, gremlin.FreeVertex, labels["a"].Kind())
	require.Equal(t, gremlin.BoundVertex, labels["b"].Kind())
}

func TestMatch(t *testing.T) {
	c, err := gremlin.Compile(gremlin.Traversal{&V{}, &Match{Fragments: []gremlin.Traversal{
		{&As{Labels: []string{"a"}}, &Out{Labels: []string{"knows"}}, &As{Labels: []string{"b"}}},
		{&As{Labels: []string{"b"}}, &Out{Labels: []string{"created"}}, &As{Labels: []string{"c"}}},
	}}}, nil)
	require.NoError(t, err)
	require.Equal(t, gremlin.Row, c.Pivot().Kind())
	require.Equal(t, []string{"a", "b", "c"}, c.Projection())
}

func TestMatchFragmentLabels(t *testing.T) {
	for _, c := range []struct {
		name      string
		fragments []gremlin.Traversal
	}{
		{name: "no start label", fragments: []gremlin.Traversal{{&Out{}}}},
		{name: "empty fragment", fragments: []gremlin.Traversal{{}}},
		{name: "two start labels", fragments: []gremlin.Traversal{{&As{Labels: []string{"a", "b"}}, &Out{}}}},
		{name: "two end labels", fragments: []gremlin.Traversal{
			{&As{Labels: []string{"a"}}, &Out{}, &As{Labels: []string{"b", "c"}}},
		}},
	} {
		t.Run(c.name, func(t *testing.T) {
			_, err := gremlin.Compile(gremlin.Traversal{&V{}, &Match{Fragments: c.fragments}}, nil)
			require.True(t, errors.Is(err, gremlin.ErrInvalidFragmentLabels), "%v", err)
		})
	}
}

func TestModulators(t *testing.T) {
	g := &Group{}
	require.NoError(t, g.AddBy(gremlin.By{Key: "label"}))
	require.NoError(t, g.AddBy(gremlin.By{Traversal: gremlin.Traversal{&Count{}}}))
	require.Error(t, g.AddBy(gremlin.By{}))

	gc := &GroupCount{}
	require.NoError(t, gc.AddBy(gremlin.By{Key: "label"}))
	require.Error(t, gc.AddBy(gremlin.By{Key: "name"}))

	ch := &Choose{Traversal: gremlin.Traversal{&Out{}}, True: gremlin.Traversal{&Out{}}}
	require.Error(t, ch.AddOption(gremlin.Option{Key: quad.String("a")}))

	r := &Repeat{}
	require.NoError(t, r.SetTimes(2))
	require.Equal(t, 2, r.Times)
}

var sqlCases = []struct {
	name  string
	tr    gremlin.Traversal
	stmts []string
	args  [][]interface{}
}{
	{
		name: "filter and values",
		tr: gremlin.Traversal{
			&V{}, &HasLabel{Labels: []string{"person"}},
			&Has{Key: "age", Pred: &gremlin.P{Op: gremlin.PredGt, Values: []quad.Value{quad.Int(30)}}},
			&Values{Keys: []string{"name"}},
		},
		stmts: []string{
			`SELECT n_0.name AS value FROM vertices AS n_0 WHERE n_0.label IN (?) AND n_0.age > CAST(? AS BIGINT) AND n_0.name IS NOT NULL`,
		},
		args: [][]interface{}{{"person", int64(30)}},
	},
	{
		name: "out hop",
		tr:   gremlin.Traversal{&V{IDs: []quad.Value{quad.String("1")}}, &Out{Labels: []string{"knows"}}},
		stmts: []string{
			`SELECT n_1.id AS id, n_1.label AS label FROM vertices AS n_0, edges AS e_0, vertices AS n_1 WHERE n_0.id IN (?) AND e_0.out_v = n_0.id AND e_0.label IN (?) AND n_1.id = e_0.in_v`,
		},
		args: [][]interface{}{{"1", "knows"}},
	},
	{
		name: "count",
		tr:   gremlin.Traversal{&V{}, &Count{}},
		stmts: []string{
			`SELECT t_0.count AS value FROM (SELECT COUNT(*) AS count FROM vertices AS n_0) AS t_0`,
		},
		args: [][]interface{}{nil},
	},
	{
		name: "limit",
		tr:   gremlin.Traversal{&V{}, &Limit{N: 2}},
		stmts: []string{
			`SELECT n_0.id AS id, n_0.label AS label FROM vertices AS n_0 LIMIT 2`,
		},
		args: [][]interface{}{nil},
	},
	{
		name: "order",
		tr:   gremlin.Traversal{&V{}, &Order{By: []gremlin.By{{Key: "name", Order: gremlin.Decr}}}},
		stmts: []string{
			`SELECT n_0.id AS id, n_0.label AS label FROM vertices AS n_0 ORDER BY n_0.name DESC`,
		},
		args: [][]interface{}{nil},
	},
	{
		name: "dedup",
		tr:   gremlin.Traversal{&V{}, &Dedup{}},
		stmts: []string{
			`SELECT t_0.n_0_id AS id, t_0.n_0_label AS label FROM (SELECT n_0.id AS n_0_id, MIN(n_0.label) AS n_0_label FROM vertices AS n_0 GROUP BY n_0.id) AS t_0`,
		},
		args: [][]interface{}{nil},
	},
	{
		name: "add vertex",
		tr:   gremlin.Traversal{&AddV{Label: "person"}, &Property{Key: "name", Value: quad.String("marko")}},
		stmts: []string{
			`INSERT INTO vertices (id, label, name) VALUES (?, ?, ?)`,
			`SELECT ? AS id, ? AS label`,
		},
		args: [][]interface{}{{"id1", "person", "marko"}, {"id1", "person"}},
	},
	{
		name: "drop vertex",
		tr:   gremlin.Traversal{&V{IDs: []quad.Value{quad.String("1")}}, &Drop{}},
		stmts: []string{
			`DELETE FROM vertices WHERE id IN (SELECT m.id FROM (SELECT DISTINCT n_0.id AS id FROM vertices AS n_0 WHERE n_0.id IN (?)) AS m)`,
			`DELETE FROM edges WHERE (out_v NOT IN (SELECT id FROM vertices) OR in_v NOT IN (SELECT id FROM vertices))`,
			`SELECT n_0.id AS id, n_0.label AS label FROM vertices AS n_0 WHERE n_0.id IN (?) AND 1 = 0`,
		},
		args: [][]interface{}{{"1"}, nil, {"1"}},
	},
}

func TestSQL(t *testing.T) {
	for _, c := range sqlCases {
		t.Run(c.name, func(t *testing.T) {
			out := render(t, c.tr)
			require.Len(t, out, len(c.stmts))
			for i, st := range out {
				require.Equal(t, c.stmts[i], st.SQL)
				if len(c.args[i]) == 0 {
					require.Empty(t, st.Args)
				} else {
					require.Equal(t, c.args[i], st.Args)
				}
			}
			require.True(t, out[len(out)-1].Query)
		})
	}
}

func TestCompileAll(t *testing.T) {
	// traversals that must compile and render for the default dialect
	knows := gremlin.Traversal{&Out{Labels: []string{"knows"}}}
	for _, c := range []struct {
		name string
		tr   gremlin.Traversal
	}{
		{name: "coalesce", tr: gremlin.Traversal{&V{}, &Coalesce{Traversals: []gremlin.Traversal{knows, {&In{}}}}}},
		{name: "optional", tr: gremlin.Traversal{&V{}, &Optional{Traversal: knows}}},
		{name: "not", tr: gremlin.Traversal{&V{}, &Not{Traversal: knows}}},
		{name: "where", tr: gremlin.Traversal{&V{}, &Where{Traversal: knows}}},
		{name: "repeat", tr: gremlin.Traversal{&V{}, &Repeat{Traversal: knows, Times: 2}}},
		{name: "group count", tr: gremlin.Traversal{&V{}, &GroupCount{By: []gremlin.By{{Key: "label"}}}}},
		{name: "group", tr: gremlin.Traversal{&V{}, &Group{By: []gremlin.By{{Key: "label"}, {Key: "name"}}}}},
		{name: "fold unfold", tr: gremlin.Traversal{&V{}, &Fold{}, &Unfold{}}},
		{name: "path", tr: gremlin.Traversal{&V{}, &Out{}, &Path{By: []gremlin.By{{Key: "name"}}}}},
		{name: "project", tr: gremlin.Traversal{&V{}, &Project{
			Keys: []string{"name", "friends"},
			By:   []gremlin.By{{Key: "name"}, {Traversal: gremlin.Traversal{&Out{}, &Count{}}}},
		}}},
		{name: "tail", tr: gremlin.Traversal{&V{}, &Tail{N: 2}}},
		{name: "sample", tr: gremlin.Traversal{&V{}, &Sample{N: 1}}},
		{name: "simple path", tr: gremlin.Traversal{&V{}, &Out{}, &Out{}, &SimplePath{}}},
		{name: "inject", tr: gremlin.Traversal{&Inject{Values: []quad.Value{quad.Int(1), quad.Int(2)}}, &Sum{}}},
		{name: "edge endpoints", tr: gremlin.Traversal{&E{}, &OutV{}, &Values{Keys: []string{"name"}}}},
		{name: "add edge", tr: gremlin.Traversal{
			&V{IDs: []quad.Value{quad.String("1")}}, &As{Labels: []string{"a"}},
			&Out{}, &AddE{Label: "knows", From: gremlin.Endpoint{Label: "a"}},
		}},
		{name: "aggregate cap", tr: gremlin.Traversal{&V{}, &Aggregate{Key: "x"}, &Cap{Keys: []string{"x"}}}},
	} {
		t.Run(c.name, func(t *testing.T) {
			out := render(t, c.tr)
			require.NotEmpty(t, out)
		})
	}
}
