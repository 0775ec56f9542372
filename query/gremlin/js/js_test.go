package js

import (
	"context"
	"errors"
	"testing"

	"github.com/cayleygraph/quad"
	"github.com/stretchr/testify/require"

	"github.com/cayleygraph/gremsql/query"
	"github.com/cayleygraph/gremsql/query/gremlin"
	"github.com/cayleygraph/gremsql/query/gremlin/steps"
)

func pred(p gremlin.P) *gremlin.P { return &p }

var parseCases = []struct {
	name   string
	script string
	expect gremlin.Traversal
}{
	{
		name:   "filter and hop",
		script: `g.V('1').out('knows').has('age', P.gt(30)).values('name')`,
		expect: gremlin.Traversal{
			&steps.V{IDs: []quad.Value{quad.String("1")}},
			&steps.Out{Labels: []string{"knows"}},
			&steps.Has{Key: "age", Pred: pred(gremlin.Gt(quad.Int(30)))},
			&steps.Values{Keys: []string{"name"}},
		},
	},
	{
		name:   "has forms",
		script: `g.V().has('name').has('name', 'marko').has('person', 'age', P.within(29, 30)).has('name', __.is(P.startingWith('m')))`,
		expect: gremlin.Traversal{
			&steps.V{},
			&steps.Has{Key: "name"},
			&steps.Has{Key: "name", Value: quad.String("marko")},
			&steps.Has{Label: "person", Key: "age", Pred: pred(gremlin.Within(quad.Int(29), quad.Int(30)))},
			&steps.Has{Key: "name", Traversal: gremlin.Traversal{
				&steps.Is{Pred: pred(gremlin.StartingWith("m"))},
			}},
		},
	},
	{
		name:   "labels from array",
		script: `g.V().hasLabel(['person', 'software']).both()`,
		expect: gremlin.Traversal{
			&steps.V{},
			&steps.HasLabel{Labels: []string{"person", "software"}},
			&steps.Both{},
		},
	},
	{
		name:   "composite predicates",
		script: `g.V().values('age').is(P.and(P.gte(29), P.not(P.eq(32))))`,
		expect: gremlin.Traversal{
			&steps.V{},
			&steps.Values{Keys: []string{"age"}},
			&steps.Is{Pred: pred(gremlin.AndP(gremlin.Gte(quad.Int(29)), gremlin.NotP(gremlin.Eq(quad.Int(32)))))},
		},
	},
	{
		name:   "group by",
		script: `g.V().group().by(T.label).by(__.count())`,
		expect: gremlin.Traversal{
			&steps.V{},
			&steps.Group{By: []gremlin.By{
				{Key: "label"},
				{Traversal: gremlin.Traversal{&steps.Count{}}},
			}},
		},
	},
	{
		name:   "order by",
		script: `g.V().order().by('name', decr).by(T.id, Order.asc).limit(2)`,
		expect: gremlin.Traversal{
			&steps.V{},
			&steps.Order{By: []gremlin.By{
				{Key: "name", Order: gremlin.Decr},
				{Key: "id", Order: gremlin.Incr},
			}},
			&steps.Limit{N: 2},
		},
	},
	{
		name:   "select and where",
		script: `g.V().as('a').out().as('b').where('a', P.neq('b')).select('a', 'b').by('name')`,
		expect: gremlin.Traversal{
			&steps.V{},
			&steps.As{Labels: []string{"a"}},
			&steps.Out{},
			&steps.As{Labels: []string{"b"}},
			&steps.Where{Label: "a", Pred: pred(gremlin.Neq(quad.String("b")))},
			&steps.Select{Labels: []string{"a", "b"}, By: []gremlin.By{{Key: "name"}}},
		},
	},
	{
		name:   "repeat times",
		script: `g.V().repeat(__.out()).times(2).path()`,
		expect: gremlin.Traversal{
			&steps.V{},
			&steps.Repeat{Traversal: gremlin.Traversal{&steps.Out{}}, Times: 2},
			&steps.Path{},
		},
	},
	{
		name:   "choose options",
		script: `g.V().choose(__.label()).option('person', __.out('knows')).option(Pick.none, __.identity())`,
		expect: gremlin.Traversal{
			&steps.V{},
			&steps.Choose{
				Traversal: gremlin.Traversal{&steps.Label{}},
				Options: []gremlin.Option{
					{Key: quad.String("person"), Traversal: gremlin.Traversal{&steps.Out{Labels: []string{"knows"}}}},
					{None: true, Traversal: gremlin.Traversal{&steps.Identity{}}},
				},
			},
		},
	},
	{
		name:   "conditional choose",
		script: `g.V().values('age').choose(P.gt(30), __.constant('old'), __.constant('young'))`,
		expect: gremlin.Traversal{
			&steps.V{},
			&steps.Values{Keys: []string{"age"}},
			&steps.Choose{
				Pred:  pred(gremlin.Gt(quad.Int(30))),
				True:  gremlin.Traversal{&steps.Constant{Value: quad.String("old")}},
				False: gremlin.Traversal{&steps.Constant{Value: quad.String("young")}},
			},
		},
	},
	{
		name:   "add edge",
		script: `g.V('1').as('a').V('2').addE('knows').from('a').property('weight', 0.5)`,
		expect: gremlin.Traversal{
			&steps.V{IDs: []quad.Value{quad.String("1")}},
			&steps.As{Labels: []string{"a"}},
			&steps.V{IDs: []quad.Value{quad.String("2")}},
			&steps.AddE{Label: "knows", From: gremlin.Endpoint{Label: "a"}},
			&steps.Property{Key: "weight", Value: quad.Float(0.5)},
		},
	},
	{
		name:   "value map and tail",
		script: `g.V().valueMap(true, 'name').tail()`,
		expect: gremlin.Traversal{
			&steps.V{},
			&steps.ValueMap{Keys: []string{"name"}, Tokens: true},
			&steps.Tail{N: 1},
		},
	},
	{
		name:   "statements",
		script: "var people = g.V().hasLabel('person');\npeople.out('created').dedup()",
		expect: gremlin.Traversal{
			&steps.V{},
			&steps.HasLabel{Labels: []string{"person"}},
			&steps.Out{Labels: []string{"created"}},
			&steps.Dedup{},
		},
	},
}

func TestParse(t *testing.T) {
	for _, c := range parseCases {
		t.Run(c.name, func(t *testing.T) {
			got, err := Parse(context.Background(), c.script)
			require.NoError(t, err)
			require.Equal(t, c.expect, got)
		})
	}
}

func TestTraversalsAreImmutable(t *testing.T) {
	got, err := Parse(context.Background(), `
var a = g.V().order();
var b = a.by('name');
var c = a.by('age', decr);
b.out();
a`)
	require.NoError(t, err)
	require.Equal(t, gremlin.Traversal{&steps.V{}, &steps.Order{}}, got)
}

var parseErrors = []struct {
	name   string
	script string
}{
	{name: "syntax", script: `g.V(]`},
	{name: "not a traversal", script: `1 + 1`},
	{name: "undefined", script: `undefined`},
	{name: "unknown step", script: `g.V().frobnicate()`},
	{name: "by on a start step", script: `g.V().by('name')`},
	{name: "modulator without step", script: `g.by('name')`},
	{name: "has without key", script: `g.V().has()`},
	{name: "traversal as value", script: `g.V().constant(__.out())`},
	{name: "predicate arity", script: `g.V().has('age', P.between(1))`},
	{name: "option after condition", script: `g.V().choose(P.gt(1), __.out()).option('a', __.in())`},
	{name: "group with three by", script: `g.V().group().by('a').by('b').by('c')`},
	{name: "limit needs a number", script: `g.V().limit('x')`},
	{name: "thrown by script", script: `throw new Error('boom')`},
}

func TestParseErrors(t *testing.T) {
	for _, c := range parseErrors {
		t.Run(c.name, func(t *testing.T) {
			_, err := Parse(context.Background(), c.script)
			require.Error(t, err)
			var ce *gremlin.CompilationError
			require.True(t, errors.As(err, &ce), "unexpected error: %v", err)
			require.Equal(t, gremlin.InvalidArgument, ce.Kind)
		})
	}
}

func TestParseMore(t *testing.T) {
	for _, src := range []string{
		"g.V().out(",
		"g.V()\n\t.has('name',\n",
		"g.V().where(__.out('knows')",
	} {
		_, err := Parse(context.Background(), src)
		require.ErrorIs(t, err, query.ErrParseMore, "%q", src)
	}
	// complete lines parse once the rest of the input arrives
	tr, err := Parse(context.Background(), "g.V()\n\t.out('knows')")
	require.NoError(t, err)
	require.Len(t, tr, 2)

	_, err = Parse(context.Background(), "g.V(]")
	require.NotErrorIs(t, err, query.ErrParseMore)
	require.ErrorIs(t, err, gremlin.ErrInvalidArgument)
}

func TestParseCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Parse(ctx, `while (true) {}`)
	require.ErrorIs(t, err, context.Canceled)
}

func TestParsedTraversalCompiles(t *testing.T) {
	tr, err := Parse(context.Background(), `g.V().hasLabel('person').has('age', P.gt(30)).values('name')`)
	require.NoError(t, err)
	_, err = gremlin.CompilePlan(tr, &gremlin.Options{})
	require.NoError(t, err)
}
