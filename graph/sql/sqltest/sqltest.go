// Package sqltest runs traversals against a live database loaded with a small
// reference graph and checks the rows they return.
package sqltest

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cayleygraph/gremsql/graph/sql"
	"github.com/cayleygraph/gremsql/query"
	"github.com/cayleygraph/gremsql/query/gremlin"
	_ "github.com/cayleygraph/gremsql/query/gremlin/js"
	_ "github.com/cayleygraph/gremsql/query/gremlin/steps"
)

type Config struct {
	// SkipMutations disables test cases that write to the database.
	SkipMutations bool
}

// DatabaseFunc returns an address of an empty database and a function that releases it.
type DatabaseFunc func(t testing.TB) (string, func())

// Schema of the reference graph.
var Schema = sql.Schema{
	Vertex: []sql.Property{
		{Name: "name", Type: sql.TypeString},
		{Name: "age", Type: sql.TypeInt},
		{Name: "lang", Type: sql.TypeString},
	},
	Edge: []sql.Property{
		{Name: "weight", Type: sql.TypeFloat},
	},
}

func person(id, name string, age int64) sql.Vertex {
	return sql.Vertex{ID: id, Label: "person", Properties: map[string]interface{}{"name": name, "age": age}}
}

func software(id, name string) sql.Vertex {
	return sql.Vertex{ID: id, Label: "software", Properties: map[string]interface{}{"name": name, "lang": "java"}}
}

func edge(id, label, out, in string, w float64) sql.Edge {
	return sql.Edge{ID: id, Label: label, Out: out, In: in, Properties: map[string]interface{}{"weight": w}}
}

// Modern returns the six vertex graph used in most Gremlin examples.
func Modern() *sql.Graph {
	return &sql.Graph{
		Vertices: []sql.Vertex{
			person("1", "marko", 29),
			person("2", "vadas", 27),
			software("3", "lop"),
			person("4", "josh", 32),
			software("5", "ripple"),
			person("6", "peter", 35),
		},
		Edges: []sql.Edge{
			edge("7", "knows", "1", "2", 0.5),
			edge("8", "knows", "1", "4", 1.0),
			edge("9", "created", "1", "3", 0.4),
			edge("10", "created", "4", "5", 1.0),
			edge("11", "created", "4", "3", 0.4),
			edge("12", "created", "6", "3", 0.2),
		},
	}
}

type testCase struct {
	name   string
	query  string
	expect []string
}

// each row is formatted as a space-separated list of its values
var readCases = []testCase{
	{
		name:   "labels",
		query:  `g.V().hasLabel('person').values('name')`,
		expect: []string{"josh", "marko", "peter", "vadas"},
	},
	{
		name:   "vertex by id",
		query:  `g.V('3')`,
		expect: []string{"3 software"},
	},
	{
		name:   "out",
		query:  `g.V('1').out('knows').values('name')`,
		expect: []string{"josh", "vadas"},
	},
	{
		name:   "co-creators",
		query:  `g.V('1').out('created').in('created').values('name')`,
		expect: []string{"josh", "marko", "peter"},
	},
	{
		name:   "compare",
		query:  `g.V().has('age', P.gt(30)).values('name')`,
		expect: []string{"josh", "peter"},
	},
	{
		name:   "between",
		query:  `g.V().has('age', P.between(27, 30)).values('name')`,
		expect: []string{"marko", "vadas"},
	},
	{
		name:   "starting with",
		query:  `g.V().has('name', P.startingWith('ma')).values('age')`,
		expect: []string{"29"},
	},
	{
		name:   "within",
		query:  `g.V().has('name', P.within('lop', 'ripple', 'nobody')).id()`,
		expect: []string{"3", "5"},
	},
	{
		name:   "where",
		query:  `g.V().where(__.out('created')).values('name')`,
		expect: []string{"josh", "marko", "peter"},
	},
	{
		name:   "not",
		query:  `g.V().not(__.out('created')).values('name')`,
		expect: []string{"lop", "ripple", "vadas"},
	},
	{
		name:   "edge property",
		query:  `g.V('4').outE('created').values('weight')`,
		expect: []string{"0.4", "1"},
	},
	{
		name:   "edge endpoints",
		query:  `g.E('7').inV().values('name')`,
		expect: []string{"vadas"},
	},
	{
		name:   "count",
		query:  `g.V().count()`,
		expect: []string{"6"},
	},
	{
		name:   "count edges",
		query:  `g.E().hasLabel('created').count()`,
		expect: []string{"4"},
	},
	{
		name:   "dedup",
		query:  `g.V().hasLabel('software').in('created').dedup().count()`,
		expect: []string{"3"},
	},
	{
		name:   "sum",
		query:  `g.V().values('age').sum()`,
		expect: []string{"123"},
	},
	{
		name:   "order limit",
		query:  `g.V().hasLabel('person').order().by('age', decr).limit(2).id()`,
		expect: []string{"4", "6"},
	},
	{
		name:   "group",
		query:  `g.V().hasLabel('person').group().by('age').by('name')`,
		expect: []string{`{"27":["vadas"],"29":["marko"],"32":["josh"],"35":["peter"]}`},
	},
	{
		name:   "group count",
		query:  `g.V().groupCount().by(T.label)`,
		expect: []string{`{"person":4,"software":2}`},
	},
	{
		name:   "project keyword keys",
		query:  `g.V('1').project('order', 'group').by('name').by(__.out('knows').count())`,
		expect: []string{"marko 2"},
	},
	{
		name:   "select labels",
		query:  `g.V('1').as('a').out('knows').as('b').select('a', 'b').by('name')`,
		expect: []string{"marko josh", "marko vadas"},
	},
	{
		name:   "match",
		query:  `g.V().match(__.as('a').out('knows').as('b'), __.as('b').out('created').as('c'))`,
		expect: []string{"1 4 3", "1 4 5"},
	},
	{
		name:   "union",
		query:  `g.V('4').union(__.out('created'), __.in('knows')).values('name')`,
		expect: []string{"lop", "marko", "ripple"},
	},
	{
		name:   "coalesce",
		query:  `g.V('2', '4').coalesce(__.out('created'), __.in('knows')).values('name')`,
		expect: []string{"lop", "marko", "ripple"},
	},
	{
		name:   "choose",
		query:  `g.V('1', '2').choose(__.out('knows'), __.out('knows'), __.in('knows')).values('name')`,
		expect: []string{"josh", "marko", "vadas"},
	},
	{
		name:   "path",
		query:  `g.V('1').out('knows').has('name', 'josh').path().by('name')`,
		expect: []string{`["marko","josh"]`},
	},
}

var writeCases = []testCase{
	{
		name:   "add vertex",
		query:  `g.addV('person').property('name', 'stephen').property('age', 40)`,
		expect: []string{"100 person"},
	},
	{
		name:   "read added",
		query:  `g.V().has('name', 'stephen').values('age')`,
		expect: []string{"40"},
	},
	{
		name:   "drop",
		query:  `g.V().has('name', 'stephen').drop()`,
		expect: []string{},
	},
	{
		name:   "count after drop",
		query:  `g.V().count()`,
		expect: []string{"6"},
	},
}

func formatRows(rows [][]interface{}) []string {
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		s := ""
		for i, v := range row {
			if i > 0 {
				s += " "
			}
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			if str, ok := v.(string); ok {
				v = canonicalJSON(str)
			}
			s += fmt.Sprint(v)
		}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// canonicalJSON re-encodes JSON documents, so that whitespace and key order produced by
// different databases do not matter. Other strings are returned as is.
func canonicalJSON(s string) string {
	if s == "" || (s[0] != '{' && s[0] != '[') {
		return s
	}
	var v interface{}
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return s
	}
	return string(data)
}

// Open initializes a database returned by fnc and loads the reference graph into it.
func Open(t testing.TB, typ string, fnc DatabaseFunc) *sql.Database {
	addr, closer := fnc(t)
	db, err := sql.Open(typ, addr, sql.Options{})
	if err != nil {
		closer()
		t.Fatal(err)
	}
	t.Cleanup(func() {
		db.Close()
		closer()
	})
	ctx := context.Background()
	require.NoError(t, db.Init(ctx, Schema))
	require.NoError(t, db.Load(ctx, Modern(), Schema))
	return db
}

func runCases(t *testing.T, ses *query.Session, cases []testCase) {
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			res, err := ses.Query(ctx, "js", c.query, false)
			require.NoError(t, err, c.query)
			require.Equal(t, c.expect, formatRows(res.Rows), c.query)
		})
	}
}

// TestAll loads the reference graph into a database of a given type and runs all test cases against it.
func TestAll(t *testing.T, typ string, fnc DatabaseFunc, c *Config) {
	if c == nil {
		c = &Config{}
	}
	db := Open(t, typ, fnc)
	next := 99
	ses, err := query.NewSession(query.Config{
		DB: db,
		Options: &gremlin.Options{
			Schema: Schema,
			NewID: func() string {
				next++
				return strconv.Itoa(next)
			},
		},
	})
	require.NoError(t, err)

	t.Run("init twice", func(t *testing.T) {
		err := db.Init(context.Background(), Schema)
		require.ErrorIs(t, err, sql.ErrDatabaseExists)
	})
	t.Run("read", func(t *testing.T) {
		runCases(t, ses, readCases)
	})
	if c.SkipMutations {
		return
	}
	t.Run("write", func(t *testing.T) {
		runCases(t, ses, writeCases)
	})
	t.Run("read only", func(t *testing.T) {
		_, err := ses.Query(context.Background(), "js", `g.V('1').drop()`, true)
		require.ErrorIs(t, err, query.ErrReadOnly)
	})
}
