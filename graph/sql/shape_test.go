package sql

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// numbered is a dialect with positional placeholders and lateral subqueries.
var numbered = QueryDialect{
	FieldQuote:  DefaultDialect.FieldQuote,
	Placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
}

var noLateral = func() QueryDialect {
	d := DefaultDialect
	d.NoLateral = true
	d.NoOffsetWithoutLimit = true
	return d
}()

func vertexIDs(alias string) Select {
	return Select{
		Fields: []Field{Column(alias, "id", "id")},
		From:   []Source{Table{Name: VerticesTable, Alias: alias}},
	}
}

func expr(e Expr) Statement {
	return Select{Fields: []Field{{Expr: e}}}
}

var knows = Adjacency{
	From:   FieldName{Table: "n_0", Name: "id"},
	Dir:    DirOut,
	Labels: []string{"knows"},
	Alias:  "a",
}

var shapeCases = []struct {
	name string
	d    *QueryDialect
	s    Statement
	qu   string
	args []interface{}
}{
	{
		name: "all vertices",
		s:    vertexIDs("n_0"),
		qu:   `SELECT n_0.id AS id FROM vertices AS n_0`,
	},
	{
		name: "filter and page",
		s: func() Statement {
			s := vertexIDs("n_0")
			s.AppendWhere(Eq(FieldName{Table: "n_0", Name: "label"}, Param{Value: "person"}))
			s.Limit, s.Offset = 10, 5
			return s
		}(),
		qu:   `SELECT n_0.id AS id FROM vertices AS n_0 WHERE n_0.label = ? LIMIT 10 OFFSET 5`,
		args: []interface{}{"person"},
	},
	{
		name: "offset without limit",
		d:    &noLateral,
		s: func() Statement {
			s := vertexIDs("n_0")
			s.Offset = 5
			return s
		}(),
		qu: `SELECT n_0.id AS id FROM vertices AS n_0 LIMIT 9223372036854775807 OFFSET 5`,
	},
	{
		name: "positional placeholders",
		d:    &numbered,
		s: func() Statement {
			s := vertexIDs("n_0")
			s.AppendWhere(In{Expr: FieldName{Table: "n_0", Name: "label"}, Values: Params([]string{"a", "b"})})
			return s
		}(),
		qu:   `SELECT n_0.id AS id FROM vertices AS n_0 WHERE n_0.label IN ($1, $2)`,
		args: []interface{}{"a", "b"},
	},
	{
		name: "quoted names",
		s: Select{
			Fields: []Field{Column("n_0", "Name", "Full name")},
			From:   []Source{Table{Name: VerticesTable, Alias: "n_0"}},
		},
		qu: `SELECT n_0."Name" AS "Full name" FROM vertices AS n_0`,
	},
	{
		name: "keyword names",
		s: Select{
			Fields: []Field{Column("n_0", "order", "group"), Column("n_0", "count", "key")},
			From:   []Source{Table{Name: VerticesTable, Alias: "n_0"}},
		},
		qu: `SELECT n_0."order" AS "group", n_0.count AS "key" FROM vertices AS n_0`,
	},
	{
		name: "empty union",
		s:    Union{All: true},
		qu:   `SELECT 1 WHERE 1 = 0`,
	},
	{
		name: "union members with limit",
		s: Union{All: true, Queries: []Query{
			func() Query {
				s := vertexIDs("n_0")
				s.Limit = 1
				return s
			}(),
			vertexIDs("n_1"),
		}},
		qu: `SELECT * FROM (SELECT n_0.id AS id FROM vertices AS n_0 LIMIT 1) AS u_0 UNION ALL SELECT n_1.id AS id FROM vertices AS n_1`,
	},
	{
		name: "lateral adjacency",
		d:    &numbered,
		s: Select{
			Fields: []Field{Column("a", "id", "id")},
			From:   []Source{Table{Name: VerticesTable, Alias: "n_0"}, knows},
		},
		qu: `SELECT a.id AS id FROM vertices AS n_0, LATERAL (SELECT adj_v.* FROM edges AS adj_e, vertices AS adj_v ` +
			`WHERE adj_e.out_v = n_0.id AND adj_v.id = adj_e.in_v AND adj_e.label IN ($1)) AS a`,
		args: []interface{}{"knows"},
	},
	{
		name: "decorrelated adjacency",
		d:    &noLateral,
		s: Select{
			Fields: []Field{Column("a", "id", "id")},
			From:   []Source{Table{Name: VerticesTable, Alias: "n_0"}, knows},
		},
		qu: `SELECT a.id AS id FROM vertices AS n_0, (SELECT adj_e.out_v AS adj_src, adj_v.* FROM edges AS adj_e, vertices AS adj_v ` +
			`WHERE adj_v.id = adj_e.in_v AND adj_e.label IN (?)) AS a WHERE a.adj_src = n_0.id`,
		args: []interface{}{"knows"},
	},
	{
		name: "insert",
		s: Insert{
			Table:   VerticesTable,
			Columns: VertexColumns,
			Values:  [][]Expr{{Param{Value: "1"}, Param{Value: "person"}}},
		},
		qu:   `INSERT INTO vertices (id, label) VALUES (?, ?)`,
		args: []interface{}{"1", "person"},
	},
	{
		name: "update",
		s: Update{
			Table: VerticesTable,
			Set:   []Assign{{Column: "name", Value: Param{Value: "marko"}}},
			Where: []Expr{Eq(FieldName{Name: "id"}, Param{Value: "1"})},
		},
		qu:   `UPDATE vertices SET name = ? WHERE id = ?`,
		args: []interface{}{"marko", "1"},
	},
	{
		name: "delete by query",
		s: Delete{
			Table: VerticesTable,
			Where: []Expr{InQuery{Expr: FieldName{Name: "id"}, Query: IDsOf(vertexIDs("n_0"), "m")}},
		},
		qu: `DELETE FROM vertices WHERE id IN (SELECT m.id FROM (SELECT n_0.id AS id FROM vertices AS n_0) AS m)`,
	},
	{
		name: "like",
		s:    expr(Like{Expr: FieldName{Name: "name"}, Pattern: Param{Value: EscapeLike("50%_off!") + "%"}}),
		qu:   `SELECT name LIKE ? ESCAPE '!'`,
		args: []interface{}{"50!%!_off!!%"},
	},
	{
		name: "empty in",
		s:    expr(And{In{Expr: FieldName{Name: "id"}}, In{Expr: FieldName{Name: "id"}, Not: true}}),
		qu:   `SELECT (1 = 0 AND 1 = 1)`,
	},
	{
		name: "cast",
		s:    expr(Cast{Expr: Param{Value: int64(1)}, Type: TypeInt}),
		qu:   `SELECT CAST(? AS BIGINT)`,
		args: []interface{}{int64(1)},
	},
	{
		name: "json object",
		s:    expr(JSONObject{Keys: []string{"it's"}, Values: []Expr{FieldName{Name: "name"}}}),
		qu:   `SELECT json_build_object('it''s', name)`,
	},
	{
		name: "case",
		s: expr(Case{
			When: []When{{Cond: IsNull{Expr: FieldName{Name: "age"}}, Then: Raw("0")}},
			Else: FieldName{Name: "age"},
		}),
		qu: `SELECT CASE WHEN age IS NULL THEN 0 ELSE age END`,
	},
}

func TestSQL(t *testing.T) {
	for _, c := range shapeCases {
		t.Run(c.name, func(t *testing.T) {
			d := DefaultDialect
			if c.d != nil {
				d = *c.d
			}
			qu, args, err := NewBuilder(d).Build(c.s)
			require.NoError(t, err)
			require.Equal(t, c.qu, qu)
			require.Equal(t, c.args, args)
		})
	}
}

func TestBuildErrors(t *testing.T) {
	b := NewBuilder(noLateral)
	_, _, err := b.Build(Select{From: []Source{Subquery{Query: vertexIDs("n_0"), Alias: "t_0", Lateral: true}}})
	require.Error(t, err)

	// errors are not carried over to the next statement
	qu, _, err := b.Build(vertexIDs("n_0"))
	require.NoError(t, err)
	require.Equal(t, `SELECT n_0.id AS id FROM vertices AS n_0`, qu)

	_, _, err = b.Build(expr(Cmp{Left: FieldName{Name: "name"}, Op: OpRegexp, Right: Param{Value: "^a"}}))
	require.Error(t, err)
}

func TestPlanRender(t *testing.T) {
	p := &Plan{
		Mutations: []Statement{Insert{
			Table:   VerticesTable,
			Columns: VertexColumns,
			Values:  [][]Expr{{Param{Value: "1"}, Param{Value: "person"}}},
		}},
		Query: Select{
			Fields: []Field{Column("n_0", "id", "id")},
			From:   []Source{Table{Name: VerticesTable, Alias: "n_0"}},
			Where:  []Expr{Eq(FieldName{Table: "n_0", Name: "id"}, Param{Value: "1"})},
		},
		Columns: []string{"id"},
	}
	require.False(t, p.ReadOnly())
	out, err := p.Render(numbered)
	require.NoError(t, err)
	require.Equal(t, []Rendered{
		{SQL: `INSERT INTO vertices (id, label) VALUES ($1, $2)`, Args: []interface{}{"1", "person"}},
		{SQL: `SELECT n_0.id AS id FROM vertices AS n_0 WHERE n_0.id = $1`, Args: []interface{}{"1"}, Query: true},
	}, out)

	require.True(t, (&Plan{Query: vertexIDs("n_0")}).ReadOnly())
}

func TestParseProperties(t *testing.T) {
	props, err := ParseProperties([]string{"name", " age:int ", "", "weight:float"})
	require.NoError(t, err)
	require.Equal(t, []Property{
		{Name: "name", Type: TypeString},
		{Name: "age", Type: TypeInt},
		{Name: "weight", Type: TypeFloat},
	}, props)

	for _, bad := range [][]string{
		{"age:date"},
		{"id"},
		{"name", "name:int"},
		{":int"},
	} {
		_, err = ParseProperties(bad)
		require.Error(t, err, "%q", bad)
	}
}

func TestDirection(t *testing.T) {
	require.Equal(t, DirIn, DirOut.Reverse())
	require.Equal(t, DirOut, DirIn.Reverse())
	require.Equal(t, DirBoth, DirBoth.Reverse())

	// a hop against the edge direction filters labels with an IN list
	qu, args, err := NewBuilder(DefaultDialect).Build(Select{
		Fields: []Field{Column("a", "id", "id")},
		From: []Source{Table{Name: VerticesTable, Alias: "n_0"}, Adjacency{
			From: FieldName{Table: "n_0", Name: "id"}, Dir: DirIn, Labels: []string{"knows"}, Alias: "a",
		}},
	})
	require.NoError(t, err)
	require.Equal(t, `SELECT a.id AS id FROM vertices AS n_0, LATERAL (SELECT adj_v.* FROM edges AS adj_e, vertices AS adj_v `+
		`WHERE adj_e.in_v = n_0.id AND adj_v.id = adj_e.out_v AND adj_e.label IN (?)) AS a`, qu)
	require.Equal(t, []interface{}{"knows"}, args)
}

func TestTablesQuoteKeywords(t *testing.T) {
	r := Registration{QueryDialect: DefaultDialect, NoForeignKeys: true}
	stmts := r.Tables(Schema{Vertex: []Property{{Name: "order", Type: TypeInt}, {Name: "name", Type: TypeString}}})
	require.Equal(t, "CREATE TABLE vertices (\n\tid TEXT PRIMARY KEY,\n\tlabel TEXT NOT NULL,\n\t\"order\" BIGINT,\n\tname TEXT\n);", stmts[0])
}
