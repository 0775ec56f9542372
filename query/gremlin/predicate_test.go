package gremlin

import (
	"testing"

	"github.com/cayleygraph/quad"
	"github.com/stretchr/testify/require"

	"github.com/cayleygraph/gremsql/graph/sql"
)

var predicateCases = []struct {
	name string
	p    P
	sql  string
	args []interface{}
}{
	{
		name: "eq string",
		p:    Eq(quad.String("bob")),
		sql:  `x = ?`,
		args: []interface{}{"bob"},
	},
	{
		name: "eq null",
		p:    Eq(nil),
		sql:  `x IS NULL`,
	},
	{
		name: "neq null",
		p:    Neq(nil),
		sql:  `x IS NOT NULL`,
	},
	{
		name: "gt int",
		p:    Gt(quad.Int(30)),
		sql:  `x > CAST(? AS BIGINT)`,
		args: []interface{}{int64(30)},
	},
	{
		name: "between",
		p:    Between(quad.Int(1), quad.Int(5)),
		sql:  `(x >= CAST(? AS BIGINT) AND x < CAST(? AS BIGINT))`,
		args: []interface{}{int64(1), int64(5)},
	},
	{
		name: "outside",
		p:    Outside(quad.Float(1.5), quad.Float(2.5)),
		sql:  `(x < CAST(? AS double precision) OR x > CAST(? AS double precision))`,
		args: []interface{}{1.5, 2.5},
	},
	{
		name: "within",
		p:    Within(quad.String("a"), quad.String("b")),
		sql:  `x IN (?, ?)`,
		args: []interface{}{"a", "b"},
	},
	{
		name: "within nothing",
		p:    Within(),
		sql:  `1 = 0`,
	},
	{
		name: "without nothing",
		p:    Without(),
		sql:  `1 = 1`,
	},
	{
		name: "starting with",
		p:    StartingWith("a_b%"),
		sql:  `x LIKE ? ESCAPE '!'`,
		args: []interface{}{"a!_b!%%"},
	},
	{
		name: "containing",
		p:    Containing("ar"),
		sql:  `x LIKE ? ESCAPE '!'`,
		args: []interface{}{"%ar%"},
	},
	{
		name: "not",
		p:    NotP(Lte(quad.Int(2))),
		sql:  `NOT (x <= CAST(? AS BIGINT))`,
		args: []interface{}{int64(2)},
	},
	{
		name: "and or",
		p:    AndP(Gte(quad.Int(1)), OrP(Eq(quad.String("a")), Eq(quad.String("b")))),
		sql:  `(x >= CAST(? AS BIGINT) AND (x = ? OR x = ?))`,
		args: []interface{}{int64(1), "a", "b"},
	},
}

func TestPredicateExpr(t *testing.T) {
	x := sql.FieldName{Name: "x"}
	for _, c := range predicateCases {
		t.Run(c.name, func(t *testing.T) {
			e, err := c.p.Expr(x)
			require.NoError(t, err)
			qu, args, err := sql.NewBuilder(sql.DefaultDialect).Build(e)
			require.NoError(t, err)
			require.Equal(t, c.sql, qu)
			require.Equal(t, c.args, args)
		})
	}
}

func TestPredicateInvalid(t *testing.T) {
	x := sql.FieldName{Name: "x"}
	for _, p := range []P{
		{Op: "near", Values: []quad.Value{quad.Int(1)}},
		{Op: PredGt},
		{Op: PredBetween, Values: []quad.Value{quad.Int(1)}},
		{Op: PredAnd},
		{Op: PredNot, Preds: []P{Eq(quad.Int(1)), Eq(quad.Int(2))}},
		StartingWith("a"),
	} {
		if p.Op == PredStartingWith {
			p.Values = []quad.Value{quad.Int(1)}
		}
		_, err := p.Expr(x)
		require.Error(t, err, "%v", p.Op)
		require.ErrorIs(t, err, ErrInvalidArgument)
	}
}

func TestRegexDialect(t *testing.T) {
	e, err := Regex("^a").Expr(sql.FieldName{Name: "x"})
	require.NoError(t, err)
	_, _, err = sql.NewBuilder(sql.DefaultDialect).Build(e)
	require.Error(t, err)

	d := sql.DefaultDialect
	d.RegexpOp = "~"
	qu, args, err := sql.NewBuilder(d).Build(e)
	require.NoError(t, err)
	require.Equal(t, `x ~ ?`, qu)
	require.Equal(t, []interface{}{"^a"}, args)
}

func TestPredicateJSON(t *testing.T) {
	p := AndP(Gt(quad.Int(1)), Within(quad.String("a"), quad.Float(2.5)))
	data, err := p.MarshalJSON()
	require.NoError(t, err)
	require.JSONEq(t, `{"p":"and","preds":[{"p":"gt","values":[1]},{"p":"within","values":["a",2.5]}]}`, string(data))

	var out P
	require.NoError(t, out.UnmarshalJSON(data))
	require.Equal(t, p, out)
}
