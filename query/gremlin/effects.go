package gremlin

import (
	"github.com/cayleygraph/gremsql/graph/sql"
)

// sideEffect is a collection of values stored under a key by aggregate(), store(),
// group() or groupCount(). It is computed from a snapshot of the block.
type sideEffect struct {
	blk   *block
	value sql.Expr  // collected value, for aggregate and store
	group *grouping // for group and groupCount
}

// grouping is a map of values built from rows of a block.
type grouping struct {
	key   sql.Expr
	value sql.Expr // aggregate expression
	json  bool     // aggregate returns JSON documents
}

// table returns a derived table with a single JSON column that holds the collected values.
func (e *sideEffect) table(c *Context) (*derived, string) {
	if e.group != nil {
		return c.groupTable(e.blk, e.group)
	}
	d := newDerived(c.alias("t"), e.blk)
	d.uncorrelated = true
	agg := sql.Func{Name: "COALESCE", Args: []sql.Expr{sql.JSONArrayAgg{Expr: e.value}, sql.JSONArray{}}}
	return d, d.exportExpr("fold", "fold", true, agg)
}

func (c *Context) collect(v Variable, key string) error {
	if key == "" {
		return errorf(InvalidArgument, "side effect key must be set")
	}
	if _, ok := c.effects[key]; ok {
		return errorf(InvalidArgument, "side effect %q is already defined", key)
	}
	c.effects[key] = &sideEffect{blk: c.snapshotBlock(), value: scalarOf(v)}
	return nil
}

func opAggregate(c *Context, v Variable, a Args) error {
	return c.collect(v, a.Key)
}

// effectPredicate lowers within() and without() that reference a collected side effect.
func (c *Context) effectPredicate(x sql.Expr, p P) (sql.Expr, bool) {
	if (p.Op != PredWithin && p.Op != PredWithout) || len(p.Values) != 1 {
		return nil, false
	}
	name, ok := stringValue(p.Values[0])
	if !ok {
		return nil, false
	}
	if _, bound := c.labels[name]; bound {
		return nil, false
	}
	e, ok := c.effects[name]
	if !ok || e.group != nil {
		return nil, false
	}
	q := e.blk.selectOf([]sql.Field{{Expr: e.value, Alias: colValue}})
	return sql.InQuery{Expr: x, Query: q, Not: p.Op == PredWithout}, true
}

func opCap(c *Context, v Variable, a Args) error {
	if len(a.Labels) == 0 {
		return errorf(InvalidArgument, "cap() requires at least one side effect key")
	}
	keys := append([]string(nil), a.Labels...)
	srcs := make([]source, 0, len(keys))
	vals := make([]sql.Expr, 0, len(keys))
	for _, k := range keys {
		e, ok := c.effects[k]
		if !ok {
			return errorf(InvalidArgument, "side effect %q is not defined, known: %v", k, c.SideEffects())
		}
		d, col := e.table(c)
		d.uncorrelated = true
		srcs = append(srcs, d)
		vals = append(vals, sql.FieldName{Table: d.alias, Name: col})
	}
	c.replace(srcs...)
	if len(keys) == 1 {
		c.start(c.newJSON(vals[0]))
		return nil
	}
	for i := range vals {
		vals[i] = sql.JSONValue{Expr: vals[i]}
	}
	c.start(c.newRow(keys, vals))
	return nil
}
