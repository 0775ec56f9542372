package gremlin

import (
	"github.com/cayleygraph/gremsql/graph/sql"
)

// Reducer is implemented by steps that aggregate all traversers into a single value.
// Group uses it to apply the aggregate of a by() traversal to each group.
type Reducer interface {
	Step
	Reduce() Op
}

var aggFuncs = map[Op]string{
	OpSum:  "SUM",
	OpMin:  "MIN",
	OpMax:  "MAX",
	OpMean: "AVG",
}

func opCount(c *Context, v Variable, a Args) error {
	d := c.reduce(nil)
	col := d.exportExpr("count", "count", true, sql.Count())
	c.start(c.newValue(sql.FieldName{Table: d.alias, Name: col}))
	return nil
}

func aggOp(op Op) opFunc {
	return func(c *Context, v Variable, a Args) error {
		val := v.Column(colValue)
		d := c.reduce(nil)
		col := d.exportExpr(string(op), string(op), true, sql.Func{Name: aggFuncs[op], Args: []sql.Expr{val}})
		nv := c.newValue(sql.FieldName{Table: d.alias, Name: col})
		c.start(nv)
		// aggregates of no values are NULL; such traversals return nothing
		c.addWhere(sql.IsNull{Expr: nv.Column(colValue), Not: true})
		return nil
	}
}

// folded remembers the state of the context before fold(), so unfold() can undo it.
type folded struct {
	snap   Snapshot
	blk    *block
	result Variable
}

func foldOf(e sql.Expr) sql.Expr {
	return sql.Func{Name: "COALESCE", Args: []sql.Expr{sql.JSONArrayAgg{Expr: e}, sql.JSONArray{}}}
}

func opFold(c *Context, v Variable, a Args) error {
	snap := c.Snapshot()
	val := scalarOf(v)
	d := c.reduce(nil)
	col := d.exportExpr("fold", "fold", true, foldOf(val))
	nv := c.newJSON(sql.FieldName{Table: d.alias, Name: col})
	c.start(nv)
	c.folded = &folded{snap: snap, blk: c.blk, result: nv}
	return nil
}

func opUnfold(c *Context, v Variable, a Args) error {
	if f := c.folded; f != nil && f.result == v && f.blk == c.blk && len(c.blk.where) == 0 {
		c.Restore(f.snap)
		c.folded = nil
		return nil
	}
	switch k := v.Kind(); {
	case k.IsElement():
		return nil
	case k == Value && !isJSON(v):
		return nil
	}
	return errorf(UnsupportedOperation, "unfold() is supported only directly after fold()")
}

// groupTable builds a table with a single row and a single JSON column,
// that maps each key to the aggregate of values with that key.
func (c *Context) groupTable(blk *block, g *grouping) (*derived, string) {
	blk = blk.clone()
	blk.where = append(blk.where, sql.IsNull{Expr: g.key, Not: true})
	inner := newDerived(c.alias("t"), blk)
	inner.groupBy = []sql.Expr{g.key}
	k := inner.exportExpr("group.key", "k", false, g.key)
	v := inner.exportExpr("group.value", "v", true, g.value)
	var val sql.Expr = sql.FieldName{Table: inner.alias, Name: v}
	if g.json {
		val = sql.JSONValue{Expr: val}
	}
	outer := newDerived(c.alias("t"), &block{from: []source{inner}})
	obj := sql.Func{Name: "COALESCE", Args: []sql.Expr{
		sql.JSONObjectAgg{Key: sql.AsText{Expr: sql.FieldName{Table: inner.alias, Name: k}}, Value: val},
		sql.JSONObject{},
	}}
	return outer, outer.exportExpr("group", "grouped", true, obj)
}

// groupValue returns the aggregate for values of a group, as set by the second by() of group().
func (c *Context) groupValue(v Variable, by *By) (sql.Expr, bool, error) {
	if by == nil {
		return foldOf(scalarOf(v)), true, nil
	}
	if err := by.validate(); err != nil {
		return nil, false, err
	}
	if by.Key != "" {
		val, err := c.byValue(v, *by)
		if err != nil {
			return nil, false, err
		}
		return foldOf(val), true, nil
	}
	t := by.Traversal
	var r Reducer
	if n := len(t); n != 0 {
		r, _ = t[n-1].(Reducer)
	}
	if r == nil {
		val, err := c.valueOf(v, t)
		if err != nil {
			return nil, false, err
		}
		return foldOf(val), true, nil
	}
	op, prefix := r.Reduce(), t[:len(t)-1]
	switch op {
	case OpCount:
		if len(prefix) == 0 {
			return sql.Count(), false, nil
		}
		nc := c.branchAt(v)
		if err := nc.Apply(prefix); err != nil {
			return nil, false, err
		}
		per := scalarExpr{blk: nc.blk, value: sql.Count()}
		return sql.Func{Name: "SUM", Args: []sql.Expr{per}}, false, nil
	case OpFold:
		val, err := c.valueOf(v, prefix)
		if err != nil {
			return nil, false, err
		}
		return foldOf(val), true, nil
	}
	fn, ok := aggFuncs[op]
	if !ok {
		return nil, false, errorf(UnsupportedOperation, "%s cannot aggregate groups", op)
	}
	if len(prefix) == 0 {
		return sql.Func{Name: fn, Args: []sql.Expr{scalarOf(v)}}, false, nil
	}
	nc := c.branchAt(v)
	if err := nc.Apply(prefix); err != nil {
		return nil, false, err
	}
	if nc.pivot == nil {
		return nil, false, errMissingPivot()
	}
	// aggregate of each element, then of the group
	per := scalarExpr{blk: nc.blk, value: sql.Func{Name: fn, Args: []sql.Expr{scalarOf(nc.pivot)}}}
	return sql.Func{Name: fn, Args: []sql.Expr{per}}, false, nil
}

func (c *Context) grouping(v Variable, a Args, count bool) (*grouping, error) {
	if len(a.By) > 2 || (count && len(a.By) > 1) {
		return nil, errorf(InvalidArgument, "too many by() modulators")
	}
	var kb By
	if len(a.By) != 0 {
		kb = a.By[0]
	}
	key, err := c.byValue(v, kb)
	if err != nil {
		return nil, err
	}
	g := &grouping{key: key}
	if count {
		g.value = sql.Count()
		return g, nil
	}
	var vb *By
	if len(a.By) == 2 {
		vb = &a.By[1]
	}
	g.value, g.json, err = c.groupValue(v, vb)
	if err != nil {
		return nil, err
	}
	return g, nil
}

func groupOp(count bool) opFunc {
	return func(c *Context, v Variable, a Args) error {
		g, err := c.grouping(v, a, count)
		if err != nil {
			return err
		}
		if a.Key != "" {
			if _, ok := c.effects[a.Key]; ok {
				return errorf(InvalidArgument, "side effect %q is already defined", a.Key)
			}
			c.effects[a.Key] = &sideEffect{blk: c.snapshotBlock(), group: g}
			return nil
		}
		c.prepare()
		d, col := c.groupTable(c.blk, g)
		c.replace(d)
		c.start(c.newJSON(sql.FieldName{Table: d.alias, Name: col}))
		return nil
	}
}

func opOrder(c *Context, v Variable, a Args) error {
	var keys []OrderKey
	for _, by := range a.By {
		if err := by.validate(); err != nil {
			return err
		}
		if by.Order == Shuffle {
			keys = append(keys, OrderKey{Order: Shuffle})
			continue
		}
		e, err := c.byValue(v, by)
		if err != nil {
			return err
		}
		order := by.Order
		if order == "" {
			order = Incr
		}
		keys = append(keys, OrderKey{Expr: e, Order: order})
	}
	if len(a.By) == 0 {
		for _, e := range identityOf(v) {
			keys = append(keys, OrderKey{Expr: e, Order: Incr})
		}
	}
	c.blk.order = keys
	return nil
}

func opPath(c *Context, v Variable, a Args) error {
	elems := c.pathElements()
	vals := make(sql.JSONArray, 0, len(elems))
	for i, e := range elems {
		var by By
		if len(a.By) != 0 {
			by = a.By[i%len(a.By)]
		}
		val, err := c.byValue(e, by)
		if err != nil {
			return err
		}
		vals = append(vals, val)
	}
	c.hop(v, nil, c.newJSON(vals))
	return nil
}

func opConstant(c *Context, v Variable, a Args) error {
	e, err := valueExpr(a.Value)
	if err != nil {
		return err
	}
	c.hop(v, nil, c.newValue(e))
	return nil
}
