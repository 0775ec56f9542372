package gremlin

import (
	"github.com/cayleygraph/quad"

	"github.com/cayleygraph/gremsql/graph/sql"
)

var valueOps = map[Op]opFunc{
	OpIs:   opIs,
	OpSum:  aggOp(OpSum),
	OpMin:  aggOp(OpMin),
	OpMax:  aggOp(OpMax),
	OpMean: aggOp(OpMean),
}

func opIs(c *Context, v Variable, a Args) error {
	if a.Pred == nil {
		return errorf(InvalidArgument, "is() requires a value or a predicate")
	}
	e, err := a.Pred.Expr(v.Column(colValue))
	if err != nil {
		return err
	}
	c.addWhere(e)
	return nil
}

// labelVar returns a variable bound to a label.
func (c *Context) labelVar(name string) (Variable, error) {
	lv, ok := c.labels[name]
	if !ok {
		return nil, errorf(InvalidArgument, "label %q is not bound", name)
	}
	return lv, nil
}

func opWhere(c *Context, v Variable, a Args) error {
	if a.Traversal != nil {
		if isPattern(a.Traversal) {
			return c.matchWhere(a.Traversal)
		}
		e, err := c.filter(v, a.Traversal)
		if err != nil {
			return err
		}
		c.addWhere(e)
		return nil
	}
	if a.Pred == nil {
		return errorf(InvalidArgument, "where() requires a predicate or a traversal")
	}
	if err := a.Pred.validate(); err != nil {
		return err
	}
	left := v
	if a.Label != "" {
		lv, err := c.labelVar(a.Label)
		if err != nil {
			return err
		}
		left = lv
	}
	if e, ok := c.effectPredicate(scalarOf(left), *a.Pred); ok {
		c.addWhere(e)
		return nil
	}
	// where(...).by(k) compares values of the key on both sides
	var by By
	if len(a.By) != 0 {
		by = a.By[0]
	}
	x, err := c.byValue(left, by)
	if err != nil {
		return err
	}
	e, err := a.Pred.expr(x, func(q quad.Value) (sql.Expr, error) {
		name, ok := stringValue(q)
		if !ok {
			return nil, errorf(InvalidArgument, "where() predicates must reference labels, got %T", q)
		}
		lv, err := c.labelVar(name)
		if err != nil {
			return nil, err
		}
		return c.byValue(lv, by)
	})
	if err != nil {
		return err
	}
	c.addWhere(e)
	return nil
}

func opAnd(c *Context, v Variable, a Args) error {
	var conds []sql.Expr
	for _, t := range a.Branches {
		e, err := c.filter(v, t)
		if err != nil {
			return err
		}
		conds = append(conds, e)
	}
	c.addWhere(conds...)
	return nil
}

func opOr(c *Context, v Variable, a Args) error {
	conds := make(sql.Or, 0, len(a.Branches))
	for _, t := range a.Branches {
		e, err := c.filter(v, t)
		if err != nil {
			return err
		}
		conds = append(conds, e)
	}
	c.addWhere(conds)
	return nil
}

func opNot(c *Context, v Variable, a Args) error {
	nc := c.branchAt(v)
	if err := nc.Apply(a.Traversal); err != nil {
		return err
	}
	c.addWhere(existsExpr{blk: nc.blk, not: true})
	return nil
}

func opDedup(c *Context, v Variable, a Args) error {
	var keys []sql.Expr
	if len(a.Labels) == 0 {
		keys = identityOf(v)
	}
	for _, name := range a.Labels {
		lv, err := c.labelVar(name)
		if err != nil {
			return err
		}
		keys = append(keys, identityOf(lv)...)
	}
	c.sealGrouped(keys)
	return nil
}

func opRange(c *Context, v Variable, a Args) error {
	if a.Low < 0 {
		return errorf(InvalidArgument, "range() low bound must not be negative")
	}
	if a.High >= 0 && a.High < a.Low {
		return errorf(InvalidArgument, "range() high bound is less than the low bound")
	}
	c.blk.offset = a.Low
	if a.High >= 0 {
		c.blk.limited, c.blk.limit = true, a.High-a.Low
	}
	return nil
}

// defaultOrder returns sorting keys of the block, or the identity of the pivot if there are none.
func (c *Context) defaultOrder(v Variable) []OrderKey {
	if len(c.blk.order) != 0 {
		return c.blk.order
	}
	var keys []OrderKey
	for _, e := range identityOf(v) {
		keys = append(keys, OrderKey{Expr: e, Order: Incr})
	}
	return keys
}

func opTail(c *Context, v Variable, a Args) error {
	if a.High < 0 {
		return errorf(InvalidArgument, "tail() requires a non-negative count")
	}
	order := c.defaultOrder(v)
	rev := make([]OrderKey, 0, len(order))
	for _, k := range order {
		rev = append(rev, k.reverse())
	}
	c.blk.order = rev
	c.blk.limited, c.blk.limit = true, a.High
	c.seal()
	for i, k := range c.blk.order {
		c.blk.order[i] = k.reverse()
	}
	return nil
}

func opSample(c *Context, v Variable, a Args) error {
	if a.High < 0 {
		return errorf(InvalidArgument, "sample() requires a non-negative count")
	}
	c.blk.order = []OrderKey{{Order: Shuffle}}
	c.blk.limited, c.blk.limit = true, a.High
	c.seal()
	return nil
}

// pathElements returns variables of every element of the path, in order.
func (c *Context) pathElements() []Variable {
	var out []Variable
	if c.origin != nil {
		out = append(out, c.origin)
	}
	for _, t := range c.path {
		out = append(out, t.Sink)
	}
	return out
}

func category(v Variable) int {
	switch k := v.Kind(); {
	case k.IsVertex():
		return 1
	case k.IsEdge():
		return 2
	case k == Row:
		return 3
	case k == PropertyRow:
		return 4
	}
	return 5
}

// pathPairs returns equality conditions for every pair of comparable path elements.
func (c *Context) pathPairs() []sql.Expr {
	elems := c.pathElements()
	var out []sql.Expr
	for i := range elems {
		for j := i + 1; j < len(elems); j++ {
			if category(elems[i]) != category(elems[j]) {
				continue
			}
			out = append(out, identityEq(elems[i], elems[j]))
		}
	}
	return out
}

func opSimplePath(c *Context, v Variable, a Args) error {
	for _, e := range c.pathPairs() {
		c.addWhere(sql.Not{Expr: e})
	}
	return nil
}

func opCyclicPath(c *Context, v Variable, a Args) error {
	c.addWhere(sql.Or(c.pathPairs()))
	return nil
}
