package gremlin

import (
	"github.com/cayleygraph/gremsql/graph/sql"
)

func opIdentity(c *Context, v Variable, a Args) error {
	return nil
}

// unionKind returns a kind of variable that represents results of all branches.
func unionKind(arms []*Context) (Kind, error) {
	var kind Kind
	for i, arm := range arms {
		if arm.pivot == nil {
			return 0, errMissingPivot()
		}
		k := arm.pivot.Kind()
		switch {
		case k.IsVertex():
			k = VertexTable
		case k.IsEdge():
			k = EdgeTable
		}
		if i == 0 {
			kind = k
		} else if k != kind {
			return 0, errorf(UnsupportedOperation, "branches return different kinds: %s and %s", kind, k)
		}
	}
	return kind, nil
}

// unite concatenates results of branches compiled from the pivot. Each branch becomes a
// separate arm of a derived table that repeats the current block, so branches are not correlated.
// Conds are extra conditions for each arm.
func (c *Context) unite(arms []*Context, conds [][]sql.Expr) error {
	if len(arms) == 0 {
		c.addWhere(sql.False)
		return nil
	}
	kind, err := unionKind(arms)
	if err != nil {
		return err
	}
	blocks := make([]*block, 0, len(arms))
	for i, arm := range arms {
		// modifiers of a branch apply to each traverser separately
		arm.prepare()
		b := c.blk.merge(arm.blk)
		if i < len(conds) {
			b.where = append(b.where, conds[i]...)
		}
		blocks = append(blocks, b)
	}
	d := newDerived(c.alias("t"), blocks...)
	u := &unionVar{varBase: varBase{kind: kind, name: c.alias("u")}, d: d, arms: arms}
	c.sealWith(d)
	c.register(u)
	c.hop(c.pivot, nil, u)
	return nil
}

func opUnion(c *Context, v Variable, a Args) error {
	arms, err := c.compileBranches(a.Branches)
	if err != nil {
		return err
	}
	return c.unite(arms, nil)
}

// coalesce selects the first branch that returns any results.
func (c *Context) coalesce(ts []Traversal) error {
	arms, err := c.compileBranches(ts)
	if err != nil {
		return err
	}
	conds := make([][]sql.Expr, len(arms))
	for i := range arms {
		arms[i].prepare()
		for j := 0; j < i; j++ {
			conds[i] = append(conds[i], existsExpr{blk: arms[j].blk, not: true})
		}
	}
	return c.unite(arms, conds)
}

func opCoalesce(c *Context, v Variable, a Args) error {
	return c.coalesce(a.Branches)
}

func opOptional(c *Context, v Variable, a Args) error {
	return c.coalesce([]Traversal{a.Traversal, nil})
}

func opChoose(c *Context, v Variable, a Args) error {
	if len(a.Options) != 0 {
		return c.chooseOption(v, a)
	}
	if len(a.Branches) != 1 {
		return errorf(InvalidArgument, "choose() requires a branch for a true condition")
	}
	var (
		cond sql.Expr
		err  error
	)
	switch {
	case a.Pred != nil:
		cond, err = a.Pred.Expr(scalarOf(v))
	case a.Traversal != nil:
		cond, err = c.filter(v, a.Traversal)
	default:
		err = errorf(InvalidArgument, "choose() requires a condition")
	}
	if err != nil {
		return err
	}
	arms, err := c.compileBranches([]Traversal{a.Branches[0], a.Else})
	if err != nil {
		return err
	}
	// NULL conditions select the false branch
	notCond := sql.Not{Expr: sql.Func{Name: "COALESCE", Args: []sql.Expr{cond, sql.False}}}
	return c.unite(arms, [][]sql.Expr{{cond}, {notCond}})
}

func (c *Context) chooseOption(v Variable, a Args) error {
	if a.Traversal == nil {
		return errorf(InvalidArgument, "choose() with options requires a key traversal")
	}
	key, err := c.valueOf(v, a.Traversal)
	if err != nil {
		return err
	}
	var (
		ts    []Traversal
		conds [][]sql.Expr
		keys  []sql.Expr
		none  = -1
	)
	for i, o := range a.Options {
		if o.None {
			if none >= 0 {
				return errorf(InvalidArgument, "choose() accepts a single none option")
			}
			none = i
			continue
		}
		kv, err := valueExpr(o.Key)
		if err != nil {
			return err
		}
		keys = append(keys, kv)
		ts = append(ts, o.Traversal)
		conds = append(conds, []sql.Expr{sql.Eq(key, kv)})
	}
	if none >= 0 {
		ts = append(ts, a.Options[none].Traversal)
		conds = append(conds, []sql.Expr{sql.Or{
			sql.IsNull{Expr: key},
			sql.In{Expr: key, Values: keys, Not: true},
		}})
	}
	arms, err := c.compileBranches(ts)
	if err != nil {
		return err
	}
	return c.unite(arms, conds)
}

func opRepeat(c *Context, v Variable, a Args) error {
	if a.Loop {
		return errorf(UnsupportedOperation, "repeat() supports only a fixed number of iterations")
	}
	if a.Times < 1 {
		return errorf(InvalidArgument, "repeat() requires times() of at least 1")
	}
	for i := 0; i < a.Times; i++ {
		if err := c.Apply(a.Traversal); err != nil {
			return err
		}
	}
	return nil
}

// opMap replaces each traverser with the first result of the traversal.
func opMap(c *Context, v Variable, a Args) error {
	nc := c.branchAt(v)
	if err := nc.Apply(a.Traversal); err != nil {
		return err
	}
	p := nc.pivot
	if p == nil {
		return errMissingPivot()
	}
	switch k := p.Kind(); {
	case k.IsVertex():
		nv := c.newVirtual(scalarExpr{blk: nc.blk, value: p.Column(colID)})
		c.addWhere(sql.IsNull{Expr: nv.Column(colID), Not: true})
		c.hop(v, nil, nv)
	case k.IsEdge():
		e := c.newTable(BoundEdge)
		c.addSource(e)
		c.addWhere(sql.Eq(e.Column(colID), scalarExpr{blk: nc.blk, value: p.Column(colID)}))
		c.hop(v, nil, e)
	case k == Value:
		val := scalarExpr{blk: nc.blk, value: scalarOf(p)}
		var nv *valueVar
		if isJSON(p) {
			nv = c.newJSON(val)
		} else {
			nv = c.newValue(val)
		}
		c.addWhere(sql.IsNull{Expr: nv.Column(colValue), Not: true})
		c.hop(v, nil, nv)
	default:
		nc.blk.limited, nc.blk.limit = true, 1
		return c.unite([]*Context{nc}, nil)
	}
	return nil
}

func opFlatMap(c *Context, v Variable, a Args) error {
	arm, err := c.CompileBranch(a.Traversal)
	if err != nil {
		return err
	}
	return c.unite([]*Context{arm}, nil)
}

func opSideEffect(c *Context, v Variable, a Args) error {
	nc, err := c.CompileBranch(a.Traversal)
	if err != nil {
		return err
	}
	// side effects are global to the traversal
	for k, e := range nc.effects {
		c.effects[k] = e
	}
	return nil
}
