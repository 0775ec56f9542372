package gremlin

import (
	"github.com/cayleygraph/gremsql/graph/sql"
)

const defaultVertexLabel = "vertex"

// constSource is a table of constant values with a single column.
type constSource struct {
	alias  string
	column string
	values []sql.Expr
}

func (s *constSource) render(bool) ([]sql.Source, []sql.Expr) {
	var q sql.Query
	switch len(s.values) {
	case 0:
		q = sql.Select{
			Fields: []sql.Field{{Expr: sql.Null, Alias: s.column}},
			Where:  []sql.Expr{sql.False},
		}
	case 1:
		q = sql.Select{Fields: []sql.Field{{Expr: s.values[0], Alias: s.column}}}
	default:
		qs := make([]sql.Query, 0, len(s.values))
		for _, v := range s.values {
			qs = append(qs, sql.Select{Fields: []sql.Field{{Expr: v, Alias: s.column}}})
		}
		q = sql.Union{All: true, Queries: qs}
	}
	return []sql.Source{sql.Subquery{Query: q, Alias: s.alias}}, nil
}

func (s *constSource) Column() sql.Expr {
	return sql.FieldName{Table: s.alias, Name: s.column}
}

func (c *Context) newConst(column string, values []sql.Expr) *constSource {
	s := &constSource{alias: c.alias("t"), column: column, values: values}
	c.addSource(s)
	return s
}

func (c *Context) newAdded(kind Kind, ins *insertMutation) *addedVar {
	v := &addedVar{varBase: varBase{kind: kind}, ins: ins}
	if kind.IsEdge() {
		v.name = c.alias("e")
	} else {
		v.name = c.alias("n")
	}
	c.register(v)
	return v
}

// newScan adds a new scan of a graph table, optionally filtered by ids.
func (c *Context) newScan(kind Kind, a Args) (*tableVar, error) {
	v := c.newTable(kind)
	c.addSource(v)
	if len(a.Values) != 0 {
		ids, err := idParams(a.Values)
		if err != nil {
			return nil, err
		}
		c.addWhere(sql.In{Expr: v.Column(colID), Values: ids})
	}
	return v, nil
}

func startV(c *Context, a Args) error {
	v, err := c.newScan(FreeVertex, a)
	if err != nil {
		return err
	}
	c.start(v)
	return nil
}

func startE(c *Context, a Args) error {
	v, err := c.newScan(FreeEdge, a)
	if err != nil {
		return err
	}
	c.start(v)
	return nil
}

// scanOp continues the traversal with an unrelated scan, producing a cross join.
func scanOp(kind Kind) opFunc {
	return func(c *Context, v Variable, a Args) error {
		nv, err := c.newScan(kind, a)
		if err != nil {
			return err
		}
		c.hop(v, nil, nv)
		return nil
	}
}

func startAddV(c *Context, a Args) error {
	label := a.Label
	if label == "" {
		label = defaultVertexLabel
	}
	ins := &insertMutation{
		table: sql.VerticesTable,
		cols:  []string{colID, colLabel},
		vals:  []sql.Expr{sql.Param{Value: c.opts.newID()}, sql.Param{Value: label}},
	}
	c.addMutation(ins)
	c.start(c.newAdded(AddedVertex, ins))
	return nil
}

// derivedID generates ids for elements added once per traverser.
func (c *Context) derivedID(v Variable) sql.Expr {
	return sql.Concat{sql.Param{Value: c.opts.newID() + ":"}, sql.AsText{Expr: scalarOf(v)}}
}

func opAddV(c *Context, v Variable, a Args) error {
	label := a.Label
	if label == "" {
		label = defaultVertexLabel
	}
	ins := &insertMutation{
		table: sql.VerticesTable,
		cols:  []string{colID, colLabel},
		vals:  []sql.Expr{c.derivedID(v), sql.Param{Value: label}},
		blk:   c.snapshotBlock(),
	}
	c.addMutation(ins)
	c.hop(v, nil, c.newAdded(AddedVertex, ins))
	return nil
}

// endpoint resolves a vertex referenced by from() or to() to an id expression.
// The def variable is used if endpoint is not set.
func (c *Context) endpoint(e Endpoint, def Variable) (sql.Expr, error) {
	switch {
	case e.Label != "":
		v, ok := c.labels[e.Label]
		if !ok {
			return nil, errorf(InvalidArgument, "label %q is not bound", e.Label)
		}
		if !v.Kind().IsVertex() {
			return nil, errorf(InvalidArgument, "label %q is bound to %s, not a vertex", e.Label, v.Kind())
		}
		return v.Column(colID), nil
	case e.Traversal != nil:
		if def != nil {
			return c.valueOf(def, e.Traversal)
		}
		nc := c.Branch()
		if err := nc.Apply(e.Traversal); err != nil {
			return nil, err
		}
		if nc.pivot == nil || !nc.pivot.Kind().IsVertex() {
			return nil, errorf(InvalidArgument, "endpoint traversal must return vertices")
		}
		return scalarExpr{blk: nc.blk, value: nc.pivot.Column(colID)}, nil
	case def != nil:
		return def.Column(colID), nil
	}
	return nil, errorf(InvalidArgument, "both from() and to() must be set for a new edge")
}

func (c *Context) edgeInsert(v Variable, a Args) (*insertMutation, error) {
	if a.Label == "" {
		return nil, errorf(InvalidArgument, "edge label must be set")
	}
	var def Variable
	if v != nil && v.Kind().IsVertex() {
		def = v
	}
	from, err := c.endpoint(a.From, def)
	if err != nil {
		return nil, err
	}
	to, err := c.endpoint(a.To, def)
	if err != nil {
		return nil, err
	}
	ins := &insertMutation{
		table: sql.EdgesTable,
		cols:  []string{colID, colLabel, colOutV, colInV},
		vals:  []sql.Expr{nil, sql.Param{Value: a.Label}, from, to},
	}
	if v == nil {
		ins.vals[0] = sql.Param{Value: c.opts.newID()}
	} else {
		ins.vals[0] = c.derivedID(v)
		ins.blk = c.snapshotBlock()
	}
	return ins, nil
}

func startAddE(c *Context, a Args) error {
	ins, err := c.edgeInsert(nil, a)
	if err != nil {
		return err
	}
	c.addMutation(ins)
	c.start(c.newAdded(AddedEdge, ins))
	return nil
}

func opAddE(c *Context, v Variable, a Args) error {
	ins, err := c.edgeInsert(v, a)
	if err != nil {
		return err
	}
	c.addMutation(ins)
	c.hop(v, nil, c.newAdded(AddedEdge, ins))
	return nil
}

func startInject(c *Context, a Args) error {
	vals, err := valueExprs(a.Values)
	if err != nil {
		return err
	}
	src := c.newConst(colValue, vals)
	c.start(c.newValue(src.Column()))
	return nil
}
