package gremlin

import (
	"github.com/cayleygraph/gremsql/graph/sql"
)

var vertexOps = map[Op]opFunc{
	OpOut:   joinHop(sql.DirOut, false),
	OpIn:    joinHop(sql.DirIn, false),
	OpBoth:  joinHop(sql.DirBoth, false),
	OpOutE:  joinHop(sql.DirOut, true),
	OpInE:   joinHop(sql.DirIn, true),
	OpBothE: joinHop(sql.DirBoth, true),
}

// Vertices returned by table-valued sources always hop with adjacency functions.
var tableVertexOps = map[Op]opFunc{
	OpOut:   adjacencyHop(sql.DirOut, false),
	OpIn:    adjacencyHop(sql.DirIn, false),
	OpBoth:  adjacencyHop(sql.DirBoth, false),
	OpOutE:  adjacencyHop(sql.DirOut, true),
	OpInE:   adjacencyHop(sql.DirIn, true),
	OpBothE: adjacencyHop(sql.DirBoth, true),
}

var edgeOps = map[Op]opFunc{
	OpOutV:   endpointHop(colOutV),
	OpInV:    endpointHop(colInV),
	OpBothV:  opBothV,
	OpOtherV: opOtherV,
}

func nearCol(d sql.Direction) string {
	if d == sql.DirIn {
		return colInV
	}
	return colOutV
}

func farCol(d sql.Direction) string {
	if d == sql.DirIn {
		return colOutV
	}
	return colInV
}

// joinHop lowers a hop to a join of the edges table, and the vertices table unless edges are returned.
func joinHop(dir sql.Direction, edges bool) opFunc {
	return func(c *Context, v Variable, a Args) error {
		if c.opts.TableFunctions {
			return c.adjacencyHop(v, dir, a.Labels, edges)
		}
		id := v.Column(colID)
		e := c.newTable(BoundEdge)
		e.dir = dir
		c.addSource(e)
		if dir == sql.DirBoth {
			c.addWhere(sql.Or{sql.Eq(e.Column(colOutV), id), sql.Eq(e.Column(colInV), id)})
		} else {
			c.addWhere(sql.Eq(e.Column(nearCol(dir)), id))
		}
		if len(a.Labels) != 0 {
			c.addWhere(sql.In{Expr: e.Column(colLabel), Values: sql.Params(a.Labels)})
		}
		if edges {
			c.hop(v, nil, e)
			return nil
		}
		var far sql.Expr
		if dir == sql.DirBoth {
			far = sql.Case{
				When: []sql.When{{Cond: sql.Eq(e.Column(colOutV), id), Then: e.Column(colInV)}},
				Else: e.Column(colOutV),
			}
		} else {
			far = e.Column(farCol(dir))
		}
		n := c.newTable(BoundVertex)
		c.addSource(n)
		c.addWhere(sql.Eq(n.Column(colID), far))
		c.hop(v, e, n)
		return nil
	}
}

func adjacencyHop(dir sql.Direction, edges bool) opFunc {
	return func(c *Context, v Variable, a Args) error {
		return c.adjacencyHop(v, dir, a.Labels, edges)
	}
}

func (c *Context) adjacencyHop(v Variable, dir sql.Direction, labels []string, edges bool) error {
	av := &adjacencyVar{varBase: varBase{kind: VertexTable, name: c.alias("n")}}
	if edges {
		av.kind, av.name = EdgeTable, c.alias("e")
	}
	av.adj = sql.Adjacency{
		From: v.Column(colID), Dir: dir, Labels: labels,
		Edges: edges, Alias: av.name,
	}
	c.register(av)
	c.addSource(av)
	c.hop(v, nil, av)
	return nil
}

func (c *Context) newVirtual(id sql.Expr) *virtualVar {
	v := &virtualVar{varBase: varBase{kind: VirtualVertex, name: c.alias("n")}, id: id}
	c.register(v)
	c.addSource(v)
	return v
}

func endpointHop(col string) opFunc {
	return func(c *Context, e Variable, a Args) error {
		c.hop(e, nil, c.newVirtual(e.Column(col)))
		return nil
	}
}

func opBothV(c *Context, e Variable, a Args) error {
	dirs := c.newConst("dir", []sql.Expr{sql.String(sql.DirOut), sql.String(sql.DirIn)})
	id := sql.Case{
		When: []sql.When{{Cond: sql.Eq(dirs.Column(), sql.String(sql.DirOut)), Then: e.Column(colOutV)}},
		Else: e.Column(colInV),
	}
	c.hop(e, nil, c.newVirtual(id))
	return nil
}

// opOtherV returns the endpoint of an edge that differs from the vertex the edge was reached from.
func opOtherV(c *Context, e Variable, a Args) error {
	var from Variable
	for i := len(c.path) - 1; i >= 0; i-- {
		t := c.path[i]
		if t.Sink == e || t.Edge == e {
			from = t.Source
			break
		}
	}
	if from == nil || !from.Kind().IsVertex() {
		return errorf(UnsupportedOperation, "otherV requires an edge reached from a vertex")
	}
	id := from.Column(colID)
	other := sql.Case{
		When: []sql.When{{Cond: sql.Eq(e.Column(colOutV), id), Then: e.Column(colInV)}},
		Else: e.Column(colOutV),
	}
	c.hop(e, nil, c.newVirtual(other))
	return nil
}
