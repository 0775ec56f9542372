package gremlin

import (
	"github.com/cayleygraph/gremsql/graph/sql"
)

// Plan assembles the compiled traversal into statements. Mutations are executed
// in the order the steps were compiled, followed by the query that returns the pivot.
func (c *Context) Plan() (*sql.Plan, error) {
	if c.pivot == nil {
		return nil, errMissingPivot()
	}
	cols := columnsOf(c.pivot)
	fields := make([]sql.Field, 0, len(cols))
	for _, name := range cols {
		fields = append(fields, sql.Field{Expr: c.pivot.Column(name), Alias: name})
	}
	p := &sql.Plan{Columns: append([]string(nil), cols...)}
	for _, m := range c.mutations {
		p.Mutations = append(p.Mutations, m.statements()...)
	}
	p.Query = c.blk.query(fields)
	return p, nil
}
