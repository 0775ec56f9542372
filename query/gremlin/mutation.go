package gremlin

import (
	"github.com/cayleygraph/gremsql/graph/sql"
)

// mutation is a change of the graph made by a traversal. Statements are rendered
// after the traversal is compiled, so later steps can still add columns to inserts.
type mutation interface {
	statements() []sql.Statement
}

// insertMutation adds a single vertex or edge per traverser.
// If blk is nil, a single row is inserted from constants.
type insertMutation struct {
	table string
	cols  []string
	vals  []sql.Expr
	blk   *block
}

func (m *insertMutation) get(col string) sql.Expr {
	for i, c := range m.cols {
		if c == col {
			return m.vals[i]
		}
	}
	return nil
}

func (m *insertMutation) set(col string, e sql.Expr) {
	for i, c := range m.cols {
		if c == col {
			m.vals[i] = e
			return
		}
	}
	m.cols = append(m.cols, col)
	m.vals = append(m.vals, e)
}

func (m *insertMutation) statements() []sql.Statement {
	if m.blk == nil {
		return []sql.Statement{sql.Insert{
			Table: m.table, Columns: m.cols,
			Values: [][]sql.Expr{append([]sql.Expr(nil), m.vals...)},
		}}
	}
	fields := make([]sql.Field, 0, len(m.cols))
	for i, c := range m.cols {
		fields = append(fields, sql.Field{Expr: m.vals[i], Alias: c})
	}
	return []sql.Statement{sql.Insert{
		Table: m.table, Columns: m.cols,
		Query: m.blk.selectOf(fields),
	}}
}

// selectIDs returns a condition that matches rows with ids returned by the block.
func selectIDs(blk *block, id sql.Expr) sql.Expr {
	s := blk.selectOf([]sql.Field{{Expr: id, Alias: colID}})
	// DISTINCT forces MySQL to materialize a subquery over the modified table
	s.Distinct = true
	return sql.InQuery{
		Expr:  sql.FieldName{Name: colID},
		Query: sql.IDsOf(s, "m"),
	}
}

// updateMutation changes columns of existing elements.
type updateMutation struct {
	table string
	set   []sql.Assign
	blk   *block
	id    sql.Expr
}

func (m *updateMutation) statements() []sql.Statement {
	return []sql.Statement{sql.Update{
		Table: m.table, Set: m.set,
		Where: []sql.Expr{selectIDs(m.blk, m.id)},
	}}
}

// deleteMutation removes elements. Edges of deleted vertices are removed as well,
// even if the database has no foreign keys.
type deleteMutation struct {
	vertex bool
	blk    *block
	id     sql.Expr
}

func (m *deleteMutation) statements() []sql.Statement {
	if !m.vertex {
		return []sql.Statement{sql.Delete{
			Table: sql.EdgesTable, Where: []sql.Expr{selectIDs(m.blk, m.id)},
		}}
	}
	ids := sql.Select{
		Fields: []sql.Field{sql.Column("", colID, "")},
		From:   []sql.Source{sql.Table{Name: sql.VerticesTable}},
	}
	return []sql.Statement{
		sql.Delete{Table: sql.VerticesTable, Where: []sql.Expr{selectIDs(m.blk, m.id)}},
		sql.Delete{Table: sql.EdgesTable, Where: []sql.Expr{sql.Or{
			sql.InQuery{Expr: sql.FieldName{Name: colOutV}, Query: ids, Not: true},
			sql.InQuery{Expr: sql.FieldName{Name: colInV}, Query: ids, Not: true},
		}}},
	}
}

func (c *Context) addMutation(m mutation) {
	c.mutations = append(c.mutations, m)
}
