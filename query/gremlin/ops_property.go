package gremlin

import (
	"github.com/cayleygraph/quad"

	"github.com/cayleygraph/gremsql/graph/sql"
)

var elementOps = map[Op]opFunc{
	OpHas:        opHas,
	OpHasLabel:   opHasLabel,
	OpHasID:      opHasID,
	OpHasNot:     opHasNot,
	OpValues:     opValues,
	OpProperties: opProperties,
	OpID:         columnOp(colID),
	OpLabel:      columnOp(colLabel),
	OpValueMap:   opValueMap,
	OpProperty:   opUpdateProperty,
	OpDrop:       opDropElement,
}

var addedOps = map[Op]opFunc{
	OpProperty: opSetProperty,
}

var propertyOps = map[Op]opFunc{
	OpKey:   columnOp(colKey),
	OpValue: columnOp(colValue),
	OpDrop:  opDropProperty,
}

func elementWord(v Variable) string {
	if v.Kind().IsVertex() {
		return "vertex"
	}
	return "edge"
}

func tableOf(v Variable) string {
	if v.Kind().IsVertex() {
		return sql.VerticesTable
	}
	return sql.EdgesTable
}

// property returns a column of an element, checking the property name against the schema.
func (c *Context) property(v Variable, key string) (sql.Expr, error) {
	if key == "" {
		return nil, errorf(InvalidArgument, "property key must be set")
	}
	if _, ok := c.opts.propertyType(v.Kind().IsVertex(), key); !ok {
		return nil, errorf(InvalidArgument, "unknown %s property: %q", elementWord(v), key)
	}
	return v.Column(key), nil
}

// propertyKeys returns requested keys, or all known properties if none are given.
func (c *Context) propertyKeys(v Variable, keys []string) ([]string, error) {
	if len(keys) != 0 {
		return keys, nil
	}
	keys = c.opts.properties(v.Kind().IsVertex())
	if len(keys) == 0 {
		return nil, errorf(InvalidArgument, "property keys must be listed when the schema is empty")
	}
	return keys, nil
}

func idConv(v quad.Value) (sql.Expr, error) {
	s, err := idString(v)
	if err != nil {
		return nil, err
	}
	return sql.Param{Value: s}, nil
}

func opHas(c *Context, v Variable, a Args) error {
	var conds []sql.Expr
	if a.Label != "" {
		conds = append(conds, sql.Eq(v.Column(colLabel), sql.Param{Value: a.Label}))
	}
	col, err := c.property(v, a.Key)
	if err != nil {
		return err
	}
	switch {
	case a.Traversal != nil:
		e, err := c.filter(c.newValue(col), a.Traversal)
		if err != nil {
			return err
		}
		conds = append(conds, sql.IsNull{Expr: col, Not: true}, e)
	case a.Pred != nil:
		if err := a.Pred.validate(); err != nil {
			return err
		}
		conv := valueExpr
		if a.Key == colID {
			conv = idConv
		}
		e, err := a.Pred.expr(col, conv)
		if err != nil {
			return err
		}
		conds = append(conds, e)
	default:
		conds = append(conds, sql.IsNull{Expr: col, Not: true})
	}
	c.addWhere(conds...)
	return nil
}

func opHasNot(c *Context, v Variable, a Args) error {
	col, err := c.property(v, a.Key)
	if err != nil {
		return err
	}
	c.addWhere(sql.IsNull{Expr: col})
	return nil
}

func opHasLabel(c *Context, v Variable, a Args) error {
	col := v.Column(colLabel)
	if a.Pred != nil {
		e, err := a.Pred.Expr(col)
		if err != nil {
			return err
		}
		c.addWhere(e)
		return nil
	}
	if len(a.Labels) == 0 {
		return errorf(InvalidArgument, "at least one label is required")
	}
	c.addWhere(sql.In{Expr: col, Values: sql.Params(a.Labels)})
	return nil
}

func opHasID(c *Context, v Variable, a Args) error {
	col := v.Column(colID)
	if a.Pred != nil {
		if err := a.Pred.validate(); err != nil {
			return err
		}
		e, err := a.Pred.expr(col, idConv)
		if err != nil {
			return err
		}
		c.addWhere(e)
		return nil
	}
	ids, err := idParams(a.Values)
	if err != nil {
		return err
	}
	c.addWhere(sql.In{Expr: col, Values: ids})
	return nil
}

// columnOp moves the traversal to a value of a column.
func columnOp(col string) opFunc {
	return func(c *Context, v Variable, a Args) error {
		c.hop(v, nil, c.newValue(v.Column(col)))
		return nil
	}
}

// propertyValues returns a key and a value expression that iterate over given properties.
// More than one key multiplies rows with a table of keys.
func (c *Context) propertyValues(v Variable, keys []string) (key, val sql.Expr, _ error) {
	cols := make([]sql.Expr, 0, len(keys))
	var (
		typ   sql.PropertyType
		mixed bool
	)
	for i, k := range keys {
		col, err := c.property(v, k)
		if err != nil {
			return nil, nil, err
		}
		t, _ := c.opts.propertyType(v.Kind().IsVertex(), k)
		if i == 0 {
			typ = t
		} else if t != typ {
			mixed = true
		}
		cols = append(cols, col)
	}
	if len(keys) == 1 {
		return sql.String(keys[0]), cols[0], nil
	}
	names := make([]sql.Expr, 0, len(keys))
	for _, k := range keys {
		names = append(names, sql.String(k))
	}
	src := c.newConst(colKey, names)
	cs := sql.Case{Operand: src.Column()}
	for i, k := range keys {
		col := cols[i]
		if mixed {
			col = sql.AsText{Expr: col}
		}
		cs.When = append(cs.When, sql.When{Cond: sql.String(k), Then: col})
	}
	return src.Column(), cs, nil
}

func opValues(c *Context, v Variable, a Args) error {
	keys, err := c.propertyKeys(v, a.Keys)
	if err != nil {
		return err
	}
	_, val, err := c.propertyValues(v, keys)
	if err != nil {
		return err
	}
	c.addWhere(sql.IsNull{Expr: val, Not: true})
	c.hop(v, nil, c.newValue(val))
	return nil
}

func opProperties(c *Context, v Variable, a Args) error {
	keys, err := c.propertyKeys(v, a.Keys)
	if err != nil {
		return err
	}
	key, val, err := c.propertyValues(v, keys)
	if err != nil {
		return err
	}
	c.addWhere(sql.IsNull{Expr: val, Not: true})
	p := &propertyVar{
		varBase: varBase{kind: PropertyRow, name: c.alias("p")},
		owner:   v, keys: keys, key: key, value: val,
	}
	c.register(p)
	c.hop(v, nil, p)
	return nil
}

func opValueMap(c *Context, v Variable, a Args) error {
	var keys []string
	if len(a.Keys) != 0 || !a.Tokens || !c.opts.Schema.IsEmpty() {
		var err error
		keys, err = c.propertyKeys(v, a.Keys)
		if err != nil {
			return err
		}
	}
	if a.Tokens {
		keys = append([]string{colID, colLabel}, keys...)
	}
	vals := make([]sql.Expr, 0, len(keys))
	for _, k := range keys {
		col, err := c.property(v, k)
		if err != nil {
			return err
		}
		vals = append(vals, col)
	}
	c.hop(v, nil, c.newRow(keys, vals))
	return nil
}

// assignable checks that a property can be changed by the traversal.
func (c *Context) assignable(v Variable, key string) error {
	switch key {
	case colID, colOutV, colInV:
		return errorf(InvalidArgument, "%s of an element cannot be changed", key)
	}
	_, err := c.property(v, key)
	return err
}

func propertyValue(a Args) (sql.Expr, error) {
	if a.Traversal != nil {
		return nil, errorf(UnsupportedOperation, "property values computed by traversals are not supported")
	}
	return valueExpr(a.Value)
}

func opUpdateProperty(c *Context, v Variable, a Args) error {
	if err := c.assignable(v, a.Key); err != nil {
		return err
	}
	val, err := propertyValue(a)
	if err != nil {
		return err
	}
	c.addMutation(&updateMutation{
		table: tableOf(v),
		set:   []sql.Assign{{Column: a.Key, Value: val}},
		blk:   c.snapshotBlock(),
		id:    v.Column(colID),
	})
	return nil
}

func opSetProperty(c *Context, v Variable, a Args) error {
	if err := c.assignable(v, a.Key); err != nil {
		return err
	}
	av, ok := v.(*addedVar)
	if !ok {
		return opUpdateProperty(c, v, a)
	}
	val, err := propertyValue(a)
	if err != nil {
		return err
	}
	av.ins.set(a.Key, val)
	return nil
}

func opDropElement(c *Context, v Variable, a Args) error {
	c.addMutation(&deleteMutation{
		vertex: v.Kind().IsVertex(),
		blk:    c.snapshotBlock(),
		id:     v.Column(colID),
	})
	c.addWhere(sql.False)
	return nil
}

func opDropProperty(c *Context, v Variable, a Args) error {
	p, ok := v.(*propertyVar)
	if !ok {
		return errUnsupported(OpDrop, v.Kind())
	}
	for _, k := range p.keys {
		if k == colID || k == colLabel || k == colOutV || k == colInV {
			return errorf(InvalidArgument, "%s of an element cannot be dropped", k)
		}
		blk := c.snapshotBlock()
		if len(p.keys) > 1 {
			blk.where = append(blk.where, sql.Eq(p.key, sql.String(k)))
		}
		c.addMutation(&updateMutation{
			table: tableOf(p.owner),
			set:   []sql.Assign{{Column: k, Value: sql.Null}},
			blk:   blk,
			id:    p.owner.Column(colID),
		})
	}
	c.addWhere(sql.False)
	return nil
}
