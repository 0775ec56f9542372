package gremlin

import (
	"github.com/cayleygraph/gremsql/graph/sql"
)

// Kind is a kind of graph variable. The kind decides how operations are lowered.
type Kind int

const (
	// FreeVertex is a fresh scan of the vertices table.
	FreeVertex Kind = iota + 1
	// BoundVertex is a vertex joined to an edge of a previous hop.
	BoundVertex
	// VirtualVertex is an endpoint of an edge that is joined with vertices only when its properties are used.
	VirtualVertex
	// VertexTable is a vertex returned by a table-valued source: adjacency function or a derived table.
	VertexTable
	// AddedVertex is a vertex inserted by the traversal.
	AddedVertex
	// FreeEdge is a fresh scan of the edges table.
	FreeEdge
	// BoundEdge is an edge joined to a vertex of a previous hop.
	BoundEdge
	// EdgeTable is an edge returned by a table-valued source.
	EdgeTable
	// AddedEdge is an edge inserted by the traversal.
	AddedEdge
	// Value is a single scalar value.
	Value
	// Row is a set of named values, like the result of select or project.
	Row
	// PropertyRow is a key-value pair of an element property.
	PropertyRow
)

var kindNames = map[Kind]string{
	FreeVertex:    "free vertex",
	BoundVertex:   "bound vertex",
	VirtualVertex: "virtual vertex",
	VertexTable:   "vertex table",
	AddedVertex:   "added vertex",
	FreeEdge:      "free edge",
	BoundEdge:     "bound edge",
	EdgeTable:     "edge table",
	AddedEdge:     "added edge",
	Value:         "value",
	Row:           "row",
	PropertyRow:   "property",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown kind"
}

func (k Kind) IsVertex() bool {
	switch k {
	case FreeVertex, BoundVertex, VirtualVertex, VertexTable, AddedVertex:
		return true
	}
	return false
}

func (k Kind) IsEdge() bool {
	switch k {
	case FreeEdge, BoundEdge, EdgeTable, AddedEdge:
		return true
	}
	return false
}

func (k Kind) IsElement() bool {
	return k.IsVertex() || k.IsEdge()
}

var (
	vertexKinds  = []Kind{FreeVertex, BoundVertex, VirtualVertex, VertexTable, AddedVertex}
	edgeKinds    = []Kind{FreeEdge, BoundEdge, EdgeTable, AddedEdge}
	elementKinds = append(append([]Kind{}, vertexKinds...), edgeKinds...)
	allKinds     = append(append([]Kind{}, elementKinds...), Value, Row, PropertyRow)
)

const (
	colID    = "id"
	colLabel = "label"
	colOutV  = "out_v"
	colInV   = "in_v"
	colValue = "value"
	colKey   = "key"
)

// Variable is a relational reference that stands for a set of graph elements or values.
type Variable interface {
	Kind() Kind
	// Name is a unique name of the variable, used as a table alias where applicable.
	Name() string
	// Column returns an expression for a column of the variable and records the request.
	Column(name string) sql.Expr
	// Columns returns all columns requested so far.
	Columns() []string

	base() *varBase
}

// keyed variables have a list of named columns.
type keyed interface {
	Keys() []string
}

type varBase struct {
	kind Kind
	name string
	ctx  *Context // owner
	cols []string
}

func (v *varBase) Kind() Kind     { return v.kind }
func (v *varBase) Name() string   { return v.name }
func (v *varBase) base() *varBase { return v }

func (v *varBase) Columns() []string {
	return append([]string(nil), v.cols...)
}

func (v *varBase) touch(name string) {
	for _, c := range v.cols {
		if c == name {
			return
		}
	}
	v.cols = append(v.cols, name)
}

// tableVar is an element that scans a graph table.
type tableVar struct {
	varBase
	table string
	dir   sql.Direction // of the hop that joined a bound edge
}

// directed is implemented by edge variables that were reached by a hop.
type directed interface {
	direction() sql.Direction
}

func (v *tableVar) direction() sql.Direction     { return v.dir }
func (v *adjacencyVar) direction() sql.Direction { return v.adj.Dir }
func (v *viewVar) direction() sql.Direction      { return DirectionOf(v.inner) }

// DirectionOf returns the direction of the hop that reached an edge variable,
// or an empty string if the variable is not an edge reached from a vertex.
func DirectionOf(v Variable) sql.Direction {
	if d, ok := v.(directed); ok && v.Kind().IsEdge() {
		return d.direction()
	}
	return ""
}

func (v *tableVar) Column(name string) sql.Expr {
	v.touch(name)
	return sql.FieldName{Table: v.name, Name: name}
}

func (v *tableVar) render(bool) ([]sql.Source, []sql.Expr) {
	return []sql.Source{sql.Table{Name: v.table, Alias: v.name}}, nil
}

// virtualVar is a vertex that is known only by id. The vertices table is joined
// only if any other column is requested.
type virtualVar struct {
	varBase
	id sql.Expr
}

func (v *virtualVar) Column(name string) sql.Expr {
	v.touch(name)
	if name == colID {
		return v.id
	}
	return sql.FieldName{Table: v.name, Name: name}
}

func (v *virtualVar) materialized() bool {
	for _, c := range v.cols {
		if c != colID {
			return true
		}
	}
	return false
}

func (v *virtualVar) render(bool) ([]sql.Source, []sql.Expr) {
	if !v.materialized() {
		return nil, nil
	}
	return []sql.Source{sql.Table{Name: sql.VerticesTable, Alias: v.name}},
		[]sql.Expr{sql.Eq(sql.FieldName{Table: v.name, Name: colID}, v.id)}
}

// adjacencyVar is an element returned by an adjacency table function.
type adjacencyVar struct {
	varBase
	adj sql.Adjacency
}

func (v *adjacencyVar) Column(name string) sql.Expr {
	v.touch(name)
	return sql.FieldName{Table: v.name, Name: name}
}

func (v *adjacencyVar) render(bool) ([]sql.Source, []sql.Expr) {
	return []sql.Source{v.adj}, nil
}

// viewVar is a variable re-exported by a derived table.
type viewVar struct {
	varBase
	d     *derived
	inner Variable
}

func viewKind(k Kind) Kind {
	switch {
	case k.IsVertex():
		return VertexTable
	case k.IsEdge():
		return EdgeTable
	}
	return k
}

func (v *viewVar) Column(name string) sql.Expr {
	v.touch(name)
	return sql.FieldName{Table: v.d.alias, Name: v.d.exportVar(v.inner, name)}
}

func (v *viewVar) Keys() []string {
	if k, ok := v.inner.(keyed); ok {
		return k.Keys()
	}
	return nil
}

// valueVar is a scalar value computed from other variables.
type valueVar struct {
	varBase
	expr sql.Expr
	json bool // value is a JSON document
}

func (v *valueVar) Column(name string) sql.Expr {
	v.touch(name)
	if name == colValue {
		return v.expr
	}
	return sql.Null
}

// rowVar is a set of named values.
type rowVar struct {
	varBase
	keys []string
	vals []sql.Expr
}

func (v *rowVar) Column(name string) sql.Expr {
	v.touch(name)
	for i, k := range v.keys {
		if k == name {
			return v.vals[i]
		}
	}
	return sql.Null
}

func (v *rowVar) Keys() []string {
	return append([]string(nil), v.keys...)
}

// propertyVar is a property of an element: a pair of a key and a value.
type propertyVar struct {
	varBase
	owner Variable
	keys  []string
	key   sql.Expr
	value sql.Expr
}

func (v *propertyVar) Column(name string) sql.Expr {
	v.touch(name)
	switch name {
	case colKey:
		return v.key
	case colValue:
		return v.value
	}
	return sql.Null
}

// addedVar is an element inserted by the traversal. Its columns are the inserted values.
type addedVar struct {
	varBase
	ins *insertMutation
}

func (v *addedVar) Column(name string) sql.Expr {
	v.touch(name)
	if e := v.ins.get(name); e != nil {
		return e
	}
	return sql.Null
}

// unionVar is a result of one of the branches of union, coalesce, choose or optional.
type unionVar struct {
	varBase
	d    *derived
	arms []*Context
}

func (v *unionVar) Column(name string) sql.Expr {
	v.touch(name)
	alias := v.d.export(v.name+"."+name, name, false, func(i int) sql.Expr {
		return v.arms[i].pivot.Column(name)
	})
	return sql.FieldName{Table: v.d.alias, Name: alias}
}

func (v *unionVar) Keys() []string {
	var out []string
	seen := make(map[string]struct{})
	for _, b := range v.arms {
		for _, k := range keysOf(b.pivot) {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				out = append(out, k)
			}
		}
	}
	return out
}

// Branches returns compiled contexts of every branch.
func (v *unionVar) Branches() []*Context {
	return append([]*Context(nil), v.arms...)
}

// isJSON reports if a variable holds JSON documents.
func isJSON(v Variable) bool {
	switch v := v.(type) {
	case *valueVar:
		return v.json
	case *viewVar:
		return isJSON(v.inner)
	case *unionVar:
		for _, b := range v.arms {
			if !isJSON(b.pivot) {
				return false
			}
		}
		return len(v.arms) != 0
	}
	return false
}

func keysOf(v Variable) []string {
	if k, ok := v.(keyed); ok {
		return k.Keys()
	}
	return nil
}

// scalarOf returns a single value that represents a variable inside composite values.
// Elements are represented by their ids.
func scalarOf(v Variable) sql.Expr {
	switch k := v.Kind(); {
	case k.IsElement():
		return v.Column(colID)
	case k == Row:
		keys := keysOf(v)
		vals := make([]sql.Expr, 0, len(keys))
		for _, key := range keys {
			vals = append(vals, v.Column(key))
		}
		return sql.JSONObject{Keys: keys, Values: vals}
	}
	if isJSON(v) {
		return sql.JSONValue{Expr: v.Column(colValue)}
	}
	return v.Column(colValue)
}

// identityOf returns expressions that identify a variable for equality and deduplication.
func identityOf(v Variable) []sql.Expr {
	switch k := v.Kind(); {
	case k.IsElement():
		return []sql.Expr{v.Column(colID)}
	case k == Row:
		var out []sql.Expr
		for _, key := range keysOf(v) {
			out = append(out, v.Column(key))
		}
		return out
	case k == PropertyRow:
		return []sql.Expr{v.Column(colKey), v.Column(colValue)}
	}
	return []sql.Expr{v.Column(colValue)}
}

// columnsOf returns the default projection of a variable.
func columnsOf(v Variable) []string {
	switch k := v.Kind(); {
	case k.IsVertex():
		return sql.VertexColumns
	case k.IsEdge():
		return sql.EdgeColumns
	case k == Row:
		return keysOf(v)
	case k == PropertyRow:
		return []string{colKey, colValue}
	}
	return []string{colValue}
}

func identityEq(a, b Variable) sql.Expr {
	ka, kb := identityOf(a), identityOf(b)
	if len(ka) != len(kb) {
		return sql.False
	}
	out := make(sql.And, 0, len(ka))
	for i := range ka {
		out = append(out, sql.Eq(ka[i], kb[i]))
	}
	if len(out) == 1 {
		return out[0]
	}
	return out
}
