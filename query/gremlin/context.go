package gremlin

import (
	"sort"
	"strconv"

	"github.com/cayleygraph/gremsql/clog"
	"github.com/cayleygraph/gremsql/graph/sql"
)

// Triple records a single hop of a traversal. Edge is nil for hops that have no separate
// edge variable. The element a traversal starts from is not a hop; see Context.Origin.
type Triple struct {
	Source Variable
	Edge   Variable
	Sink   Variable
}

// source is a relational source of a block.
type source interface {
	// render returns FROM items and join conditions. First is set for the first source of a block.
	render(first bool) ([]sql.Source, []sql.Expr)
}

// block is a single SELECT under construction.
type block struct {
	from    []source
	where   []sql.Expr
	order   []OrderKey
	limited bool
	limit   int64
	offset  int64
}

// pending reports if the block has modifiers that must be applied before rows can change.
func (b *block) pending() bool {
	return b.limited || b.offset > 0
}

// clone returns a copy of the block that is not affected by appends to the original.
func (b *block) clone() *block {
	cp := *b
	cp.from = cp.from[:len(cp.from):len(cp.from)]
	cp.where = cp.where[:len(cp.where):len(cp.where)]
	cp.order = cp.order[:len(cp.order):len(cp.order)]
	return &cp
}

// merge returns a block that joins an extra block into a copy of this one.
func (b *block) merge(o *block) *block {
	m := b.clone()
	m.from = append(m.from, o.from...)
	m.where = append(m.where, o.where...)
	m.order = append(m.order, o.order...)
	if o.limited {
		m.limited, m.limit = true, o.limit
	}
	m.offset = o.offset
	return m
}

// hasSources reports if the block reads any table.
func (b *block) hasSources() bool {
	for i, s := range b.from {
		if srcs, _ := s.render(i == 0); len(srcs) != 0 {
			return true
		}
	}
	return false
}

func (b *block) selectOf(fields []sql.Field) sql.Select {
	s := sql.Select{Fields: fields}
	first := true
	for _, src := range b.from {
		srcs, conds := src.render(first)
		if len(srcs) != 0 {
			first = false
		}
		s.From = append(s.From, srcs...)
		s.Where = append(s.Where, conds...)
	}
	s.Where = append(s.Where, b.where...)
	if b.pending() {
		for _, o := range b.order {
			s.OrderBy = append(s.OrderBy, o.sql())
		}
	}
	if b.limited {
		if b.limit <= 0 {
			s.Where = append(s.Where, sql.False)
		} else {
			s.Limit = b.limit
		}
	}
	s.Offset = b.offset
	return s
}

// query renders a block as a final query, with ordering.
func (b *block) query(fields []sql.Field) sql.Select {
	s := b.selectOf(fields)
	if !b.pending() {
		for _, o := range b.order {
			s.OrderBy = append(s.OrderBy, o.sql())
		}
	}
	return s
}

type export struct {
	alias string
	exprs []sql.Expr // a single expression for all arms or one per arm
	agg   bool
}

// derived is a table computed from one or more sealed blocks. Multiple blocks are
// concatenated with UNION ALL. Columns are exported on demand.
type derived struct {
	alias   string
	arms    []*block
	groupBy []sql.Expr
	exports []export
	index   map[string]int
	aliases map[string]struct{}
	// uncorrelated tables never reference preceding sources
	uncorrelated bool
}

func newDerived(alias string, arms ...*block) *derived {
	return &derived{
		alias:   alias,
		arms:    arms,
		index:   make(map[string]int),
		aliases: make(map[string]struct{}),
	}
}

// export adds a column to the derived table and returns its name. The function is called
// for each arm of the table. Repeated calls with the same key return the same column.
func (d *derived) export(key, hint string, agg bool, fn func(arm int) sql.Expr) string {
	if i, ok := d.index[key]; ok {
		return d.exports[i].alias
	}
	alias := hint
	for n := 1; ; n++ {
		if _, ok := d.aliases[alias]; !ok {
			break
		}
		alias = hint + "_" + strconv.Itoa(n)
	}
	exprs := make([]sql.Expr, 0, len(d.arms))
	for i := range d.arms {
		exprs = append(exprs, fn(i))
	}
	d.aliases[alias] = struct{}{}
	d.index[key] = len(d.exports)
	d.exports = append(d.exports, export{alias: alias, exprs: exprs, agg: agg})
	return alias
}

func (d *derived) exportVar(v Variable, col string) string {
	return d.export(v.Name()+"."+col, v.Name()+"_"+col, false, func(int) sql.Expr {
		return v.Column(col)
	})
}

func (d *derived) exportExpr(key, hint string, agg bool, e sql.Expr) string {
	return d.export(key, hint, agg, func(int) sql.Expr { return e })
}

func exprKey(e sql.Expr) string {
	return e.SQL(sql.NewBuilder(sql.DefaultDialect))
}

func (d *derived) armQuery(i int) sql.Select {
	var keys map[string]struct{}
	if len(d.groupBy) != 0 {
		keys = make(map[string]struct{}, len(d.groupBy))
		for _, g := range d.groupBy {
			keys[exprKey(g)] = struct{}{}
		}
	}
	fields := make([]sql.Field, 0, len(d.exports))
	for _, ex := range d.exports {
		e := ex.exprs[i]
		if keys != nil && !ex.agg {
			if _, ok := keys[exprKey(e)]; !ok {
				e = sql.Func{Name: "MIN", Args: []sql.Expr{e}}
			}
		}
		fields = append(fields, sql.Field{Expr: e, Alias: ex.alias})
	}
	s := d.arms[i].selectOf(fields)
	s.GroupBy = d.groupBy
	return s
}

func (d *derived) render(first bool) ([]sql.Source, []sql.Expr) {
	var q sql.Query
	if len(d.arms) == 1 {
		q = d.armQuery(0)
	} else {
		qs := make([]sql.Query, 0, len(d.arms))
		for i := range d.arms {
			qs = append(qs, d.armQuery(i))
		}
		q = sql.Union{All: true, Queries: qs}
	}
	return []sql.Source{sql.Subquery{Query: q, Alias: d.alias, Lateral: !first && !d.uncorrelated}}, nil
}

// existsExpr checks that a nested block returns at least one row.
type existsExpr struct {
	blk *block
	not bool
}

func (e existsExpr) SQL(b *sql.Builder) string {
	return sql.Exists{Query: e.blk.selectOf(nil), Not: e.not}.SQL(b)
}

// scalarExpr returns the first value computed by a nested block.
type scalarExpr struct {
	blk   *block
	value sql.Expr
}

func (e scalarExpr) SQL(b *sql.Builder) string {
	s := e.blk.query([]sql.Field{{Expr: e.value}})
	if s.Limit == 0 || s.Limit > 1 {
		s.Limit = 1
	}
	return sql.Scalar{Query: s}.SQL(b)
}

// Context is the compilation scope of a single traversal.
type Context struct {
	*shared
	parent *Context

	vars    []Variable
	blk     *block
	pivot   Variable
	current Variable
	origin  Variable
	path    []Triple
	labels  map[string]Variable
	effects map[string]*sideEffect
	folded  *folded
	sealed  bool
}

// shared is the state of a top-level compilation, shared with every nested context.
type shared struct {
	opts      *Options
	next      map[string]int
	mutations []mutation
}

// NewContext creates an empty top-level context.
func NewContext(opts *Options) *Context {
	if opts == nil {
		opts = &Options{}
	}
	return &Context{
		shared:  &shared{opts: opts, next: make(map[string]int)},
		blk:     &block{},
		labels:  make(map[string]Variable),
		effects: make(map[string]*sideEffect),
	}
}

func (c *Context) Options() *Options { return c.opts }

// Parent returns the context of the enclosing traversal, or nil for a top-level context.
func (c *Context) Parent() *Context { return c.parent }

// Pivot returns the current element of the traversal.
func (c *Context) Pivot() Variable { return c.pivot }

// Current returns the last element visited by the traversal. It differs from the pivot
// when the pivot is a value computed from an element.
func (c *Context) Current() Variable { return c.current }

// Variables returns all variables created in this context.
func (c *Context) Variables() []Variable {
	return append([]Variable(nil), c.vars...)
}

// Predicates returns conditions accumulated in the current block.
func (c *Context) Predicates() []sql.Expr {
	return append([]sql.Expr(nil), c.blk.where...)
}

// OrderKeys returns sorting keys of the current block.
func (c *Context) OrderKeys() []OrderKey {
	return append([]OrderKey(nil), c.blk.order...)
}

// Path returns hops recorded by the traversal.
func (c *Context) Path() []Triple {
	return append([]Triple(nil), c.path...)
}

// Origin returns the element the recorded path starts from.
func (c *Context) Origin() Variable { return c.origin }

// Labels returns the variables bound to labels.
func (c *Context) Labels() map[string]Variable {
	out := make(map[string]Variable, len(c.labels))
	for k, v := range c.labels {
		out[k] = v
	}
	return out
}

func (c *Context) Label(name string) (Variable, bool) {
	v, ok := c.labels[name]
	return v, ok
}

// SideEffects returns keys of collected side effects.
func (c *Context) SideEffects() []string {
	out := make([]string, 0, len(c.effects))
	for k := range c.effects {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Projection returns names of the columns returned by the traversal.
func (c *Context) Projection() []string {
	if c.pivot == nil {
		return nil
	}
	return append([]string(nil), columnsOf(c.pivot)...)
}

func (c *Context) alias(prefix string) string {
	n := c.next[prefix]
	c.next[prefix] = n + 1
	return prefix + "_" + strconv.Itoa(n)
}

func (c *Context) register(v Variable) Variable {
	v.base().ctx = c
	c.vars = append(c.vars, v)
	return v
}

func (c *Context) newTable(kind Kind) *tableVar {
	v := &tableVar{varBase: varBase{kind: kind}}
	if kind.IsEdge() {
		v.name, v.table = c.alias("e"), sql.EdgesTable
	} else {
		v.name, v.table = c.alias("n"), sql.VerticesTable
	}
	c.register(v)
	return v
}

func (c *Context) newValue(e sql.Expr) *valueVar {
	v := &valueVar{varBase: varBase{kind: Value, name: c.alias("v")}, expr: e}
	c.register(v)
	return v
}

func (c *Context) newJSON(e sql.Expr) *valueVar {
	v := c.newValue(e)
	v.json = true
	return v
}

func (c *Context) newRow(keys []string, vals []sql.Expr) *rowVar {
	v := &rowVar{varBase: varBase{kind: Row, name: c.alias("r")}, keys: keys, vals: vals}
	c.register(v)
	return v
}

func (c *Context) setPivot(v Variable) {
	c.pivot = v
	if v != nil && v.Kind().IsElement() {
		c.current = v
	}
}

// start sets the first element of the traversal and of its path.
func (c *Context) start(v Variable) {
	c.origin = v
	c.pivot, c.current = v, v
}

// hop moves the pivot and records the hop in the path.
func (c *Context) hop(src, edge, sink Variable) {
	c.path = append(c.path, Triple{Source: src, Edge: edge, Sink: sink})
	c.setPivot(sink)
}

// prepare seals the block if it has pending modifiers.
func (c *Context) prepare() {
	if c.blk.pending() {
		c.seal()
	}
}

func (c *Context) addSource(s source) {
	c.prepare()
	c.blk.from = append(c.blk.from, s)
}

func (c *Context) addWhere(conds ...sql.Expr) {
	if len(conds) == 0 {
		return
	}
	c.prepare()
	c.blk.where = append(c.blk.where, conds...)
}

func (c *Context) seal() {
	c.sealWith(newDerived(c.alias("t"), c.blk))
}

// sealWith replaces the block with a derived table. Every visible variable owned by this
// context is re-bound to a view of the derived table. Variables of enclosing contexts
// are left as is, since they are correlated.
func (c *Context) sealWith(d *derived) {
	views := make(map[Variable]Variable)
	view := func(v Variable) Variable {
		if v == nil || v.base().ctx != c {
			return v
		}
		if nv, ok := views[v]; ok {
			return nv
		}
		nv := c.view(d, v)
		views[v] = nv
		return nv
	}
	c.pivot, c.current, c.origin = view(c.pivot), view(c.current), view(c.origin)
	labels := make(map[string]Variable, len(c.labels))
	for k, v := range c.labels {
		labels[k] = view(v)
	}
	c.labels = labels
	path := make([]Triple, 0, len(c.path))
	for _, t := range c.path {
		path = append(path, Triple{Source: view(t.Source), Edge: view(t.Edge), Sink: view(t.Sink)})
	}
	c.path = path
	var order []OrderKey
	for i, k := range c.blk.order {
		if k.Order == Shuffle {
			continue
		}
		alias := d.exportExpr("order."+strconv.Itoa(i), "o", false, k.Expr)
		order = append(order, OrderKey{Expr: sql.FieldName{Table: d.alias, Name: alias}, Order: k.Order})
	}
	c.blk = &block{from: []source{d}, order: order}
	c.sealed = true
}

func (c *Context) view(d *derived, v Variable) Variable {
	nv := &viewVar{
		varBase: varBase{kind: viewKind(v.Kind()), name: d.alias + "_" + v.Name()},
		d:       d, inner: v,
	}
	c.register(nv)
	return nv
}

// sealGrouped seals the block, keeping one row per distinct value of keys.
func (c *Context) sealGrouped(keys []sql.Expr) {
	c.prepare()
	d := newDerived(c.alias("t"), c.blk)
	d.groupBy = keys
	c.sealWith(d)
}

// reduce seals the block into a table of aggregates, grouped by given keys.
func (c *Context) reduce(groupBy []sql.Expr) *derived {
	c.prepare()
	d := newDerived(c.alias("t"), c.blk)
	d.groupBy = groupBy
	c.replace(d)
	return d
}

// replace starts a new block from a table of aggregates. Labels and path of this
// context are not visible after it.
func (c *Context) replace(srcs ...source) {
	c.blk = &block{from: srcs}
	for k, v := range c.labels {
		if v.base().ctx == c {
			delete(c.labels, k)
		}
	}
	c.path, c.origin, c.pivot, c.current = nil, nil, nil, nil
	c.sealed = true
}

// Branch creates a nested context that inherits the pivot and labels of this one.
func (c *Context) Branch() *Context {
	nc := &Context{
		shared:  c.shared,
		parent:  c,
		blk:     &block{},
		pivot:   c.pivot,
		current: c.current,
		origin:  c.pivot,
		labels:  make(map[string]Variable, len(c.labels)),
		effects: make(map[string]*sideEffect, len(c.effects)),
	}
	for k, v := range c.labels {
		nc.labels[k] = v
	}
	for k, v := range c.effects {
		nc.effects[k] = v
	}
	return nc
}

// snapshotBlock returns a copy of the block that includes blocks of enclosing contexts,
// so that it can be rendered as a standalone statement.
func (c *Context) snapshotBlock() *block {
	b := c.blk.clone()
	for p := c.parent; p != nil; p = p.parent {
		b = p.blk.merge(b)
	}
	return b
}

// branchAt creates a nested context that starts from a given variable.
func (c *Context) branchAt(v Variable) *Context {
	nc := c.Branch()
	nc.pivot, nc.origin = v, v
	if v.Kind().IsElement() {
		nc.current = v
	}
	return nc
}

// Apply compiles steps of the traversal in order.
func (c *Context) Apply(t Traversal) error {
	for _, s := range t {
		name := NameOf(s)
		clog.Debugf("gremlin: compiling %s", name)
		mCompileSteps.Inc()
		if err := s.Compile(c); err != nil {
			return withStep(err, name)
		}
	}
	return nil
}

// CompileBranch compiles a nested traversal in a new context that inherits this one.
func (c *Context) CompileBranch(t Traversal) (*Context, error) {
	nc := c.Branch()
	if err := nc.Apply(t); err != nil {
		return nil, err
	}
	return nc, nil
}

func (c *Context) compileBranches(ts []Traversal) ([]*Context, error) {
	out := make([]*Context, 0, len(ts))
	for _, t := range ts {
		nc, err := c.CompileBranch(t)
		if err != nil {
			return nil, err
		}
		out = append(out, nc)
	}
	return out, nil
}

// Snapshot is a saved state of a context.
type Snapshot struct {
	blk            *block
	from           []source
	where          []sql.Expr
	order          []OrderKey
	limited        bool
	limit, offset  int64
	pivot, current Variable
	origin         Variable
	path           []Triple
	nvars, nmut    int
	labels         map[string]Variable
	effects        map[string]*sideEffect
	sealed         bool
}

// Snapshot saves the accumulated state of the context, so that it can be restored
// after compiling a branch in place.
func (c *Context) Snapshot() Snapshot {
	b := c.blk.clone()
	s := Snapshot{
		blk: c.blk, from: b.from, where: b.where, order: b.order,
		limited: b.limited, limit: b.limit, offset: b.offset,
		pivot: c.pivot, current: c.current, origin: c.origin,
		path:  c.path[:len(c.path):len(c.path)],
		nvars: len(c.vars), nmut: len(c.mutations),
		labels:  make(map[string]Variable, len(c.labels)),
		effects: make(map[string]*sideEffect, len(c.effects)),
		sealed:  c.sealed,
	}
	for k, v := range c.labels {
		s.labels[k] = v
	}
	for k, v := range c.effects {
		s.effects[k] = v
	}
	return s
}

// Restore reverts the context to a saved state.
func (c *Context) Restore(s Snapshot) {
	c.blk = s.blk
	c.blk.from, c.blk.where, c.blk.order = s.from, s.where, s.order
	c.blk.limited, c.blk.limit, c.blk.offset = s.limited, s.limit, s.offset
	c.pivot, c.current, c.origin = s.pivot, s.current, s.origin
	c.path = s.path
	c.vars = c.vars[:s.nvars]
	c.mutations = c.mutations[:s.nmut]
	c.labels, c.effects = s.labels, s.effects
	c.sealed = s.sealed
}

// inlined reports if everything added to the context since the snapshot can be
// expressed as conditions of the same block.
func (c *Context) inlined(s Snapshot) bool {
	if c.blk != s.blk || c.blk.pending() || len(c.blk.order) != len(s.order) || len(c.mutations) != s.nmut {
		return false
	}
	for _, src := range c.blk.from[len(s.from):] {
		v, ok := src.(*virtualVar)
		if !ok || v.materialized() {
			return false
		}
	}
	return true
}

// filter compiles a traversal that starts from a given variable and is used as a condition.
// If possible, conditions are added to the block directly, otherwise the traversal
// becomes an EXISTS subquery.
func (c *Context) filter(from Variable, t Traversal) (sql.Expr, error) {
	if !c.blk.pending() {
		s := c.Snapshot()
		c.pivot, c.origin = from, from
		err := c.Apply(t)
		ok := err == nil && c.inlined(s)
		var conds []sql.Expr
		if ok {
			conds = append(conds, c.blk.where[len(s.where):]...)
		}
		c.Restore(s)
		if err != nil {
			return nil, err
		}
		if ok {
			return sql.And(conds), nil
		}
	}
	nc := c.branchAt(from)
	if err := nc.Apply(t); err != nil {
		return nil, err
	}
	return existsExpr{blk: nc.blk}, nil
}

// valueOf compiles a traversal used as a value, like by() modulators.
// The first result of the traversal is used; no results produce NULL.
func (c *Context) valueOf(from Variable, t Traversal) (sql.Expr, error) {
	if len(t) == 0 {
		return scalarOf(from), nil
	}
	if !c.blk.pending() {
		s := c.Snapshot()
		c.pivot, c.origin = from, from
		err := c.Apply(t)
		ok := err == nil && c.inlined(s) && c.pivot != nil
		var (
			val   sql.Expr
			conds []sql.Expr
		)
		if ok {
			val = scalarOf(c.pivot)
			conds = append(conds, c.blk.where[len(s.where):]...)
		}
		c.Restore(s)
		if err != nil {
			return nil, err
		}
		if ok {
			if len(conds) == 0 {
				return val, nil
			}
			return sql.Case{When: []sql.When{{Cond: sql.And(conds), Then: val}}}, nil
		}
	}
	nc := c.branchAt(from)
	if err := nc.Apply(t); err != nil {
		return nil, err
	}
	return scalarExpr{blk: nc.blk, value: scalarOf(nc.pivot)}, nil
}
