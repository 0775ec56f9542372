// Copyright 2017 The Cayley Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sql

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultDialect quotes fields with double quotes and uses "?" placeholders.
// It is used when rendering queries for inspection and in tests.
var DefaultDialect = QueryDialect{
	FieldQuote: func(s string) string {
		return strconv.Quote(s)
	},
	Placeholder: func(_ int) string {
		return "?"
	},
}

// QueryDialect describes how a relational query is rendered for a specific database.
type QueryDialect struct {
	RegexpOp    CmpOp
	FieldQuote  func(string) string
	Placeholder func(int) string

	NoLateral            bool   // correlated subqueries are not allowed in FROM
	FromDual             bool   // SELECT without FROM must read from DUAL to have a WHERE clause
	NoOffsetWithoutLimit bool   // SELECT ... OFFSET can be used only with LIMIT
	TextType             string // type name used in CAST(x AS ...) to convert values to strings
	IntCast              string // type name used in CAST(x AS ...) for integers
	FloatCast            string // type name used in CAST(x AS ...) for floats
	BoolCast             string // type name used in CAST(x AS ...) for booleans

	JSONArray     string // json_build_array
	JSONObject    string // json_build_object
	JSONArrayAgg  string // json_agg
	JSONObjectAgg string // json_object_agg
	Random        string // random()
	JSONParse     string // function that restores JSON values read from subqueries; not used if empty

	// Concat joins rendered string expressions. Defaults to the || operator.
	Concat func(args []string) string
	// Adjacency renders a hop as a table-valued function call.
	// If not set, a lateral subquery over edges and vertices tables is used instead.
	Adjacency func(b *Builder, a Adjacency) string
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func (d QueryDialect) textType() string      { return orDefault(d.TextType, "TEXT") }
func (d QueryDialect) jsonArray() string     { return orDefault(d.JSONArray, "json_build_array") }
func (d QueryDialect) jsonObject() string    { return orDefault(d.JSONObject, "json_build_object") }
func (d QueryDialect) jsonArrayAgg() string  { return orDefault(d.JSONArrayAgg, "json_agg") }
func (d QueryDialect) jsonObjectAgg() string { return orDefault(d.JSONObjectAgg, "json_object_agg") }
func (d QueryDialect) random() string        { return orDefault(d.Random, "random()") }

func (d QueryDialect) concat(args []string) string {
	if d.Concat != nil {
		return d.Concat(args)
	}
	return "(" + strings.Join(args, " || ") + ")"
}

func NewBuilder(d QueryDialect) *Builder {
	return &Builder{d: d}
}

// Builder renders statements for a given dialect. It collects query parameters
// in the order placeholders appear in the query text.
type Builder struct {
	d    QueryDialect
	pi   int
	args []interface{}
	err  error
}

// keywords are reserved in at least one of the supported databases and cannot be used
// as bare identifiers.
var keywords = func() map[string]struct{} {
	m := make(map[string]struct{})
	for _, w := range strings.Fields(`
		all alter analyse analyze and any array as asc asymmetric between both by case cast check
		collate column constraint create cross current_date current_time current_timestamp
		current_user default deferrable delete desc distinct do drop else end except exists false
		fetch for foreign from full grant group having in index inner insert intersect interval into
		is join key leading left like limit localtime localtimestamp natural not null offset on only
		or order outer over placing primary range references regexp returning right row rows select
		session_user set some symmetric table then to trailing true union unique update user using
		values when where window with`) {
		m[w] = struct{}{}
	}
	return m
}()

func needQuotes(s string) bool {
	if s == "" {
		return true
	}
	if _, ok := keywords[s]; ok {
		return true
	}
	for i, r := range s {
		if (r < 'a' || r > 'z') && r != '_' && (i == 0 || r < '0' || r > '9') {
			return true
		}
	}
	return false
}

func (b *Builder) Dialect() QueryDialect {
	return b.d
}

func (b *Builder) EscapeField(s string) string {
	if !needQuotes(s) {
		return s
	}
	return b.d.FieldQuote(s)
}

func (b *Builder) Placeholder() string {
	b.pi++
	return b.d.Placeholder(b.pi)
}

// Arg adds a query parameter and returns a placeholder for it.
func (b *Builder) Arg(v interface{}) string {
	b.args = append(b.args, v)
	return b.Placeholder()
}

// Errorf records a rendering error. Only the first error is kept.
func (b *Builder) Errorf(format string, args ...interface{}) {
	if b.err == nil {
		b.err = fmt.Errorf(format, args...)
	}
}

// Build renders a statement and returns its text together with parameters.
func (b *Builder) Build(s Statement) (string, []interface{}, error) {
	b.pi, b.args, b.err = 0, nil, nil
	qu := s.SQL(b)
	args, err := b.args, b.err
	b.args, b.err = nil, nil
	if err != nil {
		return "", nil, err
	}
	return qu, args, nil
}

// Statement is any SQL statement that can be rendered by the Builder.
type Statement interface {
	SQL(b *Builder) string
}

// Query is a statement that returns rows.
type Query interface {
	Statement
	isQuery()
}

// Field is a single output column of a SELECT.
type Field struct {
	Expr  Expr
	Alias string
}

func (f Field) SQL(b *Builder) string {
	s := f.Expr.SQL(b)
	if f.Alias == "" {
		return s
	}
	return s + " AS " + b.EscapeField(f.Alias)
}

// Column is a shorthand for a field that selects a column of a table.
func Column(table, name, alias string) Field {
	return Field{Expr: FieldName{Table: table, Name: name}, Alias: alias}
}

type Source interface {
	SQL(b *Builder) string
	isSource()
}

type Table struct {
	Name  string
	Alias string
}

func (Table) isSource() {}

func (f Table) SQL(b *Builder) string {
	if f.Alias == "" {
		return f.Name
	}
	return f.Name + " AS " + b.EscapeField(f.Alias)
}

func (f Table) NameSQL() string {
	if f.Alias != "" {
		return f.Alias
	}
	return f.Name
}

type Subquery struct {
	Query   Query
	Alias   string
	Lateral bool // query references columns of preceding sources
}

func (Subquery) isSource() {}
func (s Subquery) SQL(b *Builder) string {
	q := "(" + s.Query.SQL(b) + ")"
	if s.Lateral {
		if b.d.NoLateral {
			b.Errorf("correlated subquery %q cannot be used in FROM with this database", s.Alias)
		} else {
			q = "LATERAL " + q
		}
	}
	if s.Alias != "" {
		q += " AS " + b.EscapeField(s.Alias)
	}
	return q
}

// OrderBy is a single sorting key.
type OrderBy struct {
	Expr Expr
	Desc bool
}

func (o OrderBy) SQL(b *Builder) string {
	s := o.Expr.SQL(b)
	if o.Desc {
		s += " DESC"
	}
	return s
}

// maxLimit is used for databases that cannot accept OFFSET without LIMIT.
const maxLimit = "9223372036854775807"

// Select is a simplified representation of SQL SELECT query.
type Select struct {
	Distinct bool
	Fields   []Field
	From     []Source
	Where    []Expr
	GroupBy  []Expr
	OrderBy  []OrderBy
	Limit    int64
	Offset   int64
}

func (Select) isQuery() {}

func (s Select) Clone() Select {
	s.Fields = append([]Field{}, s.Fields...)
	s.From = append([]Source{}, s.From...)
	s.Where = append([]Expr{}, s.Where...)
	s.GroupBy = append([]Expr{}, s.GroupBy...)
	s.OrderBy = append([]OrderBy{}, s.OrderBy...)
	return s
}

// onlyAsSubquery indicates that query cannot be merged into existing SELECT because of some specific properties of query.
// An example of such properties might be LIMIT, DISTINCT, etc.
func (s Select) onlyAsSubquery() bool {
	return s.Limit > 0 || s.Offset > 0 || len(s.OrderBy) != 0 || s.Distinct || len(s.GroupBy) != 0
}

func (s Select) Columns() []string {
	names := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		name := f.Alias
		if name == "" {
			if fn, ok := f.Expr.(FieldName); ok {
				name = fn.Name
			}
		}
		names = append(names, name)
	}
	return names
}

func (s *Select) AppendWhere(e ...Expr) {
	s.Where = append(s.Where, e...)
}

func (s Select) SQL(b *Builder) string {
	var parts []string

	var fields []string
	for _, f := range s.Fields {
		fields = append(fields, f.SQL(b))
	}
	if len(fields) == 0 {
		fields = append(fields, "1")
	}
	sel := "SELECT "
	if s.Distinct {
		sel += "DISTINCT "
	}
	parts = append(parts, sel+strings.Join(fields, ", "))

	where := s.Where
	if len(s.From) != 0 {
		var tables []string
		for _, t := range s.From {
			if a, ok := t.(Adjacency); ok && a.decorrelated(b) {
				// rendered without a reference to a preceding source; join it here
				where = append(append([]Expr{}, where...), a.correlation())
			}
			tables = append(tables, t.SQL(b))
		}
		parts = append(parts, "FROM "+strings.Join(tables, ", "))
	} else if len(where) != 0 && b.d.FromDual {
		parts = append(parts, "FROM DUAL")
	}

	if len(where) != 0 {
		var wheres []string
		for _, w := range where {
			wheres = append(wheres, w.SQL(b))
		}
		parts = append(parts, "WHERE "+strings.Join(wheres, " AND "))
	}
	if len(s.GroupBy) != 0 {
		var group []string
		for _, g := range s.GroupBy {
			group = append(group, g.SQL(b))
		}
		parts = append(parts, "GROUP BY "+strings.Join(group, ", "))
	}
	if len(s.OrderBy) != 0 {
		var order []string
		for _, o := range s.OrderBy {
			order = append(order, o.SQL(b))
		}
		parts = append(parts, "ORDER BY "+strings.Join(order, ", "))
	}
	if s.Limit > 0 {
		parts = append(parts, "LIMIT "+strconv.FormatInt(s.Limit, 10))
	} else if s.Offset > 0 && b.d.NoOffsetWithoutLimit {
		parts = append(parts, "LIMIT "+maxLimit)
	}
	if s.Offset > 0 {
		parts = append(parts, "OFFSET "+strconv.FormatInt(s.Offset, 10))
	}
	return strings.Join(parts, " ")
}

// Union concatenates results of multiple queries.
type Union struct {
	All     bool
	Queries []Query
}

func (Union) isQuery() {}

func (u Union) SQL(b *Builder) string {
	if len(u.Queries) == 0 {
		// empty set of rows
		return Select{Where: []Expr{False}}.SQL(b)
	}
	op := " UNION "
	if u.All {
		op = " UNION ALL "
	}
	parts := make([]string, 0, len(u.Queries))
	for i, q := range u.Queries {
		if s, ok := q.(Select); ok && s.onlyAsSubquery() {
			// not every database accepts ORDER BY and LIMIT on union members
			q = Select{
				Fields: []Field{{Expr: Raw("*")}},
				From:   []Source{Subquery{Query: s, Alias: "u_" + strconv.Itoa(i)}},
			}
		}
		parts = append(parts, q.SQL(b))
	}
	return strings.Join(parts, op)
}
