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
	"strings"
)

// Expr is a scalar or boolean SQL expression.
//
// The interface is intentionally open: packages that lower other query languages
// may provide their own expressions that are rendered lazily.
type Expr interface {
	SQL(b *Builder) string
}

type CmpOp string

const (
	OpEqual    = CmpOp("=")
	OpNotEqual = CmpOp("<>")
	OpGT       = CmpOp(">")
	OpGTE      = CmpOp(">=")
	OpLT       = CmpOp("<")
	OpLTE      = CmpOp("<=")
	OpIsNull   = CmpOp("IS NULL")
	OpIsTrue   = CmpOp("IS true")
)

var (
	True  Expr = Raw("1 = 1")
	False Expr = Raw("1 = 0")
	Null  Expr = Raw("NULL")
)

// Raw is an expression that is rendered as-is.
type Raw string

func (r Raw) SQL(b *Builder) string { return string(r) }

// String is a string literal that is inlined into the query text.
// Use it only for values that must be known to the database at planning time, like JSON keys.
type String string

func (s String) SQL(b *Builder) string {
	return "'" + strings.ReplaceAll(string(s), "'", "''") + "'"
}

// Param is a value passed to the database as a query parameter.
type Param struct {
	Value interface{}
}

func (p Param) SQL(b *Builder) string {
	return b.Arg(p.Value)
}

type FieldName struct {
	Name  string
	Table string
}

func (f FieldName) SQL(b *Builder) string {
	name := b.EscapeField(f.Name)
	if f.Table != "" {
		name = b.EscapeField(f.Table) + "." + name
	}
	return name
}

// Cmp compares two expressions.
type Cmp struct {
	Left  Expr
	Op    CmpOp
	Right Expr
}

func (c Cmp) SQL(b *Builder) string {
	op := c.Op
	if op == OpRegexp {
		op = b.d.RegexpOp
		if op == "" {
			b.Errorf("regular expressions are not supported by this database")
		}
	}
	return c.Left.SQL(b) + " " + string(op) + " " + c.Right.SQL(b)
}

// OpRegexp is replaced by the dialect-specific regexp operator.
const OpRegexp = CmpOp("~regexp~")

func Eq(l, r Expr) Expr {
	return Cmp{Left: l, Op: OpEqual, Right: r}
}

type IsNull struct {
	Expr Expr
	Not  bool
}

func (e IsNull) SQL(b *Builder) string {
	if e.Not {
		return e.Expr.SQL(b) + " IS NOT NULL"
	}
	return e.Expr.SQL(b) + " IS NULL"
}

// Like matches a string against a pattern. Pattern must use '!' as an escape character.
type Like struct {
	Expr    Expr
	Pattern Expr
	Not     bool
}

func (e Like) SQL(b *Builder) string {
	op := " LIKE "
	if e.Not {
		op = " NOT LIKE "
	}
	return e.Expr.SQL(b) + op + e.Pattern.SQL(b) + " ESCAPE '!'"
}

// EscapeLike escapes special characters of the LIKE pattern.
func EscapeLike(s string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return r.Replace(s)
}

type And []Expr

func (e And) SQL(b *Builder) string {
	switch len(e) {
	case 0:
		return True.SQL(b)
	case 1:
		return e[0].SQL(b)
	}
	parts := make([]string, 0, len(e))
	for _, x := range e {
		parts = append(parts, x.SQL(b))
	}
	return "(" + strings.Join(parts, " AND ") + ")"
}

type Or []Expr

func (e Or) SQL(b *Builder) string {
	switch len(e) {
	case 0:
		return False.SQL(b)
	case 1:
		return e[0].SQL(b)
	}
	parts := make([]string, 0, len(e))
	for _, x := range e {
		parts = append(parts, x.SQL(b))
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}

type Not struct {
	Expr Expr
}

func (e Not) SQL(b *Builder) string {
	return "NOT (" + e.Expr.SQL(b) + ")"
}

// In checks if expression is in the list of values.
type In struct {
	Expr   Expr
	Values []Expr
	Not    bool
}

func (e In) SQL(b *Builder) string {
	if len(e.Values) == 0 {
		if e.Not {
			return True.SQL(b)
		}
		return False.SQL(b)
	}
	parts := make([]string, 0, len(e.Values))
	for _, v := range e.Values {
		parts = append(parts, v.SQL(b))
	}
	op := " IN "
	if e.Not {
		op = " NOT IN "
	}
	return e.Expr.SQL(b) + op + "(" + strings.Join(parts, ", ") + ")"
}

// InQuery checks if expression is in the results of a single-column query.
type InQuery struct {
	Expr  Expr
	Query Query
	Not   bool
}

func (e InQuery) SQL(b *Builder) string {
	op := " IN "
	if e.Not {
		op = " NOT IN "
	}
	return e.Expr.SQL(b) + op + "(" + e.Query.SQL(b) + ")"
}

type Exists struct {
	Query Query
	Not   bool
}

func (e Exists) SQL(b *Builder) string {
	s := "EXISTS (" + e.Query.SQL(b) + ")"
	if e.Not {
		s = "NOT " + s
	}
	return s
}

// Scalar is a subquery that returns a single value.
type Scalar struct {
	Query Query
}

func (e Scalar) SQL(b *Builder) string {
	return "(" + e.Query.SQL(b) + ")"
}

// Func is a function call or an aggregate.
type Func struct {
	Name     string
	Args     []Expr
	Distinct bool
}

func (f Func) SQL(b *Builder) string {
	parts := make([]string, 0, len(f.Args))
	for _, a := range f.Args {
		parts = append(parts, a.SQL(b))
	}
	s := f.Name + "("
	if f.Distinct {
		s += "DISTINCT "
	}
	return s + strings.Join(parts, ", ") + ")"
}

func Count() Expr {
	return Func{Name: "COUNT", Args: []Expr{Raw("*")}}
}

type When struct {
	Cond Expr
	Then Expr
}

// Case is a searched CASE expression. If Operand is set, conditions are compared with it.
type Case struct {
	Operand Expr
	When    []When
	Else    Expr
}

func (c Case) SQL(b *Builder) string {
	s := "CASE"
	if c.Operand != nil {
		s += " " + c.Operand.SQL(b)
	}
	for _, w := range c.When {
		s += " WHEN " + w.Cond.SQL(b) + " THEN " + w.Then.SQL(b)
	}
	if c.Else != nil {
		s += " ELSE " + c.Else.SQL(b)
	}
	return s + " END"
}

// Concat joins string expressions.
type Concat []Expr

func (c Concat) SQL(b *Builder) string {
	parts := make([]string, 0, len(c))
	for _, x := range c {
		parts = append(parts, x.SQL(b))
	}
	return b.d.concat(parts)
}

// AsText converts an expression to a string.
type AsText struct {
	Expr Expr
}

func (e AsText) SQL(b *Builder) string {
	return "CAST(" + e.Expr.SQL(b) + " AS " + b.d.textType() + ")"
}

// Cast converts a value to a type of a property column.
type Cast struct {
	Expr Expr
	Type PropertyType
}

func (e Cast) SQL(b *Builder) string {
	var typ string
	switch e.Type {
	case TypeInt:
		typ = orDefault(b.d.IntCast, "BIGINT")
	case TypeFloat:
		typ = orDefault(b.d.FloatCast, "double precision")
	case TypeBool:
		typ = orDefault(b.d.BoolCast, "BOOLEAN")
	default:
		typ = b.d.textType()
	}
	return "CAST(" + e.Expr.SQL(b) + " AS " + typ + ")"
}

// Random returns a random number for each row.
type Random struct{}

func (Random) SQL(b *Builder) string {
	return b.d.random()
}

// JSONArray builds a JSON array from a list of values.
type JSONArray []Expr

func (e JSONArray) SQL(b *Builder) string {
	return Func{Name: b.d.jsonArray(), Args: []Expr(e)}.SQL(b)
}

// JSONObject builds a JSON object from a list of keys and values.
type JSONObject struct {
	Keys   []string
	Values []Expr
}

func (e JSONObject) SQL(b *Builder) string {
	args := make([]Expr, 0, 2*len(e.Keys))
	for i, k := range e.Keys {
		args = append(args, String(k), e.Values[i])
	}
	return Func{Name: b.d.jsonObject(), Args: args}.SQL(b)
}

// JSONArrayAgg aggregates values of a group into a JSON array.
type JSONArrayAgg struct {
	Expr Expr
}

func (e JSONArrayAgg) SQL(b *Builder) string {
	return Func{Name: b.d.jsonArrayAgg(), Args: []Expr{e.Expr}}.SQL(b)
}

// JSONObjectAgg aggregates key-value pairs of a group into a JSON object.
type JSONObjectAgg struct {
	Key   Expr
	Value Expr
}

func (e JSONObjectAgg) SQL(b *Builder) string {
	return Func{Name: b.d.jsonObjectAgg(), Args: []Expr{e.Key, e.Value}}.SQL(b)
}

// JSONValue marks an expression that returns JSON text computed by a subquery,
// so it is embedded into other JSON values as is and not as a string.
type JSONValue struct {
	Expr Expr
}

func (e JSONValue) SQL(b *Builder) string {
	if b.d.JSONParse == "" {
		return e.Expr.SQL(b)
	}
	return Func{Name: b.d.JSONParse, Args: []Expr{e.Expr}}.SQL(b)
}
