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

// Insert adds rows to a table, either from a list of values or from a query.
type Insert struct {
	Table   string
	Columns []string
	Values  [][]Expr
	Query   Query
}

func (s Insert) SQL(b *Builder) string {
	cols := make([]string, 0, len(s.Columns))
	for _, c := range s.Columns {
		cols = append(cols, b.EscapeField(c))
	}
	q := "INSERT INTO " + s.Table + " (" + strings.Join(cols, ", ") + ") "
	if s.Query != nil {
		return q + s.Query.SQL(b)
	}
	rows := make([]string, 0, len(s.Values))
	for _, row := range s.Values {
		vals := make([]string, 0, len(row))
		for _, v := range row {
			vals = append(vals, v.SQL(b))
		}
		rows = append(rows, "("+strings.Join(vals, ", ")+")")
	}
	return q + "VALUES " + strings.Join(rows, ", ")
}

type Assign struct {
	Column string
	Value  Expr
}

// Update changes columns of rows matching the condition.
type Update struct {
	Table string
	Set   []Assign
	Where []Expr
}

func (s Update) SQL(b *Builder) string {
	sets := make([]string, 0, len(s.Set))
	for _, a := range s.Set {
		sets = append(sets, b.EscapeField(a.Column)+" = "+a.Value.SQL(b))
	}
	q := "UPDATE " + s.Table + " SET " + strings.Join(sets, ", ")
	if len(s.Where) != 0 {
		q += " WHERE " + And(s.Where).SQL(b)
	}
	return q
}

// Delete removes rows matching the condition.
type Delete struct {
	Table string
	Where []Expr
}

func (s Delete) SQL(b *Builder) string {
	q := "DELETE FROM " + s.Table
	if len(s.Where) != 0 {
		q += " WHERE " + And(s.Where).SQL(b)
	}
	return q
}

// IDsOf wraps a single-column query of element ids, so it can be used in a condition
// of a statement that modifies the same table.
func IDsOf(q Query, alias string) Query {
	return Select{
		Fields: []Field{Column(alias, "id", "")},
		From:   []Source{Subquery{Query: q, Alias: alias}},
	}
}

// Plan is a compiled traversal: a list of statements that modify the graph,
// followed by an optional query that returns the results.
type Plan struct {
	Mutations []Statement
	Query     Query
	Columns   []string
}

// Rendered is a statement rendered for a specific dialect.
type Rendered struct {
	SQL  string
	Args []interface{}
	// Query is set for the statement that returns results.
	Query bool
}

// Render converts all statements of the plan to SQL. The query, if any, is always the last one.
func (p *Plan) Render(d QueryDialect) ([]Rendered, error) {
	b := NewBuilder(d)
	out := make([]Rendered, 0, len(p.Mutations)+1)
	for _, m := range p.Mutations {
		qu, args, err := b.Build(m)
		if err != nil {
			return nil, err
		}
		out = append(out, Rendered{SQL: qu, Args: args})
	}
	if p.Query != nil {
		qu, args, err := b.Build(p.Query)
		if err != nil {
			return nil, err
		}
		out = append(out, Rendered{SQL: qu, Args: args, Query: true})
	}
	return out, nil
}

// ReadOnly reports if plan does not modify the graph.
func (p *Plan) ReadOnly() bool {
	return len(p.Mutations) == 0
}
