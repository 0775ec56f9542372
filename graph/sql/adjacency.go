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

// Direction of a hop between vertices.
type Direction string

const (
	DirOut  = Direction("out")
	DirIn   = Direction("in")
	DirBoth = Direction("both")
)

// Reverse returns the opposite direction.
func (d Direction) Reverse() Direction {
	switch d {
	case DirOut:
		return DirIn
	case DirIn:
		return DirOut
	}
	return d
}

// near and far return edge columns that point to the start and the end of a hop.
func (d Direction) near() string {
	if d == DirIn {
		return "in_v"
	}
	return "out_v"
}

func (d Direction) far() string {
	if d == DirIn {
		return "out_v"
	}
	return "in_v"
}

const (
	// AdjacentFunc is the name of a table-valued function that returns neighbour vertices.
	AdjacentFunc = "gremlin_adjacent"
	// IncidentFunc is the name of a table-valued function that returns incident edges.
	IncidentFunc = "gremlin_incident"

	adjEdge   = "adj_e"
	adjVertex = "adj_v"
	adjSource = "adj_src"
)

// Adjacency is a table-valued source that returns vertices adjacent to (or edges incident to) a given vertex.
//
// Databases that support table-valued functions render it as a function call. Others render
// an equivalent lateral subquery, or, if lateral subqueries are not supported, an uncorrelated
// subquery that is joined with an explicit condition in WHERE.
type Adjacency struct {
	From   Expr // vertex id
	Dir    Direction
	Labels []string
	Edges  bool // return incident edges instead of adjacent vertices
	Alias  string
}

func (Adjacency) isSource() {}

func (a Adjacency) decorrelated(b *Builder) bool {
	return a.From != nil && b.d.Adjacency == nil && b.d.NoLateral
}

func (a Adjacency) correlation() Expr {
	return Eq(FieldName{Table: a.Alias, Name: adjSource}, a.From)
}

func (a Adjacency) SQL(b *Builder) string {
	if b.d.Adjacency != nil {
		return b.d.Adjacency(b, a) + " AS " + b.EscapeField(a.Alias)
	}
	lateral := !a.decorrelated(b)
	var q Query
	if a.Dir == DirBoth {
		q = Union{All: true, Queries: []Query{a.hop(DirOut, lateral), a.hop(DirIn, lateral)}}
	} else {
		q = a.hop(a.Dir, lateral)
	}
	return Subquery{Query: q, Alias: a.Alias, Lateral: lateral}.SQL(b)
}

func (a Adjacency) hop(d Direction, correlated bool) Select {
	e := Table{Name: "edges", Alias: adjEdge}
	s := Select{From: []Source{e}}
	if !correlated {
		s.Fields = append(s.Fields, Column(adjEdge, d.near(), adjSource))
	} else {
		s.Where = append(s.Where, Eq(FieldName{Table: adjEdge, Name: d.near()}, a.From))
	}
	if a.Edges {
		s.Fields = append(s.Fields, Field{Expr: Raw(adjEdge + ".*")})
	} else {
		s.From = append(s.From, Table{Name: "vertices", Alias: adjVertex})
		s.Fields = append(s.Fields, Field{Expr: Raw(adjVertex + ".*")})
		s.Where = append(s.Where, Eq(FieldName{Table: adjVertex, Name: "id"}, FieldName{Table: adjEdge, Name: d.far()}))
	}
	if len(a.Labels) != 0 {
		s.Where = append(s.Where, In{Expr: FieldName{Table: adjEdge, Name: "label"}, Values: Params(a.Labels)})
	}
	return s
}

// Params converts a list of strings to query parameters.
func Params(arr []string) []Expr {
	out := make([]Expr, 0, len(arr))
	for _, s := range arr {
		out = append(out, Param{Value: s})
	}
	return out
}
