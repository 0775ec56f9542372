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
	"strings"
)

const (
	VerticesTable = "vertices"
	EdgesTable    = "edges"
)

// Columns that are present in every graph table.
var (
	VertexColumns = []string{"id", "label"}
	EdgeColumns   = []string{"id", "label", "out_v", "in_v"}
)

type PropertyType string

const (
	TypeString = PropertyType("string")
	TypeInt    = PropertyType("int")
	TypeFloat  = PropertyType("float")
	TypeBool   = PropertyType("bool")
)

// Property is a column of a vertex or an edge table that stores a property value.
type Property struct {
	Name string
	Type PropertyType
}

// Schema lists property columns of graph tables.
type Schema struct {
	Vertex []Property
	Edge   []Property
}

func isReserved(name string) bool {
	switch name {
	case "id", "label", "out_v", "in_v":
		return true
	}
	return false
}

// ParseProperties parses property definitions in the form "name[:type]".
func ParseProperties(defs []string) ([]Property, error) {
	out := make([]Property, 0, len(defs))
	seen := make(map[string]struct{})
	for _, d := range defs {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		p := Property{Name: d, Type: TypeString}
		if i := strings.IndexByte(d, ':'); i >= 0 {
			p.Name, p.Type = d[:i], PropertyType(d[i+1:])
		}
		switch p.Type {
		case TypeString, TypeInt, TypeFloat, TypeBool:
		default:
			return nil, fmt.Errorf("unsupported type of property %q: %q", p.Name, p.Type)
		}
		if p.Name == "" || isReserved(p.Name) {
			return nil, fmt.Errorf("invalid property name: %q", p.Name)
		}
		if _, ok := seen[p.Name]; ok {
			return nil, fmt.Errorf("duplicate property: %q", p.Name)
		}
		seen[p.Name] = struct{}{}
		out = append(out, p)
	}
	return out, nil
}

func findProperty(props []Property, name string) (Property, bool) {
	for _, p := range props {
		if p.Name == name {
			return p, true
		}
	}
	return Property{}, false
}

func (s Schema) VertexProperty(name string) (Property, bool) {
	return findProperty(s.Vertex, name)
}

func (s Schema) EdgeProperty(name string) (Property, bool) {
	return findProperty(s.Edge, name)
}

// IsEmpty reports whether schema has no property columns.
func (s Schema) IsEmpty() bool {
	return len(s.Vertex) == 0 && len(s.Edge) == 0
}

func (r Registration) columnType(t PropertyType) string {
	switch t {
	case TypeInt:
		return orDefault(r.IntType, "BIGINT")
	case TypeFloat:
		return orDefault(r.FloatType, "double precision")
	case TypeBool:
		return orDefault(r.BoolType, "BOOLEAN")
	}
	return orDefault(r.StringType, "TEXT")
}

func (r Registration) table(name string, base []string, props []Property) string {
	idt := orDefault(r.IDType, "TEXT")
	var cols []string
	for _, c := range base {
		col := "\t" + c + " " + idt
		if c == "id" {
			col += " PRIMARY KEY"
		} else {
			col += " NOT NULL"
		}
		cols = append(cols, col)
	}
	b := NewBuilder(r.QueryDialect)
	for _, p := range props {
		cols = append(cols, "\t"+b.EscapeField(p.Name)+" "+r.columnType(p.Type))
	}
	return "CREATE TABLE " + name + " (\n" + strings.Join(cols, ",\n") + "\n);"
}

// Tables returns statements that create graph tables, indexes and functions.
func (r Registration) Tables(s Schema) []string {
	out := []string{
		r.table(VerticesTable, VertexColumns, s.Vertex),
		r.table(EdgesTable, EdgeColumns, s.Edge),
		`CREATE INDEX vertices_label ON vertices (label);`,
		`CREATE INDEX edges_out ON edges (out_v, label);`,
		`CREATE INDEX edges_in ON edges (in_v, label);`,
	}
	if !r.NoForeignKeys {
		out = append(out,
			`ALTER TABLE edges ADD CONSTRAINT out_v_fk FOREIGN KEY (out_v) REFERENCES vertices (id) ON DELETE CASCADE;`,
			`ALTER TABLE edges ADD CONSTRAINT in_v_fk FOREIGN KEY (in_v) REFERENCES vertices (id) ON DELETE CASCADE;`,
		)
	}
	out = append(out, r.Functions...)
	return out
}
