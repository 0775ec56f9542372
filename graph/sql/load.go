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
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/cayleygraph/gremsql/clog"
)

// Vertex is a graph vertex in the interchange format used for bulk loading.
type Vertex struct {
	ID         string                 `json:"id"`
	Label      string                 `json:"label"`
	Properties map[string]interface{} `json:"properties,omitempty"`
}

// Edge is a graph edge in the interchange format used for bulk loading.
type Edge struct {
	ID         string                 `json:"id"`
	Label      string                 `json:"label"`
	Out        string                 `json:"out"`
	In         string                 `json:"in"`
	Properties map[string]interface{} `json:"properties,omitempty"`
}

type Graph struct {
	Vertices []Vertex `json:"vertices"`
	Edges    []Edge   `json:"edges"`
}

// ReadGraph decodes a JSON graph document.
func ReadGraph(r io.Reader) (*Graph, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var g Graph
	if err := dec.Decode(&g); err != nil {
		return nil, err
	}
	return &g, nil
}

func convProperty(p Property, v interface{}) (interface{}, error) {
	n, ok := v.(json.Number)
	if !ok {
		return v, nil
	}
	switch p.Type {
	case TypeInt:
		return n.Int64()
	case TypeFloat:
		return n.Float64()
	case TypeString:
		return n.String(), nil
	}
	return nil, fmt.Errorf("unexpected number for property %q of type %s", p.Name, p.Type)
}

func elementInsert(table string, base []string, vals []interface{}, props []Property, m map[string]interface{}) (Insert, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	ins := Insert{Table: table, Columns: append([]string{}, base...)}
	row := make([]Expr, 0, len(base)+len(keys))
	for _, v := range vals {
		row = append(row, Param{Value: v})
	}
	for _, k := range keys {
		p, ok := findProperty(props, k)
		if !ok {
			return Insert{}, fmt.Errorf("property %q is not defined in the schema of %s", k, table)
		}
		v, err := convProperty(p, m[k])
		if err != nil {
			return Insert{}, err
		}
		ins.Columns = append(ins.Columns, k)
		row = append(row, Param{Value: v})
	}
	ins.Values = [][]Expr{row}
	return ins, nil
}

// Load inserts all vertices and edges of the graph in a single transaction.
func (d *Database) Load(ctx context.Context, g *Graph, s Schema) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	b := NewBuilder(d.reg.QueryDialect)
	exec := func(st Statement) error {
		qu, args, err := b.Build(st)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, qu, args...)
		return d.reg.convError(err)
	}
	for i, v := range g.Vertices {
		if v.ID == "" {
			v.ID = strconv.Itoa(i)
		}
		st, err := elementInsert(VerticesTable, VertexColumns, []interface{}{v.ID, v.Label}, s.Vertex, v.Properties)
		if err != nil {
			return err
		}
		if err = exec(st); err != nil {
			clog.Errorf("cannot insert vertex %q: %v", v.ID, err)
			return err
		}
		mLoadVertices.Inc()
	}
	for i, e := range g.Edges {
		if e.ID == "" {
			e.ID = "e" + strconv.Itoa(i)
		}
		st, err := elementInsert(EdgesTable, EdgeColumns, []interface{}{e.ID, e.Label, e.Out, e.In}, s.Edge, e.Properties)
		if err != nil {
			return err
		}
		if err = exec(st); err != nil {
			clog.Errorf("cannot insert edge %q: %v", e.ID, err)
			return err
		}
		mLoadEdges.Inc()
	}
	return tx.Commit()
}
