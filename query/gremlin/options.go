package gremlin

import (
	"github.com/google/uuid"

	"github.com/cayleygraph/gremsql/graph/sql"
)

// Options controls how traversals are lowered.
type Options struct {
	// Schema lists property columns of graph tables. Empty schema accepts any property name.
	Schema sql.Schema
	// TableFunctions lowers vertex hops to adjacency table functions instead of joins.
	TableFunctions bool
	// NewID generates ids for vertices and edges added by a traversal.
	// Defaults to random UUIDs.
	NewID func() string
}

func (o *Options) newID() string {
	if o.NewID != nil {
		return o.NewID()
	}
	return uuid.NewString()
}

// propertyType returns a type of property column, or false if the name is not known.
// Base columns are always known and are strings.
func (o *Options) propertyType(vertex bool, name string) (sql.PropertyType, bool) {
	base := sql.EdgeColumns
	if vertex {
		base = sql.VertexColumns
	}
	for _, c := range base {
		if c == name {
			return sql.TypeString, true
		}
	}
	if o.Schema.IsEmpty() {
		return sql.TypeString, true
	}
	var (
		p  sql.Property
		ok bool
	)
	if vertex {
		p, ok = o.Schema.VertexProperty(name)
	} else {
		p, ok = o.Schema.EdgeProperty(name)
	}
	return p.Type, ok
}

// properties returns names of all property columns of vertices or edges.
func (o *Options) properties(vertex bool) []string {
	props := o.Schema.Edge
	if vertex {
		props = o.Schema.Vertex
	}
	out := make([]string, 0, len(props))
	for _, p := range props {
		out = append(out, p.Name)
	}
	return out
}
