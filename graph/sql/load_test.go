package sql

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadGraph(t *testing.T) {
	g, err := ReadGraph(strings.NewReader(`{
		"vertices": [{"id": "1", "label": "person", "properties": {"name": "marko", "age": 29}}],
		"edges": [{"label": "knows", "out": "1", "in": "1", "properties": {"weight": 0.5}}]
	}`))
	require.NoError(t, err)
	require.Len(t, g.Vertices, 1)
	require.Len(t, g.Edges, 1)

	s := Schema{
		Vertex: []Property{{Name: "name", Type: TypeString}, {Name: "age", Type: TypeInt}},
		Edge:   []Property{{Name: "weight", Type: TypeFloat}},
	}
	v := g.Vertices[0]
	ins, err := elementInsert(VerticesTable, VertexColumns, []interface{}{v.ID, v.Label}, s.Vertex, v.Properties)
	require.NoError(t, err)
	qu, args, err := NewBuilder(DefaultDialect).Build(ins)
	require.NoError(t, err)
	require.Equal(t, `INSERT INTO vertices (id, label, age, name) VALUES (?, ?, ?, ?)`, qu)
	require.Equal(t, []interface{}{"1", "person", int64(29), "marko"}, args)

	e := g.Edges[0]
	ins, err = elementInsert(EdgesTable, EdgeColumns, []interface{}{"e0", e.Label, e.Out, e.In}, s.Edge, e.Properties)
	require.NoError(t, err)
	_, args, err = NewBuilder(DefaultDialect).Build(ins)
	require.NoError(t, err)
	require.Equal(t, []interface{}{"e0", "knows", "1", "1", 0.5}, args)

	// properties must be declared in the schema
	_, err = elementInsert(VerticesTable, VertexColumns, []interface{}{"2", "person"}, s.Vertex, map[string]interface{}{"height": 1})
	require.Error(t, err)
}
