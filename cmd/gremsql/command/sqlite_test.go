//go:build cgo
// +build cgo

package command

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testGraph = `{
 "vertices": [
  {"id": "1", "label": "person", "properties": {"name": "marko", "age": 29}},
  {"id": "2", "label": "person", "properties": {"name": "josh", "age": 32}},
  {"id": "3", "label": "software", "properties": {"name": "lop"}}
 ],
 "edges": [
  {"id": "4", "label": "created", "out": "1", "in": "3"},
  {"id": "5", "label": "created", "out": "2", "in": "3"}
 ]
}`

func TestSqliteWorkflow(t *testing.T) {
	dir := t.TempDir()
	graph := filepath.Join(dir, "graph.json")
	require.NoError(t, os.WriteFile(graph, []byte(testGraph), 0644))

	db := []string{
		"--backend", "sqlite",
		"--address", "file:" + filepath.Join(dir, "graph.db") + "?_loc=UTC",
		"--vertex_properties", "name,age:int",
	}
	with := func(args ...string) []string {
		return append(args, db...)
	}

	_, err := run(t, with("init")...)
	require.NoError(t, err)

	_, err = run(t, with("load", graph)...)
	require.NoError(t, err)

	out, err := run(t, with("query", "g.V().has('age', P.gt(30)).values('name')")...)
	require.NoError(t, err)
	require.Equal(t, "{\"value\":\"josh\"}\n", out)

	out, err = run(t, with("query", "g.V('3').in('created').count()")...)
	require.NoError(t, err)
	require.Equal(t, "{\"value\":2}\n", out)

	// init on an existing database is skipped
	_, err = run(t, with("query", "--init", "g.V().count()")...)
	require.NoError(t, err)
}
