package command

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/phayes/freeport"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/cayleygraph/gremsql/internal/catalog"
)

func run(t testing.TB, args ...string) (string, error) {
	viper.Reset()
	cmd := NewRootCmd()
	buf := bytes.NewBuffer(nil)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	require.Equal(t, "gremsql snapshot\n", out)
}

func TestCompile(t *testing.T) {
	out, err := run(t, "compile", "g.V().hasLabel('person')")
	require.NoError(t, err)
	require.Equal(t, "SELECT n_0.id AS id, n_0.label AS label FROM vertices AS n_0 WHERE n_0.label IN (?)\n"+
		"-- args: [\"person\"]\n", out)
}

func TestCompileDialect(t *testing.T) {
	out, err := run(t, "compile", "--dialect", "postgres", "g.V().hasLabel('person')")
	require.NoError(t, err)
	require.Contains(t, out, "n_0.label IN ($1)")

	_, err = run(t, "compile", "--dialect", "oracle", "g.V()")
	require.Error(t, err)
}

func TestCompileSchema(t *testing.T) {
	_, err := run(t, "compile", "--vertex_properties", "name,age:int", "g.V().values('height')")
	require.Error(t, err)

	out, err := run(t, "compile", "--vertex_properties", "name,age:int", "g.V().values('age')")
	require.NoError(t, err)
	require.Contains(t, out, "n_0.age")
}

func TestQueryWithoutBackend(t *testing.T) {
	_, err := run(t, "query", "g.V()")
	require.ErrorIs(t, err, ErrNoBackend)
}

func TestCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog")

	_, err := run(t, "save", "--catalog", path, "people", "g.V().hasLabel('person')")
	require.NoError(t, err)
	_, err = run(t, "save", "--catalog", path, "broken", "g.V(]")
	require.Error(t, err)

	out, err := run(t, "list", "--catalog", path)
	require.NoError(t, err)
	require.Equal(t, "people\t[js]\tg.V().hasLabel('person')\n", out)
}

func TestCatalogBadger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog")

	_, err := run(t, "save", "--catalog", path, "--catalog_backend", "badger", "people", "g.V().hasLabel('person')")
	require.NoError(t, err)

	out, err := run(t, "list", "--catalog", path, "--catalog_backend", "badger")
	require.NoError(t, err)
	require.Equal(t, "people\t[js]\tg.V().hasLabel('person')\n", out)

	_, err = run(t, "list", "--catalog", path, "--catalog_backend", "bolt")
	require.ErrorIs(t, err, catalog.ErrUnknownBackend)
}

func TestHTTP(t *testing.T) {
	port, err := freeport.GetFreePort()
	require.NoError(t, err)
	addr := fmt.Sprintf("127.0.0.1:%d", port)

	viper.Reset()
	cmd := NewRootCmd()
	cmd.SetArgs([]string{"http", "--host", addr})
	go cmd.Execute()

	uri := "http://" + addr
	require.Eventually(t, func() bool {
		resp, err := http.Get(uri + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusNoContent
	}, 10*time.Second, 50*time.Millisecond)

	resp, err := http.Post(uri+"/api/v1/compile", "text/plain", strings.NewReader(`g.V().count()`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out struct {
		SQL []string `json:"sql"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out.SQL, 1)
}
