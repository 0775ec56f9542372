//+build cgo

package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	csql "github.com/cayleygraph/gremsql/graph/sql"
	"github.com/cayleygraph/gremsql/graph/sql/sqltest"
)

func makeSqlite(t testing.TB) (string, func()) {
	path := filepath.Join(t.TempDir(), "graph.db")
	return "file:" + path + "?_loc=UTC", func() {}
}

func TestSqlite(t *testing.T) {
	sqltest.TestAll(t, Type, makeSqlite, nil)
}

func TestRegexp(t *testing.T) {
	db := sqltest.Open(t, Type, makeSqlite)
	res, err := db.Run(context.Background(), []string{"name"}, []csql.Rendered{{
		SQL:   `SELECT name FROM vertices WHERE name REGEXP ? ORDER BY name`,
		Args:  []interface{}{"^(j|p)"},
		Query: true,
	}})
	require.NoError(t, err)
	require.Equal(t, [][]interface{}{{"josh"}, {"peter"}}, res.Rows)
}
