package postgres

import (
	"database/sql"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/cayleygraph/gremsql/graph/sql/sqltest"
)

// makePostgres creates a new schema in the database set by GREMSQL_POSTGRES_ADDR
// and points the search path to it.
func makePostgres(t testing.TB) (string, func()) {
	addr := os.Getenv("GREMSQL_POSTGRES_ADDR")
	if addr == "" {
		t.Skip("GREMSQL_POSTGRES_ADDR is not set")
	}
	conn, err := sql.Open("postgres", addr)
	if err != nil {
		t.Fatal(err)
	}
	name := "gremsql_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	if _, err = conn.Exec(`CREATE SCHEMA ` + name); err != nil {
		conn.Close()
		t.Fatal(err)
	}
	u, err := url.Parse(addr)
	if err != nil {
		conn.Close()
		t.Fatal(err)
	}
	q := u.Query()
	q.Set("search_path", name)
	u.RawQuery = q.Encode()
	return u.String(), func() {
		conn.Exec(`DROP SCHEMA ` + name + ` CASCADE`)
		conn.Close()
	}
}

func TestPostgres(t *testing.T) {
	sqltest.TestAll(t, Type, makePostgres, nil)
}
