package cockroach

import (
	"database/sql"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/cayleygraph/gremsql/graph/sql/sqltest"
)

// makeCockroach creates a new database on the cluster set by GREMSQL_COCKROACH_ADDR.
func makeCockroach(t testing.TB) (string, func()) {
	addr := os.Getenv("GREMSQL_COCKROACH_ADDR")
	if addr == "" {
		t.Skip("GREMSQL_COCKROACH_ADDR is not set")
	}
	u, err := url.Parse(addr)
	if err != nil {
		t.Fatal(err)
	}
	conn, err := sql.Open(driverName, addr)
	if err != nil {
		t.Fatal(err)
	}
	name := "gremsql_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	if _, err = conn.Exec(`CREATE DATABASE ` + name); err != nil {
		conn.Close()
		t.Fatal(err)
	}
	u.Path = "/" + name
	return u.String(), func() {
		conn.Exec(`DROP DATABASE ` + name + ` CASCADE`)
		conn.Close()
	}
}

func TestCockroach(t *testing.T) {
	sqltest.TestAll(t, Type, makeCockroach, nil)
}

func TestRetryable(t *testing.T) {
	if retryable(sql.ErrNoRows) {
		t.Fatal("unexpected retry")
	}
}
