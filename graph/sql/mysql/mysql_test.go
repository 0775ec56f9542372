package mysql

import (
	"database/sql"
	"os"
	"strings"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"github.com/cayleygraph/gremsql/graph/sql/sqltest"
)

// makeMysql creates a new database on the server set by GREMSQL_MYSQL_ADDR.
func makeMysql(t testing.TB) (string, func()) {
	addr := os.Getenv("GREMSQL_MYSQL_ADDR")
	if addr == "" {
		t.Skip("GREMSQL_MYSQL_ADDR is not set")
	}
	conf, err := mysql.ParseDSN(addr)
	if err != nil {
		t.Fatal(err)
	}
	conn, err := sql.Open("mysql", addr)
	if err != nil {
		t.Fatal(err)
	}
	name := "gremsql_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	if _, err = conn.Exec(`CREATE DATABASE ` + name); err != nil {
		conn.Close()
		t.Fatal(err)
	}
	conf.DBName = name
	return conf.FormatDSN(), func() {
		conn.Exec(`DROP DATABASE ` + name)
		conn.Close()
	}
}

func TestMysql(t *testing.T) {
	sqltest.TestAll(t, Type, makeMysql, nil)
}
