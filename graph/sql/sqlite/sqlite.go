//+build cgo

package sqlite

import (
	"database/sql"
	"errors"
	"regexp"
	"strings"

	sqlite3 "github.com/mattn/go-sqlite3"

	csql "github.com/cayleygraph/gremsql/graph/sql"
)

const Type = "sqlite"

var QueryDialect = csql.QueryDialect{
	RegexpOp: "REGEXP",
	FieldQuote: func(name string) string {
		return "`" + name + "`"
	},
	Placeholder:          func(n int) string { return "?" },
	NoLateral:            true,
	NoOffsetWithoutLimit: true,
	IntCast:              "INTEGER",
	FloatCast:            "REAL",
	JSONArray:            "json_array",
	JSONObject:           "json_object",
	JSONArrayAgg:         "json_group_array",
	JSONObjectAgg:        "json_group_object",
	JSONParse:            "json",
}

func init() {
	regex := func(re, s string) (bool, error) {
		return regexp.MatchString(re, s)
	}
	sql.Register("sqlite3-regexp",
		&sqlite3.SQLiteDriver{
			ConnectHook: func(conn *sqlite3.SQLiteConn) error {
				return conn.RegisterFunc("regexp", regex, true)
			},
		})
	csql.Register(Type, csql.Registration{
		Driver:        "sqlite3-regexp",
		IDType:        `TEXT`,
		IntType:       `INTEGER`,
		FloatType:     `REAL`,
		QueryDialect:  QueryDialect,
		NoForeignKeys: true,
		Error:         ConvError,
	})
}

func ConvError(err error) error {
	var e sqlite3.Error
	if !errors.As(err, &e) {
		return err
	}
	if e.Code == sqlite3.ErrError && strings.Contains(e.Error(), "already exists") {
		return csql.ErrDatabaseExists
	}
	return err
}
