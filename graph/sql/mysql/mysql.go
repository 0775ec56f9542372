package mysql

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"

	csql "github.com/cayleygraph/gremsql/graph/sql"
)

const Type = "mysql"

var QueryDialect = csql.QueryDialect{
	RegexpOp: "REGEXP",
	FieldQuote: func(name string) string {
		return "`" + name + "`"
	},
	Placeholder:          func(n int) string { return "?" },
	FromDual:             true,
	NoOffsetWithoutLimit: true,
	TextType:             "CHAR",
	IntCast:              "SIGNED",
	FloatCast:            "DOUBLE",
	BoolCast:             "UNSIGNED",
	JSONArray:            "JSON_ARRAY",
	JSONObject:           "JSON_OBJECT",
	JSONArrayAgg:         "JSON_ARRAYAGG",
	JSONObjectAgg:        "JSON_OBJECTAGG",
	Random:               "RAND()",
	Concat: func(args []string) string {
		return "CONCAT(" + strings.Join(args, ", ") + ")"
	},
}

func init() {
	csql.Register(Type, csql.Registration{
		Driver: "mysql",
		// indexed columns must have a bounded length
		IDType:       `VARCHAR(191)`,
		FloatType:    `DOUBLE`,
		QueryDialect: QueryDialect,
		Error:        ConvError,
	})
}

func ConvError(err error) error {
	var e *mysql.MySQLError
	if !errors.As(err, &e) {
		return err
	}
	switch e.Number {
	case 1050: // table already exists
		return csql.ErrDatabaseExists
	}
	return err
}
