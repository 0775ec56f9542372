package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	csql "github.com/cayleygraph/gremsql/graph/sql"
)

const Type = "postgres"

var QueryDialect = csql.QueryDialect{
	RegexpOp:   "~",
	FieldQuote: pq.QuoteIdentifier,
	Placeholder: func(n int) string {
		return fmt.Sprintf("$%d", n)
	},
	Adjacency: AdjacencyFunc,
}

func init() {
	csql.Register(Type, csql.Registration{
		Driver:       "postgres",
		IDType:       `TEXT`,
		QueryDialect: QueryDialect,
		Functions:    Functions,
		Error:        ConvError,
	})
}

// AdjacencyFunc renders a hop as a call of a set-returning function created by Functions.
func AdjacencyFunc(b *csql.Builder, a csql.Adjacency) string {
	name := csql.AdjacentFunc
	if a.Edges {
		name = csql.IncidentFunc
	}
	from := a.From.SQL(b)
	labels := "NULL::text[]"
	if len(a.Labels) != 0 {
		ph := make([]string, 0, len(a.Labels))
		for _, l := range a.Labels {
			ph = append(ph, b.Arg(l))
		}
		labels = "ARRAY[" + strings.Join(ph, ", ") + "]::text[]"
	}
	return name + "(" + from + ", '" + string(a.Dir) + "', " + labels + ")"
}

// Functions create table-valued functions that return adjacent vertices and incident edges.
var Functions = []string{
	`CREATE OR REPLACE FUNCTION ` + csql.AdjacentFunc + `(vid TEXT, dir TEXT, labels TEXT[]) RETURNS SETOF vertices AS $$
	SELECT v.* FROM edges AS e, vertices AS v
	WHERE dir IN ('out', 'both') AND e.out_v = vid AND v.id = e.in_v AND (labels IS NULL OR e.label = ANY(labels))
	UNION ALL
	SELECT v.* FROM edges AS e, vertices AS v
	WHERE dir IN ('in', 'both') AND e.in_v = vid AND v.id = e.out_v AND (labels IS NULL OR e.label = ANY(labels))
$$ LANGUAGE SQL STABLE;`,
	`CREATE OR REPLACE FUNCTION ` + csql.IncidentFunc + `(vid TEXT, dir TEXT, labels TEXT[]) RETURNS SETOF edges AS $$
	SELECT e.* FROM edges AS e
	WHERE dir IN ('out', 'both') AND e.out_v = vid AND (labels IS NULL OR e.label = ANY(labels))
	UNION ALL
	SELECT e.* FROM edges AS e
	WHERE dir IN ('in', 'both') AND e.in_v = vid AND (labels IS NULL OR e.label = ANY(labels))
$$ LANGUAGE SQL STABLE;`,
}

func ConvError(err error) error {
	var e *pq.Error
	if !errors.As(err, &e) {
		return err
	}
	switch e.Code {
	case "42P07":
		return csql.ErrDatabaseExists
	}
	return err
}
