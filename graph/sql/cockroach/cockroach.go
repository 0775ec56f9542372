package cockroach

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	csql "github.com/cayleygraph/gremsql/graph/sql"
	"github.com/cayleygraph/gremsql/graph/sql/postgres"
)

const Type = "cockroach"

const driverName = "pgx"

// QueryDialect is the same as for PostgreSQL, but hops are rendered as lateral subqueries
// since user-defined set-returning functions are not available.
var QueryDialect = func() csql.QueryDialect {
	d := postgres.QueryDialect
	d.Adjacency = nil
	return d
}()

func init() {
	csql.Register(Type, csql.Registration{
		Driver:              driverName,
		IDType:              `STRING`,
		StringType:          `STRING`,
		QueryDialect:        QueryDialect,
		NoForeignKeys:       true,
		Error:               ConvError,
		TxRetry:             retryTxCockroach,
		NoSchemaChangesInTx: true,
	})
}

func ConvError(err error) error {
	var e *pgconn.PgError
	if !errors.As(err, &e) {
		return err
	}
	switch e.Code {
	case "42P07":
		return csql.ErrDatabaseExists
	}
	return err
}

// AmbiguousCommitError represents an error that left a transaction in an
// ambiguous state: unclear if it committed or not.
type AmbiguousCommitError struct {
	error
}

func retryable(err error) bool {
	var e *pgconn.PgError
	// We look for either the standard PG errcode SerializationFailureError:40001 or the Cockroach extension
	// errcode RetriableError:CR000.
	return errors.As(err, &e) && (e.Code == "CR000" || e.Code == "40001")
}

// retryTxCockroach runs the transaction and will retry in case of a retryable error.
// https://www.cockroachlabs.com/docs/transactions.html#client-side-transaction-retries
func retryTxCockroach(tx *sql.Tx, stmts func() error) error {
	// Specify that we intend to retry this txn in case of CockroachDB retryable
	// errors.
	if _, err := tx.Exec("SAVEPOINT cockroach_restart"); err != nil {
		return err
	}

	for {
		released := false

		err := stmts()

		if err == nil {
			// RELEASE acts like COMMIT in CockroachDB. We use it since it gives us an
			// opportunity to react to retryable errors, whereas tx.Commit() doesn't.
			released = true
			if _, err = tx.Exec("RELEASE SAVEPOINT cockroach_restart"); err == nil {
				return nil
			}
		}
		if !retryable(err) {
			if released {
				err = &AmbiguousCommitError{err}
			}
			return err
		}
		if _, err = tx.Exec("ROLLBACK TO SAVEPOINT cockroach_restart"); err != nil {
			return err
		}
	}
}
