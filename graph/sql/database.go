// Copyright 2017 The Cayley Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/cayleygraph/gremsql/clog"
)

var ErrDatabaseExists = errors.New("database already initialized")

var types = make(map[string]Registration)

func Register(name string, f Registration) {
	if f.Driver == "" {
		panic("no sql driver in type definition")
	}
	if _, ok := types[name]; ok {
		panic(fmt.Errorf("sql type %q was already registered", name))
	}
	types[name] = f
}

// ByName returns a registration of a database type.
func ByName(name string) (Registration, bool) {
	r, ok := types[name]
	return r, ok
}

// Types returns names of all registered database types.
func Types() []string {
	out := make([]string, 0, len(types))
	for k := range types {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

type Registration struct {
	Driver        string // sql driver to use on dial
	IDType        string // type for id, label and edge endpoint columns
	StringType    string // type for string properties
	IntType       string // type for integer properties
	FloatType     string // type for float properties
	BoolType      string // type for boolean properties
	NoForeignKeys bool   // database has no support for FKs

	QueryDialect

	// Functions are extra statements executed after tables are created.
	Functions []string

	Error               func(error) error // error conversion function
	TxRetry             func(tx *sql.Tx, stmts func() error) error
	NoSchemaChangesInTx bool
}

func (r Registration) convError(err error) error {
	if err == nil || r.Error == nil {
		return err
	}
	return r.Error(err)
}

// Database executes compiled plans against a SQL graph store.
type Database struct {
	db   *sql.DB
	typ  string
	reg  Registration
	opts Options
}

// Options for the database connection.
type Options struct {
	// Limit is the maximal number of rows returned by the query. Zero means no limit.
	Limit int
}

func connect(addr string, flavor string) (*sql.DB, error) {
	conn, err := sql.Open(flavor, addr)
	if err != nil {
		clog.Errorf("couldn't open database at %s: %v", addr, err)
		return nil, err
	}
	// "Open may just validate its arguments without creating a connection to the database."
	// "To verify that the data source name is valid, call Ping."
	// Source: http://golang.org/pkg/database/sql/#Open
	if err := conn.Ping(); err != nil {
		clog.Errorf("couldn't open database at %s: %v", addr, err)
		conn.Close()
		return nil, err
	}
	return conn, nil
}

// Open connects to a database of a given registered type.
func Open(typ, addr string, opts Options) (*Database, error) {
	r, ok := types[typ]
	if !ok {
		return nil, fmt.Errorf("unsupported sql database: %q", typ)
	}
	conn, err := connect(addr, r.Driver)
	if err != nil {
		return nil, err
	}
	return New(conn, typ, opts)
}

// New wraps an existing connection. The typ must be a name of a registered database type.
func New(conn *sql.DB, typ string, opts Options) (*Database, error) {
	r, ok := types[typ]
	if !ok {
		return nil, fmt.Errorf("unsupported sql database: %q", typ)
	}
	return &Database{db: conn, typ: typ, reg: r, opts: opts}, nil
}

func (d *Database) Type() string {
	return d.typ
}

func (d *Database) Dialect() QueryDialect {
	return d.reg.QueryDialect
}

func (d *Database) DB() *sql.DB {
	return d.db
}

func (d *Database) Close() error {
	return d.db.Close()
}

// Init creates graph tables for a given schema.
func (d *Database) Init(ctx context.Context, s Schema) error {
	stmts := d.reg.Tables(s)
	if d.reg.NoSchemaChangesInTx {
		for _, q := range stmts {
			if _, err := d.db.ExecContext(ctx, q); err != nil {
				clog.Errorf("cannot create tables: %v", err)
				return d.reg.convError(err)
			}
		}
		return nil
	}
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		clog.Errorf("couldn't begin creation transaction: %s", err)
		return err
	}
	defer tx.Rollback()
	for _, q := range stmts {
		if _, err = tx.ExecContext(ctx, q); err != nil {
			clog.Errorf("cannot create tables: %v", err)
			return d.reg.convError(err)
		}
	}
	return tx.Commit()
}

// Result is a set of rows returned by a plan.
type Result struct {
	Columns []string
	Rows    [][]interface{}
	// Affected is the number of rows changed by mutations.
	Affected int64
}

// Maps returns each row as a map from column name to value.
func (r *Result) Maps() []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(r.Rows))
	for _, row := range r.Rows {
		m := make(map[string]interface{}, len(row))
		for i, c := range r.Columns {
			m[c] = row[i]
		}
		out = append(out, m)
	}
	return out
}

// Execute runs all statements of a plan in a single transaction.
func (d *Database) Execute(ctx context.Context, p *Plan) (*Result, error) {
	stmts, err := p.Render(d.reg.QueryDialect)
	if err != nil {
		return nil, err
	}
	return d.Run(ctx, p.Columns, stmts)
}

// Run executes statements rendered for the dialect of this database in a single transaction.
// The transaction is read-only if all statements are queries.
func (d *Database) Run(ctx context.Context, columns []string, stmts []Rendered) (*Result, error) {
	readOnly := true
	for _, st := range stmts {
		if !st.Query {
			readOnly = false
		}
	}
	start := time.Now()
	defer func() {
		mQuerySeconds.WithLabelValues(d.typ).Observe(time.Since(start).Seconds())
	}()
	tx, err := d.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: readOnly})
	if err != nil {
		mQueryErrors.WithLabelValues(d.typ).Inc()
		return nil, err
	}
	defer tx.Rollback()
	res := &Result{Columns: columns}
	run := func() error {
		res.Rows, res.Affected = nil, 0
		for _, st := range stmts {
			if clog.V(1) {
				clog.Infof("sql: %s %v", st.SQL, st.Args)
			}
			if !st.Query {
				r, err := tx.ExecContext(ctx, st.SQL, st.Args...)
				if err != nil {
					return err
				}
				if n, err := r.RowsAffected(); err == nil {
					res.Affected += n
				}
				continue
			}
			rows, err := d.query(ctx, tx, st)
			if err != nil {
				return err
			}
			res.Rows = rows
		}
		return nil
	}
	if d.reg.TxRetry != nil && !readOnly {
		err = d.reg.TxRetry(tx, run)
	} else {
		err = run()
	}
	if err != nil {
		mQueryErrors.WithLabelValues(d.typ).Inc()
		return nil, fmt.Errorf("cannot execute plan: %w", d.reg.convError(err))
	}
	if err = tx.Commit(); err != nil {
		mQueryErrors.WithLabelValues(d.typ).Inc()
		return nil, err
	}
	mQueryRows.WithLabelValues(d.typ).Observe(float64(len(res.Rows)))
	return res, nil
}

func (d *Database) query(ctx context.Context, tx *sql.Tx, st Rendered) ([][]interface{}, error) {
	rows, err := tx.QueryContext(ctx, st.SQL, st.Args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var out [][]interface{}
	for rows.Next() {
		if d.opts.Limit > 0 && len(out) >= d.opts.Limit {
			break
		}
		row := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range row {
			ptrs[i] = &row[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range row {
			if b, ok := v.([]byte); ok {
				row[i] = string(b)
			}
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
