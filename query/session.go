// Copyright 2014 The Cayley Authors. All rights reserved.
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

// Package query defines the registry of traversal languages and a session
// that compiles traversals and runs them on a database.
package query

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/cayleygraph/gremsql/clog"
	"github.com/cayleygraph/gremsql/graph/sql"
	"github.com/cayleygraph/gremsql/internal/lru"
	"github.com/cayleygraph/gremsql/query/gremlin"
)

var (
	// ErrParseMore is returned by languages when the text is an incomplete query.
	ErrParseMore  = errors.New("query: more input required")
	ErrNoDatabase = errors.New("query: no database configured")
	ErrReadOnly   = errors.New("query: traversal modifies the graph")

	ErrUnknownLanguage = errors.New("query: unknown language")
)

// DefaultDialect is the name of the dialect used when no database is configured.
const DefaultDialect = "default"

// ParseFunc converts a query text to a traversal.
type ParseFunc func(ctx context.Context, text string) (gremlin.Traversal, error)

// Language is a textual representation of traversals.
type Language struct {
	Name  string
	Parse ParseFunc
}

var languages = make(map[string]Language)

// RegisterLanguage makes a language available by its name.
func RegisterLanguage(l Language) {
	if _, ok := languages[l.Name]; ok {
		panic(fmt.Errorf("language %q was already registered", l.Name))
	}
	languages[l.Name] = l
}

// GetLanguage returns a language by name or nil if it is not registered.
func GetLanguage(name string) *Language {
	l, ok := languages[name]
	if !ok {
		return nil
	}
	return &l
}

// Languages returns names of all registered languages.
func Languages() []string {
	out := make([]string, 0, len(languages))
	for name := range languages {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func init() {
	RegisterLanguage(Language{
		Name: "json",
		Parse: func(_ context.Context, text string) (gremlin.Traversal, error) {
			t, err := gremlin.UnmarshalTraversal([]byte(text))
			if err != nil {
				var ce *gremlin.CompilationError
				if errors.As(err, &ce) {
					return nil, err
				}
				return nil, &gremlin.CompilationError{Kind: gremlin.InvalidArgument, Msg: err.Error()}
			}
			return t, nil
		},
	})
}

// Config describes a session.
type Config struct {
	// DB executes compiled traversals. Sessions without a database can only compile.
	DB *sql.Database
	// Dialect is a registered database type used to render queries. Defaults to the type of DB.
	Dialect string
	Options *gremlin.Options
	// Cache stores rendered read-only plans. Optional.
	Cache *lru.Cache
}

// Session compiles traversals for a single dialect and executes them on an optional database.
type Session struct {
	db      *sql.Database
	dialect string
	d       sql.QueryDialect
	opts    *gremlin.Options
	cache   *lru.Cache
}

func NewSession(c Config) (*Session, error) {
	s := &Session{db: c.DB, opts: c.Options, cache: c.Cache, dialect: c.Dialect}
	if s.opts == nil {
		s.opts = &gremlin.Options{}
	}
	switch {
	case s.dialect == "" && s.db != nil:
		s.dialect, s.d = s.db.Type(), s.db.Dialect()
	case s.dialect == "" || s.dialect == DefaultDialect:
		s.dialect, s.d = DefaultDialect, sql.DefaultDialect
	default:
		r, ok := sql.ByName(s.dialect)
		if !ok {
			return nil, fmt.Errorf("unknown dialect: %q", s.dialect)
		}
		s.d = r.QueryDialect
	}
	return s, nil
}

// Dialect returns the name of the dialect used to render queries.
func (s *Session) Dialect() string {
	return s.dialect
}

// Parse converts the text in a given language to a traversal.
func (s *Session) Parse(ctx context.Context, lang, text string) (gremlin.Traversal, error) {
	l := GetLanguage(lang)
	if l == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLanguage, lang)
	}
	return l.Parse(ctx, text)
}

// CompileTraversal compiles a traversal and renders all its statements.
func (s *Session) CompileTraversal(t gremlin.Traversal) (*lru.Entry, error) {
	p, err := gremlin.CompilePlan(t, s.opts)
	if err != nil {
		return nil, err
	}
	stmts, err := p.Render(s.d)
	if err != nil {
		return nil, err
	}
	return &lru.Entry{Plan: p, Statements: stmts}, nil
}

// Compile parses and compiles a traversal. Read-only plans are cached.
func (s *Session) Compile(ctx context.Context, lang, text string) (*lru.Entry, error) {
	key := lru.Key{Dialect: s.dialect, Lang: lang, Text: text}
	if s.cache != nil {
		if e, ok := s.cache.Get(key); ok {
			return e, nil
		}
	}
	t, err := s.Parse(ctx, lang, text)
	if err != nil {
		return nil, err
	}
	e, err := s.CompileTraversal(t)
	if err != nil {
		return nil, err
	}
	// plans with mutations carry generated ids
	if s.cache != nil && e.Plan.ReadOnly() {
		s.cache.Put(key, e)
	}
	return e, nil
}

// Execute runs a compiled plan on the session database.
func (s *Session) Execute(ctx context.Context, e *lru.Entry) (*sql.Result, error) {
	if s.db == nil {
		return nil, ErrNoDatabase
	}
	if s.dialect != s.db.Type() {
		return nil, fmt.Errorf("query: plan for %q cannot run on %q", s.dialect, s.db.Type())
	}
	return s.db.Run(ctx, e.Plan.Columns, e.Statements)
}

// Query compiles and runs a traversal. If readOnly is set, traversals that modify the graph are rejected.
func (s *Session) Query(ctx context.Context, lang, text string, readOnly bool) (*sql.Result, error) {
	e, err := s.Compile(ctx, lang, text)
	if err != nil {
		return nil, err
	}
	if readOnly && !e.Plan.ReadOnly() {
		return nil, ErrReadOnly
	}
	if clog.V(1) {
		for _, st := range e.Statements {
			clog.Infof("query: %s", st.SQL)
		}
	}
	return s.Execute(ctx, e)
}
