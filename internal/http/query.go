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

package http

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/cayleygraph/gremsql/clog"
	"github.com/cayleygraph/gremsql/graph/sql"
	"github.com/cayleygraph/gremsql/internal/lru"
)

// CompileResult is a response of the compile endpoint.
type CompileResult struct {
	Dialect  string          `json:"dialect"`
	SQL      []string        `json:"sql"`
	Args     [][]interface{} `json:"args"`
	Columns  []string        `json:"columns,omitempty"`
	ReadOnly bool            `json:"read_only"`
}

func compileResult(dialect string, e *lru.Entry) CompileResult {
	out := CompileResult{
		Dialect:  dialect,
		SQL:      make([]string, 0, len(e.Statements)),
		Args:     make([][]interface{}, 0, len(e.Statements)),
		Columns:  e.Plan.Columns,
		ReadOnly: e.Plan.ReadOnly(),
	}
	for _, st := range e.Statements {
		args := st.Args
		if args == nil {
			args = []interface{}{}
		}
		out.SQL = append(out.SQL, st.SQL)
		out.Args = append(out.Args, args)
	}
	return out
}

// QueryResult is a response of query endpoints.
type QueryResult struct {
	Columns  []string                 `json:"columns"`
	Result   []map[string]interface{} `json:"result"`
	Affected int64                    `json:"affected,omitempty"`
}

func queryResult(res *sql.Result) QueryResult {
	return QueryResult{Columns: res.Columns, Result: res.Maps(), Affected: res.Affected}
}

// ServeCompile renders the traversal from the request body as SQL without running it.
func (api *API) ServeCompile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := api.contextForRequest(r)
	defer cancel()
	ses, err := api.session(r.URL.Query().Get("dialect"))
	if err != nil {
		jsonResponse(w, http.StatusBadRequest, err)
		return
	}
	data, err := readLimit(r.Body)
	if err != nil {
		jsonResponse(w, http.StatusBadRequest, err)
		return
	}
	e, err := ses.Compile(ctx, api.language(r), string(data))
	if err != nil {
		errorResponse(w, err)
		return
	}
	if clog.V(1) {
		for _, st := range e.Statements {
			clog.Infof("compiled: %s", st.SQL)
		}
	}
	writeJSON(w, compileResult(ses.Dialect(), e))
}

// ServeQuery compiles the traversal from the request body and runs it on the database.
func (api *API) ServeQuery(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := api.contextForRequest(r)
	defer cancel()
	data, err := readLimit(r.Body)
	if err != nil {
		jsonResponse(w, http.StatusBadRequest, err)
		return
	}
	res, err := api.ses.Query(ctx, api.language(r), string(data), api.config.ReadOnly)
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeJSON(w, queryResult(res))
}

// ServeLoad inserts a JSON graph from the request body.
func (api *API) ServeLoad(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if api.db == nil {
		jsonResponse(w, http.StatusNotImplemented, "no database configured")
		return
	}
	ctx, cancel := api.contextForRequest(r)
	defer cancel()
	g, err := sql.ReadGraph(http.MaxBytesReader(w, r.Body, 64*maxQuerySize))
	if err != nil {
		jsonResponse(w, http.StatusBadRequest, err)
		return
	}
	if err = api.db.Load(ctx, g, api.config.Options.Schema); err != nil {
		errorResponse(w, err)
		return
	}
	writeJSON(w, map[string]int{"vertices": len(g.Vertices), "edges": len(g.Edges)})
}
