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

// Package http serves the traversal compiler over HTTP.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cayleygraph/gremsql/graph/sql"
	"github.com/cayleygraph/gremsql/internal/catalog"
	"github.com/cayleygraph/gremsql/internal/lru"
	"github.com/cayleygraph/gremsql/query"
	"github.com/cayleygraph/gremsql/query/gremlin"
)

// maxQuerySize limits the size of request bodies.
const maxQuerySize = 1024 * 1024

type Config struct {
	ReadOnly bool
	Timeout  time.Duration
	// Language is used when a request does not set one.
	Language string
	// PlanCache is the number of rendered plans to keep. Zero disables the cache.
	PlanCache int
	Options   gremlin.Options
}

type API struct {
	config  *Config
	db      *sql.Database
	catalog *catalog.Catalog
	cache   *lru.Cache
	ses     *query.Session
}

// NewAPI creates handlers for a database and a catalog. Both are optional.
func NewAPI(cfg *Config, db *sql.Database, cat *catalog.Catalog) (*API, error) {
	if cfg.Language == "" {
		cfg.Language = "js"
	}
	api := &API{config: cfg, db: db, catalog: cat, cache: lru.New(cfg.PlanCache)}
	ses, err := api.session("")
	if err != nil {
		return nil, err
	}
	api.ses = ses
	return api, nil
}

func (api *API) session(dialect string) (*query.Session, error) {
	if dialect == "" && api.ses != nil {
		return api.ses, nil
	}
	return query.NewSession(query.Config{
		DB:      api.db,
		Dialect: dialect,
		Options: &api.config.Options,
		Cache:   api.cache,
	})
}

func jsonResponse(w http.ResponseWriter, code int, err interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write([]byte(`{"error": `))
	data, _ := json.Marshal(fmt.Sprint(err))
	w.Write(data)
	w.Write([]byte(`}`))
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	_ = enc.Encode(v)
}

// errorCode maps errors to HTTP status codes.
func errorCode(err error) int {
	var ce *gremlin.CompilationError
	switch {
	case errors.As(err, &ce), errors.Is(err, query.ErrParseMore), errors.Is(err, query.ErrUnknownLanguage):
		return http.StatusBadRequest
	case errors.Is(err, query.ErrReadOnly):
		return http.StatusForbidden
	case errors.Is(err, query.ErrNoDatabase):
		return http.StatusNotImplemented
	case errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, catalog.ErrInvalidName):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout
	}
	return http.StatusInternalServerError
}

func errorResponse(w http.ResponseWriter, err error) {
	jsonResponse(w, errorCode(err), err)
}

func readLimit(r io.Reader) ([]byte, error) {
	lr := io.LimitReader(r, maxQuerySize+1).(*io.LimitedReader)
	data, err := io.ReadAll(lr)
	if err != nil {
		return nil, err
	}
	if lr.N <= 0 {
		return nil, errors.New("request is too large")
	}
	return data, nil
}

func (api *API) contextForRequest(r *http.Request) (context.Context, func()) {
	ctx := r.Context()
	cancel := func() {}
	if api.config.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, api.config.Timeout)
	}
	return ctx, cancel
}

func (api *API) language(r *http.Request) string {
	if lang := r.URL.Query().Get("lang"); lang != "" {
		return lang
	}
	return api.config.Language
}

func (api *API) RWOnly(handler httprouter.Handle) httprouter.Handle {
	if api.config.ReadOnly {
		return func(w http.ResponseWriter, req *http.Request, params httprouter.Params) {
			jsonResponse(w, http.StatusForbidden, "Database is read-only.")
		}
	}
	return handler
}

// HandleHealth is a route for handling health checks to the server
func HandleHealth(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	w.WriteHeader(http.StatusNoContent)
}

func (api *API) APIv1(r *httprouter.Router) {
	r.POST("/api/v1/compile", api.ServeCompile)
	r.POST("/api/v1/query", api.ServeQuery)
	r.POST("/api/v1/load", api.RWOnly(api.ServeLoad))
	r.GET("/api/v1/traversals", api.ServeListTraversals)
	r.GET("/api/v1/traversals/:name", api.ServeGetTraversal)
	r.PUT("/api/v1/traversals/:name", api.ServePutTraversal)
	r.DELETE("/api/v1/traversals/:name", api.ServeDeleteTraversal)
	r.POST("/api/v1/traversals/:name/query", api.ServeQueryTraversal)
}

// Handler returns all routes of the API, including health checks and metrics.
func (api *API) Handler() http.Handler {
	r := httprouter.New()
	r.GET("/health", HandleHealth)
	r.Handler("GET", "/metrics", promhttp.Handler())
	api.APIv1(r)
	r.GlobalOPTIONS = http.HandlerFunc(servePreflight)
	return withCORS(withLogging(r))
}
