package http

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/cayleygraph/gremsql/internal/catalog"
)

func (api *API) withCatalog(w http.ResponseWriter) bool {
	if api.catalog == nil {
		jsonResponse(w, http.StatusNotImplemented, "no catalog configured")
		return false
	}
	return true
}

func (api *API) ServeListTraversals(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if !api.withCatalog(w) {
		return
	}
	list, err := api.catalog.List(r.Context())
	if err != nil {
		errorResponse(w, err)
		return
	}
	if list == nil {
		list = []catalog.Entry{}
	}
	writeJSON(w, list)
}

func (api *API) ServeGetTraversal(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	if !api.withCatalog(w) {
		return
	}
	e, err := api.catalog.Get(r.Context(), params.ByName("name"))
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeJSON(w, e)
}

// ServePutTraversal validates and saves the traversal from the request body.
func (api *API) ServePutTraversal(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	if !api.withCatalog(w) {
		return
	}
	ctx, cancel := api.contextForRequest(r)
	defer cancel()
	data, err := readLimit(r.Body)
	if err != nil {
		jsonResponse(w, http.StatusBadRequest, err)
		return
	}
	lang := api.language(r)
	t, err := api.ses.Parse(ctx, lang, string(data))
	if err != nil {
		errorResponse(w, err)
		return
	}
	e := catalog.Entry{Name: params.ByName("name"), Lang: lang, Text: string(data), Traversal: t}
	if err = api.catalog.Put(ctx, e); err != nil {
		errorResponse(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (api *API) ServeDeleteTraversal(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	if !api.withCatalog(w) {
		return
	}
	if err := api.catalog.Delete(r.Context(), params.ByName("name")); err != nil {
		errorResponse(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ServeQueryTraversal runs a saved traversal.
func (api *API) ServeQueryTraversal(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	if !api.withCatalog(w) {
		return
	}
	ctx, cancel := api.contextForRequest(r)
	defer cancel()
	e, err := api.catalog.Get(ctx, params.ByName("name"))
	if err != nil {
		errorResponse(w, err)
		return
	}
	res, err := api.ses.Query(ctx, e.Lang, e.Text, api.config.ReadOnly)
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeJSON(w, queryResult(res))
}
