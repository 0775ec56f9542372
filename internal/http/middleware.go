package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/cayleygraph/gremsql/clog"
)

var mRequestSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name: "gremsql_http_request_seconds",
	Help: "Time to serve an HTTP request.",
}, []string{"method", "code"})

const corsHeaders = "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization"

// withCORS allows browsers on any origin to call the API.
func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" {
			hdr := w.Header()
			hdr.Set("Access-Control-Allow-Origin", origin)
			hdr.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			hdr.Set("Access-Control-Allow-Headers", corsHeaders)
		}
		h.ServeHTTP(w, r)
	})
}

func servePreflight(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

type recorder struct {
	http.ResponseWriter
	code int
}

func (w *recorder) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

func remoteAddr(r *http.Request) string {
	for _, h := range []string{"X-Real-IP", "X-Forwarded-For"} {
		if addr := r.Header.Get(h); addr != "" {
			return addr
		}
	}
	return r.RemoteAddr
}

// withLogging logs every request and records its latency.
func withLogging(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &recorder{ResponseWriter: w, code: http.StatusOK}
		if clog.V(1) {
			clog.Infof("%s %s from %s", r.Method, r.URL.Path, remoteAddr(r))
		}
		h.ServeHTTP(rw, r)
		dt := time.Since(start)
		mRequestSeconds.WithLabelValues(r.Method, strconv.Itoa(rw.code)).Observe(dt.Seconds())
		clog.Infof("%s %s: %d %s in %v", r.Method, r.URL.Path, rw.code, http.StatusText(rw.code), dt)
	})
}
