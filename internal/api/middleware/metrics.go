package middleware

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/minisport/arena/internal/metrics"
	"github.com/minisport/arena/internal/middleware"
)

// Metrics creates middleware that records request counts and latency.
// The path label uses the mux route template so IDs do not blow up
// label cardinality.
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := middleware.NewResponseWriter(w)

			next.ServeHTTP(wrapped, r)

			path := r.URL.Path
			if route := mux.CurrentRoute(r); route != nil {
				if tmpl, err := route.GetPathTemplate(); err == nil {
					path = tmpl
				}
			}
			m.ObserveHTTP(r.Method, path, wrapped.Status(), time.Since(start))
		})
	}
}
