package controller

import (
	"net/http"
	"slices"
)

// WithCORS returns a middleware that sets CORS headers on every response and
// short-circuits OPTIONS preflight requests with 204 No Content. Without
// allowedOrigins, or when they contain "*", any origin is allowed; otherwise
// only listed origins are echoed back and credentials are permitted.
func WithCORS(next http.Handler, allowedOrigins ...string) http.Handler {
	anyOrigin := len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, "*")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		origin := r.Header.Get("Origin")
		switch {
		case anyOrigin:
			h.Set("Access-Control-Allow-Origin", "*")
		case origin != "" && slices.Contains(allowedOrigins, origin):
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Add("Vary", "Origin")
		}
		h.Set("Access-Control-Allow-Headers",
			"Content-Type, Content-Length, Accept-Encoding, accept, origin, Cache-Control, X-Request-Id")
		h.Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")
		h.Set("Access-Control-Expose-Headers", "Content-Disposition, X-Request-Id")

		// handle preflight requests quickly
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)

			return
		}

		next.ServeHTTP(w, r)
	})
}
