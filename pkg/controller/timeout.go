package controller

import (
	"context"
	"net/http"
	"time"
)

// WithTimeout returns a middleware that bounds the request context by timeout.
// Unlike http.TimeoutHandler it neither buffers the response nor writes its
// own body: the handler observes the expired context and answers itself.
func WithTimeout(next http.Handler, timeout time.Duration) http.Handler {
	if timeout <= 0 {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
