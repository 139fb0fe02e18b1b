package controller_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"verifier/pkg/controller"

	"github.com/stretchr/testify/require"
)

func TestPprofMux(t *testing.T) {
	mux := http.NewServeMux()
	mux.Handle(controller.PprofPrefix, controller.PprofMux())

	for _, path := range []string{"/debug/pprof/", "/debug/pprof/cmdline", "/debug/pprof/goroutine?debug=1"} {
		req := httptest.NewRequest(http.MethodGet, "http://pprof.local"+path, nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		res := rec.Result()
		require.Equal(t, http.StatusOK, res.StatusCode, path)
		require.NotEmpty(t, res.Header.Get("Content-Type"), path)
	}
}
