package netsvr_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/zintix-labs/coinlab/server/netsvr"
)

func TestChiAdapterRoutes(t *testing.T) {
	svr := netsvr.NewChiServer("127.0.0.1:0")
	if !svr.Ready() || svr.Address() != "127.0.0.1:0" {
		t.Fatalf("adapter not ready: %q", svr.Address())
	}
	svr.Get("/", func(w http.ResponseWriter, _ *http.Request) { _, _ = io.WriteString(w, "root") })
	svr.Group("/v1", func(r netsvr.NetRouter) {
		r.Post("/estimate", func(w http.ResponseWriter, _ *http.Request) { _, _ = io.WriteString(w, "estimate") })
	})

	cases := []struct {
		method, path, body string
		status             int
	}{
		{http.MethodGet, "/", "root", http.StatusOK},
		{http.MethodPost, "/v1/estimate", "estimate", http.StatusOK},
		{http.MethodGet, "/v1/estimate", "", http.StatusMethodNotAllowed},
		{http.MethodGet, "/v2", "", http.StatusNotFound},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		svr.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		if rec.Code != tc.status {
			t.Fatalf("%s %s: status %d", tc.method, tc.path, rec.Code)
		}
		if tc.body != "" && rec.Body.String() != tc.body {
			t.Fatalf("%s %s: body %q", tc.method, tc.path, rec.Body.String())
		}
	}
}

func TestDefaultAddress(t *testing.T) {
	if got := netsvr.NewChiServerDefault().Address(); got != ":5808" {
		t.Fatalf("default address %q", got)
	}
}
