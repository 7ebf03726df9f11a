package middleware_test

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/zintix-labs/coinlab/server/netsvr/middleware"
)

const body = `{"final":{"p_a":0.6884110229434866,"p_b":0.4409525671601472}}`

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, body)
}

func serve(h http.Handler, accept string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/v1/estimate", nil)
	if accept != "" {
		req.Header.Set("Accept-Encoding", accept)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCompressionGzip(t *testing.T) {
	rec := serve(middleware.Compression(http.HandlerFunc(okHandler)), "gzip, deflate")
	if got := rec.Header().Get("Content-Encoding"); got != "gzip" {
		t.Fatalf("encoding %q", got)
	}
	zr, err := gzip.NewReader(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	raw, err := io.ReadAll(zr)
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != body {
		t.Fatalf("body %q", raw)
	}
}

func TestCompressionZstd(t *testing.T) {
	rec := serve(middleware.Compression(http.HandlerFunc(okHandler)), "zstd, gzip")
	if got := rec.Header().Get("Content-Encoding"); got != "zstd" {
		t.Fatalf("encoding %q", got)
	}
	zr, err := zstd.NewReader(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	defer zr.Close()
	raw, err := io.ReadAll(zr)
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != body {
		t.Fatalf("body %q", raw)
	}
}

func TestCompressionPassThrough(t *testing.T) {
	rec := serve(middleware.Compression(http.HandlerFunc(okHandler)), "")
	if rec.Header().Get("Content-Encoding") != "" || rec.Body.String() != body {
		t.Fatalf("unexpected response %q / %q", rec.Header().Get("Content-Encoding"), rec.Body.String())
	}

	noContent := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	rec = serve(middleware.Compression(noContent), "gzip")
	if rec.Code != http.StatusNoContent || rec.Body.Len() != 0 || rec.Header().Get("Content-Encoding") != "" {
		t.Fatalf("204 response carried a body or encoding: %d %q", rec.Body.Len(), rec.Header().Get("Content-Encoding"))
	}
}

func TestRequestIDHeader(t *testing.T) {
	var seen string
	h := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = middleware.GetReqId(r)
	}))
	rec := serve(h, "")
	if seen == "" || rec.Header().Get("X-Request-Id") != seen {
		t.Fatalf("request id %q, header %q", seen, rec.Header().Get("X-Request-Id"))
	}
}

func TestRecoverAndAccessLog(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	boom := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") })
	h := middleware.AccessLog(log)(middleware.Recover(log)(boom))

	rec := serve(h, "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status %d", rec.Code)
	}
	out := buf.String()
	if !strings.Contains(out, "http.panic") || !strings.Contains(out, "panic=boom") {
		t.Fatalf("missing panic log: %s", out)
	}
	if !strings.Contains(out, "http.access") || !strings.Contains(out, "status=500") {
		t.Fatalf("missing access log: %s", out)
	}
}
