package middleware

import (
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// encoder 是 gzip.Writer 與 zstd.Encoder 共同的最小介面。
type encoder interface {
	io.Writer
	Reset(w io.Writer)
	Flush() error
	Close() error
}

type codec struct {
	name string
	pool sync.Pool
}

var (
	zstdCodec = &codec{name: "zstd", pool: sync.Pool{New: func() any {
		zw, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest), zstd.WithEncoderConcurrency(1))
		return zw
	}}}
	gzipCodec = &codec{name: "gzip", pool: sync.Pool{New: func() any {
		gw, _ := gzip.NewWriterLevel(nil, gzip.DefaultCompression)
		return gw
	}}}
)

func (c *codec) get(w io.Writer) encoder {
	e := c.pool.Get().(encoder)
	e.Reset(w)
	return e
}

// pick 依 Accept-Encoding 選擇編碼；zstd 優先。
func pick(accept string) *codec {
	accept = strings.ToLower(accept)
	switch {
	case strings.Contains(accept, "zstd"):
		return zstdCodec
	case strings.Contains(accept, "gzip"):
		return gzipCodec
	default:
		return nil
	}
}

type compressWriter struct {
	http.ResponseWriter
	enc      encoder
	disabled bool // 204 / 304 / 1xx 不帶 body
}

func (cw *compressWriter) WriteHeader(code int) {
	cw.Header().Del("Content-Length")
	if (code >= 100 && code < 200) || code == http.StatusNoContent || code == http.StatusNotModified {
		cw.disabled = true
		cw.Header().Del("Content-Encoding")
		cw.Header().Del("Vary")
	}
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *compressWriter) Write(b []byte) (int, error) {
	if cw.disabled {
		return cw.ResponseWriter.Write(b)
	}
	cw.Header().Del("Content-Length")
	if cw.Header().Get("Content-Type") == "" {
		cw.Header().Set("Content-Type", http.DetectContentType(b))
	}
	return cw.enc.Write(b)
}

func (cw *compressWriter) Flush() {
	if !cw.disabled {
		_ = cw.enc.Flush()
	}
	if f, ok := cw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Compression 依 Accept-Encoding 以 zstd 或 gzip 壓縮 response body。
func Compression(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := pick(r.Header.Get("Accept-Encoding"))
		if c == nil || r.Method == http.MethodHead || w.Header().Get("Content-Encoding") != "" {
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("Content-Encoding", c.name)
		w.Header().Add("Vary", "Accept-Encoding")
		cw := &compressWriter{ResponseWriter: w, enc: c.get(w)}
		defer func() {
			// 無 body 時丟掉 footer
			if cw.disabled {
				cw.enc.Reset(io.Discard)
			}
			_ = cw.enc.Close()
			c.pool.Put(cw.enc)
		}()
		next.ServeHTTP(cw, r)
	})
}
