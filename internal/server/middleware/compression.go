package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang/snappy"

	"github.com/iudanet/offsync/pkg/api"
)

// maxBodySize ограничивает размер сжатого тела запроса
const maxBodySize = 32 << 20

// snappyWriter буферизует ответ, чтобы сжать его целиком
type snappyWriter struct {
	http.ResponseWriter
	buf    bytes.Buffer
	status int
}

func (w *snappyWriter) WriteHeader(code int) {
	w.status = code
}

func (w *snappyWriter) Write(b []byte) (int, error) {
	return w.buf.Write(b)
}

// SnappyMiddleware decodes request bodies sent with Content-Encoding: snappy
// and compresses responses for clients that accept snappy. Snappy block
// format is used in both directions.
func SnappyMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.EqualFold(r.Header.Get("Content-Encoding"), api.EncodingSnappy) {
				compressed, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
				if err != nil {
					logger.Warn("failed to read compressed body", "error", err)
					writeError(w, http.StatusBadRequest, "failed to read request body")
					return
				}
				body, err := snappy.Decode(nil, compressed)
				if err != nil {
					logger.Warn("failed to decompress request body", "error", err)
					writeError(w, http.StatusBadRequest, "invalid snappy body")
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(body))
				r.ContentLength = int64(len(body))
				r.Header.Del("Content-Encoding")
			}

			if !acceptsSnappy(r) {
				next.ServeHTTP(w, r)
				return
			}

			sw := &snappyWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)

			w.Header().Set("Content-Encoding", api.EncodingSnappy)
			w.Header().Del("Content-Length")
			w.WriteHeader(sw.status)
			if _, err := w.Write(snappy.Encode(nil, sw.buf.Bytes())); err != nil {
				logger.Warn("failed to write compressed response", "error", err)
			}
		})
	}
}

func acceptsSnappy(r *http.Request) bool {
	for _, enc := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		token, _, _ := strings.Cut(strings.TrimSpace(enc), ";")
		if strings.EqualFold(token, api.EncodingSnappy) {
			return true
		}
	}
	return false
}
