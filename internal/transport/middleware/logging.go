package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/frahmantamala/crm-assistant/pkg/logger"
)

const maxLoggedBody = 4 << 10

// redactedKeys are matched as substrings of lower-cased header and JSON keys.
var redactedKeys = []string{
	"password",
	"token",
	"authorization",
	"secret",
	"api_key",
	"apikey",
	"credential",
	"cookie",
}

func isRedacted(key string) bool {
	key = strings.ToLower(key)
	for _, k := range redactedKeys {
		if strings.Contains(key, k) {
			return true
		}
	}
	return false
}

// LoggingMiddleware logs every request and its outcome with the request-scoped
// logger. Bodies are only logged at debug level, with credentials redacted.
func LoggingMiddleware(base *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lg := logger.FromOr(r.Context(), base)
			debug := lg.Enabled(r.Context(), slog.LevelDebug)

			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
			}
			if debug {
				attrs = append(attrs, "headers", redactHeaders(r.Header), "body", redactBody(peekBody(r)))
			}
			lg.Log(r.Context(), slog.LevelDebug, "incoming request", attrs...)

			rw := &responseWriter{ResponseWriter: w, capture: debug}
			next.ServeHTTP(rw, r)

			status := rw.status()
			level := slog.LevelInfo
			switch {
			case status >= http.StatusInternalServerError:
				level = slog.LevelError
			case status >= http.StatusBadRequest:
				level = slog.LevelWarn
			}
			out := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status_code", status,
				"duration_ms", time.Since(start).Milliseconds(),
				"response_size", rw.size,
			}
			if debug {
				out = append(out, "body", redactBody(rw.body.Bytes()))
			}
			lg.Log(r.Context(), level, "request completed", out...)
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
	size       int
	capture    bool
	body       bytes.Buffer
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if rw.capture && rw.body.Len() < maxLoggedBody {
		rw.body.Write(b)
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}

func (rw *responseWriter) status() int {
	if rw.statusCode == 0 {
		return http.StatusOK
	}
	return rw.statusCode
}

func peekBody(r *http.Request) []byte {
	if r.Body == nil {
		return nil
	}
	data, _ := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(data))
	return data
}

func redactHeaders(headers http.Header) map[string]string {
	out := make(map[string]string, len(headers))
	for name, values := range headers {
		if isRedacted(name) {
			out[name] = "[FILTERED]"
			continue
		}
		out[name] = strings.Join(values, ", ")
	}
	return out
}

func redactBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if len(body) > maxLoggedBody {
		body = body[:maxLoggedBody]
	}
	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return "[non-JSON body]"
	}
	filtered, err := json.Marshal(redactJSON(data))
	if err != nil {
		return "[unloggable body]"
	}
	return string(filtered)
}

func redactJSON(data any) any {
	switch v := data.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, value := range v {
			if isRedacted(key) {
				out[key] = "[FILTERED]"
				continue
			}
			out[key] = redactJSON(value)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = redactJSON(item)
		}
		return out
	default:
		return v
	}
}
