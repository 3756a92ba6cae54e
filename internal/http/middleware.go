package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RequestLogger writes one structured line per request, at error level for
// statuses of 400 and above.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			level := slog.LevelInfo
			if status >= http.StatusBadRequest {
				level = slog.LevelError
			}
			logger.LogAttrs(r.Context(), level, "request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("query", r.URL.RawQuery),
				slog.Int("status", status),
				slog.String("duration", fmt.Sprintf("%dms", time.Since(start).Milliseconds())),
				slog.String("ip", r.RemoteAddr),
				slog.String("userAgent", r.UserAgent()),
				slog.String("requestId", middleware.GetReqID(r.Context())),
			)
		})
	}
}

// CORS allows the configured origins with the methods and headers the API uses.
func CORS(origins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-API-Key"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	})
}
