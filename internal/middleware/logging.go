package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"

	"greek-row/chapterhouse/internal/auth"
	"greek-row/chapterhouse/internal/logging"
)

const requestIDHeader = "X-Request-ID"

// RequestIDMiddleware honours an incoming X-Request-ID or mints a ULID
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" || len(requestID) > 128 {
			requestID = ulid.Make().String()
		}

		ctx := auth.SetRequestID(r.Context(), requestID)
		ctx = logging.NewContext(ctx, logging.GetLogger().With("request_id", requestID))

		w.Header().Set(requestIDHeader, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Logging writes one structured line per request
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rec, r)

		userID := ""
		if claims := auth.GetUserClaims(r.Context()); claims != nil {
			userID = claims.UserID()
		}

		fields := []interface{}{
			"request_id", auth.GetRequestID(r.Context()),
			"method", r.Method,
			"endpoint", routePattern(r),
			"status_code", rec.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"user_id", userID,
		}
		switch {
		case rec.statusCode >= http.StatusInternalServerError:
			logging.Error("HTTP request completed", fields...)
		case rec.statusCode >= http.StatusBadRequest:
			logging.Warn("HTTP request completed", fields...)
		default:
			logging.Info("HTTP request completed", fields...)
		}
	})
}

// routePattern reads the matched chi pattern; valid only after routing ran
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unknown"
}
