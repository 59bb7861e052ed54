package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-Id"

type loggerKey struct{}

// LoggerFrom returns the request scoped logger, or the default one when the
// context carries none.
func LoggerFrom(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// WithLogger stores logger in ctx.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// RequestID reuses the caller's X-Request-Id or generates one, echoes it on
// the response and scopes a logger to it.
func RequestID(parent *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDHeader)
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, id)

			logger := parent.With("x-request-id", id)
			next.ServeHTTP(w, r.WithContext(WithLogger(r.Context(), logger)))
		})
	}
}

// AccessLog logs one line per request once it has terminated:
// method, url, status, response length and duration.
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		LoggerFrom(r.Context()).LogAttrs(r.Context(), slog.LevelInfo,
			r.Method+" "+r.URL.RequestURI(),
			slog.Int("status", status(ww)),
			slog.Int("length", ww.BytesWritten()),
			slog.Duration("dur", time.Since(start)),
			slog.String("from", r.RemoteAddr),
			slog.String("ua", r.UserAgent()),
		)
	})
}

// Recover logs the value of a panic and answers 500 unless the handler had
// already started its response.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if v == http.ErrAbortHandler {
				panic(v)
			}
			LoggerFrom(r.Context()).LogAttrs(r.Context(), slog.LevelError, "panic occurred",
				slog.Any("recovered", v), slog.Bool("headers_sent", ww.Status() != 0))
			if ww.Status() == 0 {
				ww.WriteHeader(http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(ww, r)
	})
}

// status reports the written status, defaulting to 200 for handlers that
// never called WriteHeader.
func status(ww chimw.WrapResponseWriter) int {
	if ww.Status() == 0 {
		return http.StatusOK
	}
	return ww.Status()
}
