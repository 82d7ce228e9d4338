package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/sirupsen/logrus"
)

// RequestIDHeader carries the correlation id of a request
const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// RequestIDFromContext returns the correlation id stored by the request id middleware
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// RequestID reuses the caller's X-Request-ID or assigns a new one, echoes it
// on the response and stores it in the request context.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Middleware wraps the router with request ids, CORS, panic recovery and an
// access log written to accessLog. CORS is only enabled when origins is non-empty.
func Middleware(next http.Handler, log *logrus.Logger, accessLog io.Writer, origins []string) http.Handler {
	h := RequestID(next)
	if len(origins) > 0 {
		h = handlers.CORS(
			handlers.AllowedOrigins(origins),
			handlers.AllowedMethods([]string{http.MethodGet, http.MethodOptions}),
			handlers.AllowedHeaders([]string{"Content-Type", RequestIDHeader}),
			handlers.ExposedHeaders([]string{RequestIDHeader}),
		)(h)
	}
	h = handlers.RecoveryHandler(
		handlers.RecoveryLogger(log),
		handlers.PrintRecoveryStack(false),
	)(h)
	return handlers.LoggingHandler(accessLog, h)
}
