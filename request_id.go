package jokebox

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// NewRequestID generates a new request id.
func NewRequestID() string {
	return uuid.NewString()
}

// RequestIDFromHeader returns the request id from headers.
func RequestIDFromHeader(r *http.Request) string {
	return r.Header.Get(RequestIDHeader)
}

// WithRequestID stores a request id in ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the request id stored by WithRequestID.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
