// Package net holds transport-neutral request helpers and the response envelope
package net

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"

	"narrativeradar/internal/platform/logger"
)

// WithRequest stores reqID where both chi and the context logger find it
func WithRequest(ctx context.Context, reqID string) context.Context {
	if reqID == "" {
		return ctx
	}
	ctx = context.WithValue(ctx, chimw.RequestIDKey, reqID)
	return logger.WithRequest(ctx, reqID)
}

// RequestID returns the request id on ctx or ""
func RequestID(ctx context.Context) string {
	return chimw.GetReqID(ctx)
}
