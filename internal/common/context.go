package common

import (
	"context"
)

// Context keys for storing values in context
type contextKey string

const (
	ContextKeyRequestID    contextKey = "request_id"
	ContextKeyProcessingID contextKey = "processing_id"
)

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// RequestIDFromContext extracts the request ID from context
func RequestIDFromContext(ctx context.Context) string {
	if requestID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return requestID
	}
	return ""
}

// WithProcessingID adds the extraction processing ID to the context
func WithProcessingID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ContextKeyProcessingID, id)
}

// ProcessingIDFromContext extracts the extraction processing ID from context
func ProcessingIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(ContextKeyProcessingID).(string); ok {
		return id
	}
	return ""
}
