package common

import (
	"context"
	"time"
)

// Context keys for storing values in context
type contextKey string

const (
	ContextKeyBatchID     contextKey = "batch_id"
	ContextKeyDocumentID  contextKey = "document_id"
	ContextKeyContentHash contextKey = "content_hash"
)

// WithBatchID adds a batch ID to the context
func WithBatchID(ctx context.Context, batchID string) context.Context {
	return context.WithValue(ctx, ContextKeyBatchID, batchID)
}

// BatchIDFromContext extracts the batch ID from context
func BatchIDFromContext(ctx context.Context) string {
	if batchID, ok := ctx.Value(ContextKeyBatchID).(string); ok {
		return batchID
	}
	return ""
}

// WithDocumentID adds a document ID to the context
func WithDocumentID(ctx context.Context, documentID string) context.Context {
	return context.WithValue(ctx, ContextKeyDocumentID, documentID)
}

// DocumentIDFromContext extracts the document ID from context
func DocumentIDFromContext(ctx context.Context) string {
	if documentID, ok := ctx.Value(ContextKeyDocumentID).(string); ok {
		return documentID
	}
	return ""
}

func WithContentHash(ctx context.Context, hashHex string) context.Context {
	return context.WithValue(ctx, ContextKeyContentHash, hashHex)
}

func ContentHashFromContext(ctx context.Context) (string, bool) {
	h, ok := ctx.Value(ContextKeyContentHash).(string)
	return h, ok && h != ""
}

// WithTimeout creates a context with the specified timeout; a non-positive timeout only adds cancellation.
func WithTimeout(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}
