package core

import "context"

// Context keys for validation options
type contextKey string

const (
	suppressHeaderKey contextKey = "suppressHeader"
	historyRunIDKey   contextKey = "historyRunID"
)

// WithSuppressHeader marks the context so that no progress lines are printed.
// MCP handlers use it because stdout carries the protocol.
func WithSuppressHeader(ctx context.Context) context.Context {
	return context.WithValue(ctx, suppressHeaderKey, true)
}

// shouldSuppressHeader returns whether headers should be suppressed from context
func shouldSuppressHeader(ctx context.Context) bool {
	val := ctx.Value(suppressHeaderKey)
	if val == nil {
		return false // default: show headers
	}
	suppress, ok := val.(bool)
	return ok && suppress
}

// withRunID stores the history run ID in the context
func withRunID(ctx context.Context, runID int64) context.Context {
	return context.WithValue(ctx, historyRunIDKey, runID)
}

// getRunID returns the history run ID from context, if any
func getRunID(ctx context.Context) (int64, bool) {
	val := ctx.Value(historyRunIDKey)
	if val == nil {
		return 0, false
	}
	id, ok := val.(int64)
	return id, ok
}
