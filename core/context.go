package core

import "context"

// Context keys for run options
type contextKey string

const suppressHeaderKey contextKey = "suppressHeader"

// WithSuppressHeader hides the run header, for callers that own the terminal.
func WithSuppressHeader(ctx context.Context) context.Context {
	return context.WithValue(ctx, suppressHeaderKey, true)
}

// shouldSuppressHeader returns whether headers should be suppressed from context
func shouldSuppressHeader(ctx context.Context) bool {
	suppress, ok := ctx.Value(suppressHeaderKey).(bool)
	return ok && suppress
}
