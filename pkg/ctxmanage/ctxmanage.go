package ctxmanage

import (
	"context"

	"github.com/gin-gonic/gin"
)

type key int

const TraceIDKey key = 1

// WithTraceID stores the request trace id on the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// GetTraceIdOfRequest returns the trace id set by the logger middleware, or
// "unknown" when the middleware did not run.
func GetTraceIdOfRequest(c *gin.Context) string {
	traceID, ok := c.Request.Context().Value(TraceIDKey).(string)
	if !ok {
		return "unknown"
	}
	return traceID
}
