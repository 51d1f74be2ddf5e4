package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

// TraceHeader echoes the request's trace id in headerName so callers can
// follow a price change through the queues.
func TraceHeader(headerName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if headerName != "" {
			if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
				c.Header(headerName, sc.TraceID().String())
			}
		}
		c.Next()
	}
}
