// Package middleware holds the gin middleware chain of the HTTP server.
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/skillconnect/jobcore/internal/ctxutil"
	"github.com/skillconnect/jobcore/internal/logging"
	"github.com/skillconnect/jobcore/internal/observes"
	"go.opentelemetry.io/otel/attribute"
)

// Trace propagates or generates the request trace id and opens a request span.
func Trace() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if id := c.GetHeader(ctxutil.TraceHeader); id != "" {
			ctx = ctxutil.SetTraceID(ctx, id)
		}
		ctx, id := ctxutil.EnsureTraceID(ctx)
		c.Header(ctxutil.TraceHeader, id)

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		ctx, span := observes.Start(ctx, observes.LayerHandler, c.Request.Method+" "+route,
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", route),
		)
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		span.SetAttributes(attribute.Int("http.status_code", c.Writer.Status()))
		var err error
		if len(c.Errors) > 0 {
			err = c.Errors.Last()
		}
		observes.End(span, err)
	}
}

// Logger logs every request once it completes.
func Logger(l *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		kv := []any{
			"method", method,
			"path", path,
			"status", status,
			"duration", time.Since(start).String(),
			"ip", c.ClientIP(),
		}
		switch {
		case status >= 500:
			l.Error(c.Request.Context(), "HTTP request", kv...)
		case status >= 400:
			l.Warn(c.Request.Context(), "HTTP request", kv...)
		default:
			l.Info(c.Request.Context(), "HTTP request", kv...)
		}
	}
}
