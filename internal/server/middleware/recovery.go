package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/skillconnect/jobcore/internal/ecode"
	"github.com/skillconnect/jobcore/internal/logging"
	"github.com/skillconnect/jobcore/internal/net/resp"
)

// Recovery turns a panic into a 500 response and logs it with the stack.
func Recovery(l *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			l.Error(c.Request.Context(), "panic recovered",
				"panic", fmt.Sprint(rec),
				"path", c.Request.URL.Path,
				"stack", string(debug.Stack()),
			)
			if !c.Writer.Written() {
				resp.Fail(c.Writer, resp.InternalServer(ecode.Text(ecode.ServerErr)))
			}
			c.Abort()
		}()
		c.Next()
	}
}
