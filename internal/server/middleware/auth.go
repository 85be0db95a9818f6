package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/skillconnect/jobcore/internal/ctxutil"
	"github.com/skillconnect/jobcore/internal/jobs/structs"
	"github.com/skillconnect/jobcore/internal/logging"
	"github.com/skillconnect/jobcore/internal/net/resp"
	"github.com/skillconnect/jobcore/internal/security/jwt"
)

// TokenDecoder verifies a bearer token and returns its claims.
type TokenDecoder interface {
	DecodeToken(token string) (map[string]any, error)
}

// Authenticate requires a valid bearer token and attaches the caller.
func Authenticate(tokens TokenDecoder, l *logging.Logger) gin.HandlerFunc {
	return authenticate(tokens, l, true)
}

// OptionalAuth attaches the caller when a valid bearer token is sent and
// lets anonymous requests through. An invalid token is still rejected.
func OptionalAuth(tokens TokenDecoder, l *logging.Logger) gin.HandlerFunc {
	return authenticate(tokens, l, false)
}

func authenticate(tokens TokenDecoder, l *logging.Logger, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			if required {
				resp.Fail(c.Writer, resp.UnAuthorized("not authorized, no token"))
				c.Abort()
				return
			}
			c.Next()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			resp.Fail(c.Writer, resp.UnAuthorized("invalid authorization header format"))
			c.Abort()
			return
		}

		claims, err := tokens.DecodeToken(strings.TrimSpace(parts[1]))
		if err != nil {
			l.Warn(c.Request.Context(), "invalid token", "error", err)
			resp.Fail(c.Writer, resp.UnAuthorized("not authorized, token failed"))
			c.Abort()
			return
		}
		userID, role := jwt.Identity(claims)
		if userID == "" {
			resp.Fail(c.Writer, resp.UnAuthorized("not authorized, token failed"))
			c.Abort()
			return
		}

		ctx := ctxutil.SetUserRole(ctxutil.SetUserID(c.Request.Context(), userID), role)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireRole rejects callers that hold none of roles.
func RequireRole(roles ...structs.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := CallerFrom(c)
		if caller.Anonymous() {
			resp.Fail(c.Writer, resp.UnAuthorized("not authorized"))
			c.Abort()
			return
		}
		for _, r := range roles {
			if caller.Role == r {
				c.Next()
				return
			}
		}
		resp.Fail(c.Writer, resp.Forbidden("user role "+string(caller.Role)+" is not authorized to access this route"))
		c.Abort()
	}
}

// CallerFrom returns the identity attached to the request, if any.
func CallerFrom(c *gin.Context) structs.Caller {
	ctx := c.Request.Context()
	return structs.Caller{
		ID:   ctxutil.GetUserID(ctx),
		Role: structs.Role(ctxutil.GetUserRole(ctx)),
	}
}
