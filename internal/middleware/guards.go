package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/scuola-app/scuola-api/internal/models"
	appErrors "github.com/scuola-app/scuola-api/pkg/errors"
	"github.com/scuola-app/scuola-api/pkg/response"
)

type roleReader interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// RequireAdmin rejects callers whose stored role is not admin. The role is
// read fresh from the store on every call so revocation takes effect on the
// next request, not at token expiry.
func RequireAdmin(users roleReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFromContext(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		user, err := users.FindByEmail(c.Request.Context(), claims.Email)
		if err != nil || user.Role != models.RoleAdmin {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "admin access required"))
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireSelfEmail rejects requests whose email parameter does not match the
// authenticated identity. The email is taken from the query string, or from
// the named route parameter when the query is empty.
func RequireSelfEmail(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFromContext(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		email := c.Query(param)
		if email == "" {
			email = c.Param(param)
		}
		if email == "" || email != claims.Email {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "forbidden access"))
			c.Abort()
			return
		}

		c.Next()
	}
}
