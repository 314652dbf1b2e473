package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/botbase/internal/pkg/errcode"
	"github.com/xxxsen/botbase/internal/pkg/jwt"
	"github.com/xxxsen/botbase/internal/pkg/response"
)

const ContextAccountIDKey = "account_id"

func JWTAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, errcode.ErrUnauthorized, "missing authorization")
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, errcode.ErrUnauthorized, "invalid authorization")
			c.Abort()
			return
		}
		claims, err := jwt.ParseToken(parts[1], secret)
		if err != nil {
			response.Error(c, errcode.ErrUnauthorized, "invalid token")
			c.Abort()
			return
		}
		c.Set(ContextAccountIDKey, claims.AccountID)
		c.Next()
	}
}

// AccountID returns the authenticated account bound to the request, or ""
// when the route is not behind JWTAuth.
func AccountID(c *gin.Context) string {
	v, ok := c.Get(ContextAccountIDKey)
	if !ok {
		return ""
	}
	id, _ := v.(string)
	return id
}
