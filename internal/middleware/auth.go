package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mkume/task-tracker/internal/constants"
	apierrors "github.com/mkume/task-tracker/internal/errors"
	"github.com/mkume/task-tracker/internal/token"
)

// RequireAuth verifies the bearer token on the request and stores the
// resolved user id in the gin context. Requests without a valid token are
// rejected before any handler runs.
func RequireAuth(tokens *token.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := bearerToken(c)
		if tokenStr == "" {
			apierrors.Unauthorized(c, "Missing auth token")
			c.Abort()
			return
		}

		claims, err := tokens.Verify(tokenStr)
		if err != nil {
			apierrors.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUserID, claims.UserID)
		c.Next()
	}
}

// GetUserID retrieves the current user id from context. The second return
// is false when the request went through an unauthenticated pipeline.
func GetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return "", false
	}
	id, ok := v.(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
