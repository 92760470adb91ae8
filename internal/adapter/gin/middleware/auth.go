package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	domain "user-account-service/internal/domain/user"
	"user-account-service/internal/usecase/user"
	"user-account-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// userContextKey is where the authentication gate stores the resolved user.
const userContextKey = "auth.user"

// TokenVerifier verifies a session token and returns the embedded user ID.
type TokenVerifier interface {
	Verify(token string) (int64, error)
}

// Authentication returns a gin middleware that extracts a bearer token from
// the Authorization header, verifies it, resolves the embedded user ID
// through the repository, and stores the user in the request context.
// Any missing, malformed, or invalid token aborts the request with 401
// before the handler runs.
func Authentication(tokens TokenVerifier, repo user.Repository, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			log.Debug("missing or malformed authorization header")
			abortUnauthorized(c)
			return
		}

		userID, err := tokens.Verify(token)
		if err != nil {
			log.Debug("token verification failed", zap.Error(err))
			abortUnauthorized(c)
			return
		}

		u, err := repo.GetByID(c.Request.Context(), userID)
		if err != nil || u == nil {
			log.Warn("token user no longer resolvable", zap.Int64("user_id", userID), zap.Error(err))
			abortUnauthorized(c)
			return
		}

		SetUser(c, u)

		// Downstream log lines carry the authenticated user id
		ctx := context.WithValue(c.Request.Context(), logger.UserIDKey, strconv.FormatInt(u.ID, 10))
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": "unauthenticated",
		"code":  "unauthorized",
	})
}

// SetUser stores a resolved user in the gin context. Exposed so tests can
// stand in for the Authentication middleware.
func SetUser(c *gin.Context, u *domain.User) {
	c.Set(userContextKey, u)
}

// UserFromContext returns the user resolved by the authentication gate.
func UserFromContext(c *gin.Context) (*domain.User, bool) {
	v, ok := c.Get(userContextKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*domain.User)
	return u, ok
}
