package v1

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shenikar/occurrence_reporting_system/internal/auth"
	"github.com/sirupsen/logrus"
)

const principalContextKey = "principal"

// AuthMiddleware authenticates requests with a Bearer token and stores the
// resulting principal in the gin context.
func AuthMiddleware(tokens *auth.TokenManager, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			log.Warn("Missing bearer token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Message: "authentication required"})
			return
		}

		principal, err := tokens.Verify(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			log.WithError(err).Warn("Token verification failed")
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Message: "invalid or expired token"})
			return
		}

		c.Set(principalContextKey, principal)
		c.Next()
	}
}

// principalFromContext returns the authenticated principal stored by
// AuthMiddleware.
func principalFromContext(c *gin.Context) (auth.Principal, bool) {
	value, ok := c.Get(principalContextKey)
	if !ok {
		return auth.Principal{}, false
	}
	principal, ok := value.(auth.Principal)
	return principal, ok
}
