package httpapi

import (
	"net/http"
	"strings"

	"chat-relay/domain"
	"chat-relay/services"

	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// requireAuth resolves the bearer token (or, for browser websocket
// clients that cannot set headers, the "token" query parameter) to a
// live identity. Handlers downstream never see client-asserted ids.
func requireAuth(authService services.IAuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if tokenString == "" {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		identity, err := authService.Authenticate(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(identityKey, identity)
		c.Next()
	}
}

func currentIdentity(c *gin.Context) domain.UserIdentity {
	return c.MustGet(identityKey).(domain.UserIdentity)
}
