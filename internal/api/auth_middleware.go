package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/miftajuneidi2008/ansar-dfp/internal/auth"
)

const actorContextKey = "actor"

// AuthMiddleware validates the bearer token and stores the authenticated
// actor on the context. Requests without a valid token are rejected.
func AuthMiddleware(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			Error(c, http.StatusUnauthorized, "unauthorized", "missing authorization header")
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			Error(c, http.StatusUnauthorized, "unauthorized", "invalid authorization header")
			c.Abort()
			return
		}

		claims, err := tokens.Validate(parts[1])
		if err != nil {
			Error(c, http.StatusUnauthorized, "unauthorized", "invalid token")
			c.Abort()
			return
		}

		actor := auth.ActorFromClaims(claims)
		c.Set(actorContextKey, actor)
		c.Set("user_id", actor.ID)

		c.Next()
	}
}

// RequireRole rejects requests whose actor holds none of the given roles.
// Must run after AuthMiddleware.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := CurrentActor(c)
		if !ok {
			Error(c, http.StatusUnauthorized, "unauthorized", "missing actor")
			c.Abort()
			return
		}

		for _, role := range roles {
			if actor.Role == role {
				c.Next()
				return
			}
		}

		Error(c, http.StatusForbidden, "forbidden", "insufficient role")
		c.Abort()
	}
}

// CurrentActor returns the authenticated actor stored by AuthMiddleware.
func CurrentActor(c *gin.Context) (auth.Actor, bool) {
	value, exists := c.Get(actorContextKey)
	if !exists {
		return auth.Actor{}, false
	}
	actor, ok := value.(auth.Actor)
	return actor, ok
}
