package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"
)

// actorHeader carries the authenticated caller's id. Authentication itself is
// an upstream concern; the engine only needs to know who is acting.
const actorHeader = "X-Actor-ID"

const actorContextKey = "rentable/actor"

// ActorMiddleware extracts the actor id from the request header.
func ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := c.GetHeader(actorHeader); id != "" {
			c.Set(actorContextKey, id)
		}
		c.Next()
	}
}

// requireActor aborts with 401 when no actor id is present.
func requireActor(c *gin.Context) (string, bool) {
	v, ok := c.Get(actorContextKey)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"code": "unauthenticated", "message": "missing " + actorHeader + " header"}})
		return "", false
	}
	id, _ := v.(string)
	if id == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"code": "unauthenticated", "message": "missing " + actorHeader + " header"}})
		return "", false
	}
	return id, true
}
