package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shilldao/herald/core"
	"github.com/shilldao/herald/service"
)

// Context keys set by AuthMiddleware.
const (
	ctxAddress = "authAddress"
	ctxRole    = "authRole"
)

// AuthMiddleware validates the bearer token and stores the grant's identity
// on the request context.
func AuthMiddleware(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header"})
			return
		}

		grant, err := auth.ValidateAccessToken(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, core.ErrTokenExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token expired"})
			} else {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			}
			return
		}

		c.Set(ctxAddress, grant.Address)
		c.Set(ctxRole, string(grant.Role))
		c.Next()
	}
}

// ModeratorOnly rejects requests whose grant lacks the moderator role. It
// must run after AuthMiddleware.
func ModeratorOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if core.Role(c.GetString(ctxRole)) != core.RoleModerator {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Moderator role required"})
			return
		}
		c.Next()
	}
}

func jsonUnmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// restoreBody puts a consumed request body back so a later ShouldBindJSON
// can read it again.
func restoreBody(c *gin.Context, body []byte) {
	c.Request.Body = io.NopCloser(bytes.NewReader(body))
}

func timeNow() time.Time { return time.Now() }
