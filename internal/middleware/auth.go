package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// SessionVerifier reports whether a browsing session is still signed in as userID.
type SessionVerifier interface {
	SignedIn(sessionID, userID string) bool
}

// AuthMiddleware accepts a bearer token only while the session it was issued
// for is still signed in, so signing out revokes it immediately.
func AuthMiddleware(secret string, sessions SessionVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid claims"})
			return
		}

		sub, _ := claims["sub"].(string)
		sid, _ := claims["sid"].(string)
		if sub == "" || sid == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid claims"})
			return
		}
		if !sessions.SignedIn(sid, sub) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session signed out"})
			return
		}

		role, _ := claims["role"].(string)
		c.Set("userID", sub)
		c.Set("userRole", role)
		c.Set(sessionKey, sid)
		c.Next()
	}
}

// bearerToken reads the Authorization header. Websocket clients, which cannot
// set headers, pass the token as ?access_token= instead.
func bearerToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		if !strings.HasPrefix(header, "Bearer ") {
			return ""
		}
		return header[7:]
	}
	return c.Query("access_token")
}

func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetUserRole(c) != "admin" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin only"})
			return
		}
		c.Next()
	}
}

func GetUserID(c *gin.Context) string {
	id, _ := c.Get("userID")
	uid, _ := id.(string)
	return uid
}

func GetUserRole(c *gin.Context) string {
	role, _ := c.Get("userRole")
	r, _ := role.(string)
	return r
}
