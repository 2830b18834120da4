package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	ContextKeySubject = "auth_subject"
	ContextKeyRole    = "auth_role"
)

// RequireRole validates an HS256 bearer token and requires its "role" claim
// to equal role. Tokens are issued elsewhere.
func RequireRole(secret, role string) gin.HandlerFunc {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		raw := strings.TrimPrefix(auth, "Bearer ")

		claims := jwt.MapClaims{}
		tok, err := parser.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
			if secret == "" {
				return nil, errors.New("jwt secret not configured")
			}
			return []byte(secret), nil
		})
		if err != nil || !tok.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		if r, _ := claims["role"].(string); r != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}

		sub, _ := claims.GetSubject()
		c.Set(ContextKeySubject, sub)
		c.Set(ContextKeyRole, role)
		c.Next()
	}
}
