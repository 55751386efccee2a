package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"food-delivery-backend/config"
	"food-delivery-backend/services"
)

const (
	ctxUserID = "userID"
	ctxEmail  = "email"
	ctxRoles  = "roles"
)

// AuthRequired validates the bearer access token (signature, issuer,
// audience, lifetime, no clock-skew leeway) and stores the caller's
// identity in the request context.
func AuthRequired(cfg *config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header required (Bearer <token>)"})
			return
		}
		tokenStr := strings.TrimPrefix(header, "Bearer ")

		claims := &services.AccessClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims,
			func(t *jwt.Token) (any, error) { return []byte(cfg.Secret), nil },
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(cfg.Issuer),
			jwt.WithAudience(cfg.Audience),
			jwt.WithExpirationRequired(),
		)
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		userID, err := strconv.ParseUint(claims.Subject, 10, 64)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token subject"})
			return
		}

		c.Set(ctxUserID, uint(userID))
		c.Set(ctxEmail, claims.Email)
		c.Set(ctxRoles, claims.Roles)
		c.Next()
	}
}

// RequireRoles allows the request through when the caller holds at least
// one of the given roles.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, r := range roles {
			if HasRole(c, r) {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error": "access denied, required role(s): " + strings.Join(roles, ", "),
		})
	}
}

// GetUserID extracts the caller's user ID from the context.
func GetUserID(c *gin.Context) uint {
	v, _ := c.Get(ctxUserID)
	id, _ := v.(uint)
	return id
}

// GetRoles extracts the caller's roles from the context.
func GetRoles(c *gin.Context) []string {
	v, _ := c.Get(ctxRoles)
	roles, _ := v.([]string)
	return roles
}

// HasRole reports whether the caller holds the given role.
func HasRole(c *gin.Context, role string) bool {
	for _, r := range GetRoles(c) {
		if r == role {
			return true
		}
	}
	return false
}
