package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/BruksfildServices01/housecall-booking/internal/config"
	"github.com/BruksfildServices01/housecall-booking/internal/httperr"
)

const (
	ContextAdminID   = "adminID"
	ContextAdminName = "adminUsername"
	ContextAdminRole = "adminRole"
)

const TokenTTL = 24 * time.Hour

// IssueToken signs an HS256 token for an admin user.
func IssueToken(secret string, adminID uint, username, role string, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":      adminID,
		"username": username,
		"role":     role,
		"exp":      now.Add(TokenTTL).Unix(),
		"iat":      now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httperr.Unauthorized(c, "MISSING_AUTHORIZATION", "authorization header is required")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			httperr.Unauthorized(c, "INVALID_AUTHORIZATION", "expected a bearer token")
			c.Abort()
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrTokenMalformed
			}
			return []byte(cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			httperr.Unauthorized(c, "INVALID_TOKEN", "token is invalid or expired")
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			httperr.Unauthorized(c, "INVALID_TOKEN", "token claims are invalid")
			c.Abort()
			return
		}

		adminID, ok1 := claims["sub"].(float64)
		username, ok2 := claims["username"].(string)
		role, _ := claims["role"].(string)
		if !ok1 || !ok2 {
			httperr.Unauthorized(c, "INVALID_TOKEN", "token payload is incomplete")
			c.Abort()
			return
		}

		c.Set(ContextAdminID, uint(adminID))
		c.Set(ContextAdminName, username)
		c.Set(ContextAdminRole, role)

		c.Next()
	}
}

// RequireRole must run after AuthMiddleware.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextAdminRole)
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		httperr.Write(c, http.StatusForbidden, "FORBIDDEN", "insufficient role")
		c.Abort()
	}
}

// Actor names whoever is calling, for audit trails.
func Actor(c *gin.Context) string {
	if name := c.GetString(ContextAdminName); name != "" {
		return name
	}
	return "anonymous"
}
