package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/example/ec-fulfillment/internal/auth"
	"github.com/example/ec-fulfillment/internal/domain/shared"
	"github.com/example/ec-fulfillment/internal/logger"
	"github.com/example/ec-fulfillment/internal/workflow"
	"github.com/gin-gonic/gin"
)

const (
	AccessTokenCookie = "access_token"
	claimsKey         = "claims"
)

// TokenValidator is satisfied by *auth.JWTService.
type TokenValidator interface {
	ValidateAccessToken(token string) (*auth.Claims, error)
}

// ExtractToken extracts the JWT from the access cookie or the Authorization header
func ExtractToken(c *gin.Context) string {
	// Try cookie first (for browser)
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie != "" {
		return cookie
	}
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

// Auth rejects requests without a valid access token and stores the claims
// on the context.
func Auth(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ExtractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		claims, err := tokens.ValidateAccessToken(token)
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, auth.ErrExpiredToken) {
				msg = "token expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// OptionalAuth stores the claims when a valid token is present but never
// rejects the request.
func OptionalAuth(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := ExtractToken(c); token != "" {
			if claims, err := tokens.ValidateAccessToken(token); err == nil {
				c.Set(claimsKey, claims)
			}
		}
		c.Next()
	}
}

// RequireRole must run after Auth.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := Claims(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		for _, role := range roles {
			if claims.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	}
}

func Claims(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}

// Actor is the zero Actor when the request is anonymous.
func Actor(c *gin.Context) workflow.Actor {
	claims, ok := Claims(c)
	if !ok {
		return workflow.Actor{}
	}
	return workflow.Actor{AccountID: shared.AccountID(claims.AccountID), Role: claims.Role}
}

// RequestLogger logs one line per request.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		kv := []interface{}{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"latency", time.Since(start),
		}
		if claims, ok := Claims(c); ok {
			kv = append(kv, "account_id", claims.AccountID)
		}
		switch {
		case status >= http.StatusInternalServerError:
			log.Error("request", kv...)
		case status >= http.StatusBadRequest:
			log.Info("request", kv...)
		default:
			log.Debug("request", kv...)
		}
	}
}
