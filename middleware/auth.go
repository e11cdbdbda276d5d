package middleware

import (
	"context"
	"fmt"
	"log"
	"math"
	"net/http"
	"strings"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"github.com/spotlist/api-go/services"
	"github.com/spotlist/api-go/utils"
)

// ActorResolver loads the identity behind a verified token.
type ActorResolver interface {
	ResolveActor(ctx context.Context, kind services.ActorKind, id uint) (*services.Actor, error)
}

// AuthMiddleware verifies the bearer token and stores the resolved actor in
// the context. The "role" claim selects the identity table: "admin" for admin
// users, anything else for end users.
func AuthMiddleware(secret string, resolver ActorResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Authorization header is required"})
			return
		}
		if authenticate(c, authHeader, secret, resolver) {
			c.Next()
		}
	}
}

// OptionalAuth resolves the actor when a token is present and lets anonymous
// requests through. A present but invalid token is still rejected.
func OptionalAuth(secret string, resolver ActorResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}
		if authenticate(c, authHeader, secret, resolver) {
			c.Next()
		}
	}
}

func authenticate(c *gin.Context, authHeader, secret string, resolver ActorResolver) bool {
	bearerToken := strings.Split(authHeader, " ")
	if len(bearerToken) != 2 || !strings.EqualFold(bearerToken[0], "Bearer") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid token format"})
		return false
	}

	claims := jwt.MapClaims{}
	parsedToken, err := jwt.ParseWithClaims(bearerToken[1], claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !parsedToken.Valid {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid token"})
		return false
	}

	// JSON numbers decode as float64; only whole ids that fit a uint32 are accepted.
	rawID, ok := claims["user_id"].(float64)
	if !ok || rawID <= 0 || rawID != math.Trunc(rawID) || rawID > math.MaxUint32 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid token claims"})
		return false
	}

	kind := services.ActorUser
	if role, _ := claims["role"].(string); role == string(services.ActorAdmin) {
		kind = services.ActorAdmin
	}

	actor, err := resolver.ResolveActor(c.Request.Context(), kind, uint(rawID))
	if err != nil {
		if !services.IsNotFound(err) {
			log.Printf("Failed to resolve %s %d: %v", kind, uint(rawID), err)
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unknown account"})
		return false
	}

	utils.SetActor(c, actor)
	return true
}

// RequireAdmin rejects requests whose actor is not an admin user.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !utils.GetActor(c).IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "error": "Admin access required"})
			return
		}
		c.Next()
	}
}
