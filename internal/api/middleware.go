package api

import (
	"alcyxob/boxing-app/internal/domain"
	"alcyxob/boxing-app/internal/service"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Constants for context keys
const (
	ContextUserIDKey   = "userID"
	ContextUserRoleKey = "userRole"
)

// Cookie names shared with the web client.
const (
	accessTokenCookie  = "accessToken"
	refreshTokenCookie = "refreshToken"
)

// AuthMiddleware accepts the access token from an "Authorization: Bearer" header or,
// failing that, from the accessToken cookie.
func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := tokenFromRequest(c)
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, err.Error())
			return
		}

		claims, err := authService.ParseAccessToken(tokenString)
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, err.Error())
			return
		}
		if claims.Role == "" {
			abortWithError(c, http.StatusUnauthorized, "Invalid token or missing claims")
			return
		}

		c.Set(ContextUserIDKey, claims.UserID) // hex string
		c.Set(ContextUserRoleKey, claims.Role)
		c.Next()
	}
}

func tokenFromRequest(c *gin.Context) (string, error) {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return "", errors.New("Authorization header format must be Bearer {token}")
		}
		return parts[1], nil
	}
	if cookie, err := c.Cookie(accessTokenCookie); err == nil && cookie != "" {
		return cookie, nil
	}
	return "", errors.New("authentication token is missing")
}

// Helper to return JSON error response and abort request
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}

// RoleMiddleware creates middleware to check if user has the required role(s).
// Must run AFTER AuthMiddleware.
func RoleMiddleware(allowedRoles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, err := getUserRoleFromContext(c)
		if err != nil {
			abortWithError(c, http.StatusInternalServerError, "internal server error")
			return
		}

		for _, allowedRole := range allowedRoles {
			if userRole == allowedRole {
				c.Next()
				return
			}
		}
		denied := &service.Error{
			Kind: service.ErrForbidden,
			Msg:  fmt.Sprintf("Access denied: Role '%s' does not have permission", userRole),
		}
		abortWithError(c, statusFor(denied), denied.Error())
	}
}

// getUserIDFromContext returns the authenticated user's ID set by AuthMiddleware.
func getUserIDFromContext(c *gin.Context) (primitive.ObjectID, error) {
	idRaw, exists := c.Get(ContextUserIDKey)
	if !exists {
		return primitive.NilObjectID, errors.New("user ID not found in context")
	}
	idStr, ok := idRaw.(string)
	if !ok {
		return primitive.NilObjectID, errors.New("invalid user ID type in context")
	}
	return primitive.ObjectIDFromHex(idStr)
}

func getUserRoleFromContext(c *gin.Context) (domain.Role, error) {
	roleRaw, exists := c.Get(ContextUserRoleKey)
	if !exists {
		return "", errors.New("user role not found in context")
	}
	role, ok := roleRaw.(domain.Role)
	if !ok {
		return "", errors.New("invalid user role type in context")
	}
	return role, nil
}
