package api

import (
	"alcyxob/coachtrack/internal/domain"
	"alcyxob/coachtrack/internal/service"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Constants for context keys
const (
	ContextUserIDKey   = "userID"
	ContextUserRoleKey = "userRole"
	ContextClaimsKey   = "claims"
)

// AuthMiddleware validates the bearer token through auth and stores the
// caller's id, role and claims in the context.
func AuthMiddleware(auth service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, http.StatusUnauthorized, CodeUnauthorized, "Authorization header is missing")
			return
		}

		// Expecting "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			abortWithError(c, http.StatusUnauthorized, CodeUnauthorized, "Authorization header format must be Bearer {token}")
			return
		}

		claims, err := auth.ParseToken(parts[1])
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, CodeUnauthorized, "Invalid or expired token")
			return
		}
		if !claims.Role.Valid() {
			abortWithError(c, http.StatusUnauthorized, CodeUnauthorized, "Invalid token or missing claims")
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextUserRoleKey, claims.Role)
		c.Set(ContextClaimsKey, claims)
		c.Next()
	}
}

// RoleMiddleware creates middleware to check if user has the required role(s).
// Must run AFTER AuthMiddleware.
func RoleMiddleware(allowedRoles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, err := getUserRoleFromContext(c)
		if err != nil {
			abortWithError(c, http.StatusInternalServerError, CodeInternal, err.Error())
			return
		}

		for _, allowedRole := range allowedRoles {
			if userRole == allowedRole {
				c.Next()
				return
			}
		}
		abortWithError(c, http.StatusForbidden, CodeForbidden, "Access denied: role '"+string(userRole)+"' does not have permission")
	}
}

// PasswordChangedMiddleware blocks callers still on their starter password.
// Must run AFTER AuthMiddleware.
func PasswordChangedMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := getClaimsFromContext(c)
		if err != nil {
			abortWithError(c, http.StatusInternalServerError, CodeInternal, err.Error())
			return
		}
		if !claims.PasswordChanged {
			abortWithError(c, http.StatusForbidden, CodePasswordChangeRequired, "Password must be changed before continuing")
			return
		}
		c.Next()
	}
}

// Helper function to get User ID from context (used by handlers)
func getUserIDFromContext(c *gin.Context) (string, error) {
	idRaw, exists := c.Get(ContextUserIDKey)
	if !exists {
		return "", errors.New("user ID not found in context")
	}
	idStr, ok := idRaw.(string)
	if !ok {
		return "", errors.New("invalid user ID type in context")
	}
	return idStr, nil
}

// Helper function to get User Role from context (used by handlers)
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

func getClaimsFromContext(c *gin.Context) (*service.Claims, error) {
	raw, exists := c.Get(ContextClaimsKey)
	if !exists {
		return nil, errors.New("claims not found in context")
	}
	claims, ok := raw.(*service.Claims)
	if !ok {
		return nil, errors.New("invalid claims type in context")
	}
	return claims, nil
}
