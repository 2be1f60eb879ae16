package middleware

import (
	"strings"

	"medstore/internal/apperrors"
	"medstore/internal/services"

	"github.com/gofiber/fiber/v2"
)

const (
	localUserID = "user_id"
	localRole   = "role"
)

// TokenValidator resolves a bearer token to an identity. *services.AuthService implements it.
type TokenValidator interface {
	ValidateToken(tokenString string) (*services.Claims, error)
}

// AuthRequired is a Fiber middleware to check for a valid JWT token.
// When roles are given the token's role must be one of them, otherwise the request is forbidden.
func AuthRequired(validator TokenValidator, roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return deny(c, apperrors.Unauthorized("Authorization header is required"))
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return deny(c, apperrors.Unauthorized("Authorization header format must be 'Bearer <token>'"))
		}

		claims, err := validator.ValidateToken(parts[1])
		if err != nil {
			return deny(c, apperrors.Unauthorized("Invalid or expired token"))
		}
		if len(roles) > 0 && !hasRole(claims.Role, roles) {
			return deny(c, apperrors.Forbidden("Access denied"))
		}

		c.Locals(localUserID, claims.Subject)
		c.Locals(localRole, claims.Role)
		return c.Next()
	}
}

func hasRole(role string, allowed []string) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

func deny(c *fiber.Ctx, err *apperrors.AppError) error {
	return c.Status(err.Status).JSON(fiber.Map{
		"success": false,
		"code":    err.Code,
		"message": err.Message,
	})
}

// UserID returns the subject of the authenticated request.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(localUserID).(string)
	return id
}

// Role returns the role of the authenticated request.
func Role(c *fiber.Ctx) string {
	role, _ := c.Locals(localRole).(string)
	return role
}
