package middleware

import (
	"strings"

	"masonko-stokvel/internal/config"
	"masonko-stokvel/internal/core/domain"
	"masonko-stokvel/internal/pkg/jwt"
	"masonko-stokvel/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware resolves the caller to (memberID, role) from the
// bearer token and stores the identity on the request context.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var accessToken string

		authHeader := c.Get("Authorization")
		if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
			accessToken = strings.TrimPrefix(authHeader, "Bearer ")
		}

		if accessToken == "" {
			return response.Unauthorized(c, "Access token required")
		}

		claims, err := jwt.ValidateAccessToken(accessToken, cfg.JWT.Secret)
		if err != nil {
			if err == jwt.ErrTokenExpired {
				return response.Unauthorized(c, "Access token expired")
			}
			return response.Unauthorized(c, "Invalid access token")
		}

		c.Locals("memberID", claims.MemberID)
		c.Locals("name", claims.Name)
		c.Locals("role", claims.Role)

		return c.Next()
	}
}

// Identity reads the authenticated caller's identity set by AuthMiddleware.
func Identity(c *fiber.Ctx) domain.Identity {
	memberID, _ := c.Locals("memberID").(uint)
	name, _ := c.Locals("name").(string)
	role, _ := c.Locals("role").(string)
	return domain.Identity{
		MemberID: memberID,
		Name:     name,
		Role:     role,
	}
}

// RoleMiddleware creates role-based authorization middleware
func RoleMiddleware(allowedRoles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("role").(string)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}

		for _, allowedRole := range allowedRoles {
			if role == allowedRole {
				return c.Next()
			}
		}

		return response.Forbidden(c, "You don't have permission to access this resource")
	}
}

// ApproverOnly allows treasurer or admin roles
func ApproverOnly() fiber.Handler {
	return RoleMiddleware("treasurer", "admin")
}

// LoanReviewerOnly allows loan-officer or admin roles
func LoanReviewerOnly() fiber.Handler {
	return RoleMiddleware("loan-officer", "admin")
}

// AdminOnly allows only the admin role
func AdminOnly() fiber.Handler {
	return RoleMiddleware("admin")
}
