package middleware

import (
	"strings"

	"go-pos-kardex/internal/model"
	"go-pos-kardex/internal/repository"
	"go-pos-kardex/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

// RequireAuth validates the JWT and stores the acting identity in the
// request context. The user row is re-checked so a deactivated account
// loses access immediately, token or not.
func RequireAuth(userRepo repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(401).JSON(fiber.Map{"error": "Missing authorization token"})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid authorization format. Use: Bearer <token>"})
		}

		claims, err := jwt.ValidateToken(parts[1])
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid or expired token"})
		}

		user, err := userRepo.FindByID(claims.UserID)
		if err != nil || !user.IsActive {
			return c.Status(401).JSON(fiber.Map{"error": "User not found or inactive"})
		}

		c.Locals("user_id", user.ID.String())
		c.Locals("user_email", user.Email)
		c.Locals("user_name", user.FullName)
		c.Locals("user_role", user.Role)

		return c.Next()
	}
}

// RequireRole is the single authorization gate: route-level role checks
// go through here, never through ad hoc string comparisons.
func RequireRole(required model.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("user_role").(model.Role)
		if !ok || !role.Valid() {
			return c.Status(403).JSON(fiber.Map{"error": "No role found"})
		}

		if role != required {
			return c.Status(403).JSON(fiber.Map{
				"error": "Forbidden: requires role " + string(required),
			})
		}

		return c.Next()
	}
}
