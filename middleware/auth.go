package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"guildgate/utils"
)

// LocalsAdmin is the fiber locals key holding the authenticated admin subject.
const LocalsAdmin = "admin"

// Protected requires a valid admin bearer token.
func Protected(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var token string
		authHeader := c.Get("Authorization")
		if authHeader != "" {
			tokenParts := strings.Split(authHeader, " ")
			if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Invalid authorization format",
				})
			}
			token = tokenParts[1]
		} else {
			token = c.Cookies("access_token")
			if token == "" {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Authorization required",
				})
			}
		}

		claims, err := utils.ParseAdminToken(secret, token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		c.Locals(LocalsAdmin, claims.Subject)
		return c.Next()
	}
}

// AdminSubject returns the subject stored by Protected.
func AdminSubject(c *fiber.Ctx) string {
	subject, _ := c.Locals(LocalsAdmin).(string)
	return subject
}
