package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// CORS lets the admin dashboard origins call the API. With no origins
// configured any origin may call it, but without cookies, so such callers
// must send the bearer header.
func CORS(origins []string) fiber.Handler {
	cfg := cors.Config{
		AllowMethods:  strings.Join([]string{fiber.MethodGet, fiber.MethodPost, fiber.MethodPut, fiber.MethodDelete, fiber.MethodOptions}, ","),
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders: "Content-Length",
		MaxAge:        3600,
	}
	if len(origins) == 0 {
		cfg.AllowOrigins = "*"
		return cors.New(cfg)
	}
	cfg.AllowOrigins = strings.Join(origins, ",")
	cfg.AllowCredentials = true
	return cors.New(cfg)
}
