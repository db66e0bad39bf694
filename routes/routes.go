package routes

import (
	controller "guildgate/controllers"
	"guildgate/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
)

// Dependencies holds everything the routes need.
type Dependencies struct {
	Features   *controller.FeatureController
	Rollouts   *controller.RolloutController
	JWTSecret  string
	RateLimit  int
	RateStore  fiber.Storage
	Logger     logrus.FieldLogger
	LogRequest bool
}

func SetupAPIRoutes(app *fiber.App, deps Dependencies) {
	handlers := []fiber.Handler{
		middleware.Protected(deps.JWTSecret),
		middleware.AdminRateLimiter(deps.RateLimit, deps.RateStore, deps.Logger),
	}
	if deps.LogRequest {
		handlers = append(handlers, logger.New(logger.Config{
			Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
		}))
	}
	api := app.Group("/api/v1", handlers...)

	// Feature routes
	features := api.Group("/features")
	features.Get("/", deps.Features.ListFeatures)
	features.Put("/:name/default", deps.Features.SetDefault)

	// Guild override routes
	guild := api.Group("/guilds/:guild/features")
	guild.Get("/", deps.Features.GuildFeatures)
	guild.Get("/:name", deps.Features.Evaluate)
	guild.Put("/:name", deps.Features.SetOverride)
	guild.Delete("/:name", deps.Features.ClearOverride)

	// Rollout routes
	rollouts := api.Group("/rollouts")
	rollouts.Get("/", deps.Rollouts.ListRollouts)
	rollouts.Post("/", deps.Rollouts.CreateRollout)
	rollouts.Post("/tick", deps.Rollouts.Tick)
	rollouts.Get("/:name", deps.Rollouts.GetRollout)
	rollouts.Put("/:name", deps.Rollouts.ModifyRollout)
	rollouts.Delete("/:name", deps.Rollouts.DeleteRollout)
	rollouts.Post("/:name/start", deps.Rollouts.StartRollout)
	rollouts.Post("/:name/stop", deps.Rollouts.StopRollout)
	rollouts.Post("/:name/link", deps.Rollouts.LinkRollout)
	rollouts.Post("/:name/unlink", deps.Rollouts.UnlinkRollout)

	deps.Logger.Info("API routes initialized successfully")
}

func SetupRoutes(app *fiber.App, deps Dependencies) {
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	SetupAPIRoutes(app, deps)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "The requested resource was not found",
		})
	})
}
