package api

import (
	"github.com/bilgisen/paperharvest/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// SetupRoutes configures all the routes for the application
func SetupRoutes(app *fiber.App, store Store) {
	handlers := NewHandlers(store)

	app.Use(recover.New())
	app.Use(middleware.RequestLogger())

	api := app.Group("/api/v1")

	api.Get("/health", handlers.HealthCheck)

	days := api.Group("/days")
	{
		days.Get("", middleware.ValidateQuery(newListDaysQuery), handlers.ListDays)
		days.Get("/:date", handlers.GetDay)
	}

	api.Get("/articles", handlers.GetArticles)

	// 404 Handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Endpoint not found",
		})
	})
}
