package routes

import (
	"philosofium/backend/controllers"
	"philosofium/backend/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// NewApp builds the fiber app with the middleware stack and every route.
func NewApp(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Learning Platform",
		ErrorHandler: controllers.ErrorHandler,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: d.Cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.Metrics())
	app.Use(middleware.LoggingMiddleware(d.Log))
	app.Use(recover.New())

	SetupRoutes(app, d)
	return app
}
