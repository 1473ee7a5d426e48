package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/zsmartex/powermatch/controllers"
	"github.com/zsmartex/powermatch/routes/middlewares"
)

func SetupRouter(matching *controllers.MatchingController) *fiber.App {
	app := fiber.New()
	app.Use(middlewares.RequestLogger)

	app.Get("/api/v2/public/timestamp", controllers.GetTimestamp)

	app.Post("/api/v2/matching/powers", matching.CreatePower)
	app.Post("/api/v2/matching/purchases", matching.CreatePurchase)
	app.Get("/api/v2/matching/powers", matching.GetPowers)
	app.Get("/api/v2/matching/queue", matching.GetQueue)

	return app
}
