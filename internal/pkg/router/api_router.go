package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/spiralhq/spiral-platform/app/controllers"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New(limiter.Config{
		Max: 120,
		// Webhook retries must never be rate limited away
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/api/sus/stripe-webhook"
		},
	}))

	api.Get("/user", controllers.HandleGetCurrentUser)
	api.Post("/user", controllers.HandleCreateUser)

	api.Get("/modules", controllers.HandleListModules)
	api.Post("/modules", controllers.HandleCreateModule)
	api.Get("/modules/:id", controllers.HandleGetModule)
	api.Patch("/modules/:id", controllers.HandleUpdateModule)
	api.Delete("/modules/:id", controllers.HandleDeleteModule)

	api.Get("/fragments", controllers.HandleListFragments)
	api.Post("/fragments", controllers.HandleCreateFragment)
	api.Get("/fragments/:id", controllers.HandleGetFragment)
	api.Patch("/fragments/:id", controllers.HandleUpdateFragment)
	api.Delete("/fragments/:id", controllers.HandleDeleteFragment)

	sus := api.Group("/sus")
	sus.Get("/status", controllers.HandleSusStatus)
	sus.Get("/plans", controllers.HandleListPlans)
	sus.Post("/create-payment", controllers.HandleCreatePayment)
	sus.Post("/add-suscoins", controllers.HandleAddSuscoins)
	sus.Post("/spend-suscoins", controllers.HandleSpendSuscoins)
	sus.Post("/stripe-webhook", controllers.HandleStripeWebhook)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
