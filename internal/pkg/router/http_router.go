package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spiralhq/spiral-platform/app/controllers"
	"github.com/spiralhq/spiral-platform/app/repository"
	"github.com/spiralhq/spiral-platform/internal/pkg/middleware"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContext)

	// Wire controllers to the configured storage backend
	controllers.Setup(repository.GetGlobalFactory().GetRepositories())

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}
