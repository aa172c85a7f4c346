package main

import (
	"fmt"
	"log"
	"os"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/spiralhq/spiral-platform/app/repository"
	"github.com/spiralhq/spiral-platform/internal/pkg/cache"
	"github.com/spiralhq/spiral-platform/internal/pkg/database"
	"github.com/spiralhq/spiral-platform/internal/pkg/env"
	"github.com/spiralhq/spiral-platform/internal/pkg/router"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()

	// The default deployment runs on the volatile in-memory store seeded
	// with demo data; STORAGE_DRIVER=mysql switches to the database backend.
	if env.GetEnv("STORAGE_DRIVER", "memory") == "mysql" {
		database.SetupDatabase()
		repository.InitializeFactory(database.GetDB())
	} else {
		repository.InitializeFactory(nil)
	}
	cache.SetupCache()

	app := fiber.New(fiber.Config{
		AppName:   "spiral-platform",
		BodyLimit: 4 * 1024 * 1024,
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// SWAGGER / OPENAPI
	if _, err := os.Stat("./docs/openapi.yml"); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/docs/",
			FilePath: "./docs/openapi.yml",
			Path:     "api",
		}))
	}

	// ROUTER
	router.InstallRouter(app)

	return app
}
