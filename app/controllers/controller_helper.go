package controllers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spiralhq/spiral-platform/app/repository"
	"github.com/spiralhq/spiral-platform/internal/pkg/billing"
	"github.com/spiralhq/spiral-platform/internal/pkg/suscoin"
)

var (
	repos      *repository.Repositories
	ledger     *suscoin.Service
	billingSvc *billing.Service
)

// Setup wires the controllers to a repository set. Called once at startup
// and by tests that want an isolated in-memory store.
func Setup(r *repository.Repositories) {
	repos = r
	ledger = suscoin.NewService(r)
	billingSvc = billing.NewService(r, ledger, billing.NewStripeClientFromEnv())
}

func ensureSetup() {
	if repos == nil {
		Setup(repository.GetGlobalFactory().GetRepositories())
	}
}

func jsonError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error":   code,
		"message": message,
	})
}

func parseIDParam(c *fiber.Ctx) (uint, error) {
	raw := strings.TrimSpace(c.Params("id"))
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	return uint(id), nil
}
