package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/spiralhq/spiral-platform/app/models"
	"github.com/spiralhq/spiral-platform/app/repository"
	"github.com/spiralhq/spiral-platform/internal/pkg/usercontext"
)

// HandleListModules returns all modules of the current user.
func HandleListModules(c *fiber.Ctx) error {
	ensureSetup()

	modules, err := repos.Modules.GetByUserID(usercontext.GetUserID(c))
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load modules")
	}
	return c.JSON(modules)
}

// HandleGetModule returns a single module by id.
func HandleGetModule(c *fiber.Ctx) error {
	ensureSetup()

	id, err := parseIDParam(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "validation_error", "Invalid module id")
	}
	module, err := repos.Modules.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Module not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load module")
	}
	return c.JSON(module)
}

// HandleCreateModule creates a module owned by the current user.
func HandleCreateModule(c *fiber.Ctx) error {
	ensureSetup()

	var module models.Module
	if err := c.BodyParser(&module); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "validation_error", "Invalid request body")
	}
	module.ID = 0
	module.UserID = usercontext.GetUserID(c)
	module.ApplyCreateDefaults()
	if err := module.Validate(); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "validation_error", err.Error())
	}

	if err := repos.Modules.Create(&module); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to create module")
	}
	return c.Status(fiber.StatusCreated).JSON(module)
}

// HandleUpdateModule applies a partial update; absent fields keep their
// stored value.
func HandleUpdateModule(c *fiber.Ctx) error {
	ensureSetup()

	id, err := parseIDParam(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "validation_error", "Invalid module id")
	}
	var patch models.ModulePatch
	if err := c.BodyParser(&patch); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "validation_error", "Invalid request body")
	}

	module, err := repos.Modules.Update(id, patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Module not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to update module")
	}
	return c.JSON(module)
}

// HandleDeleteModule removes a module. Deleting an id that does not exist
// still succeeds.
func HandleDeleteModule(c *fiber.Ctx) error {
	ensureSetup()

	id, err := parseIDParam(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "validation_error", "Invalid module id")
	}
	if err := repos.Modules.Delete(id); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to delete module")
	}
	return c.JSON(fiber.Map{"message": "Module deleted"})
}
