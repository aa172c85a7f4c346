package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/spiralhq/spiral-platform/app/models"
	"github.com/spiralhq/spiral-platform/app/repository"
	"github.com/spiralhq/spiral-platform/internal/pkg/usercontext"
)

// HandleListFragments returns all fragments of the current user.
func HandleListFragments(c *fiber.Ctx) error {
	ensureSetup()

	fragments, err := repos.Fragments.GetByUserID(usercontext.GetUserID(c))
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load fragments")
	}
	return c.JSON(fragments)
}

// HandleGetFragment returns a single fragment by id.
func HandleGetFragment(c *fiber.Ctx) error {
	ensureSetup()

	id, err := parseIDParam(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "validation_error", "Invalid fragment id")
	}
	fragment, err := repos.Fragments.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Fragment not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load fragment")
	}
	return c.JSON(fragment)
}

// HandleCreateFragment creates a fragment owned by the current user. A
// fragment created directly in the "sealed" status gets its SealedAt stamp
// at creation time.
func HandleCreateFragment(c *fiber.Ctx) error {
	ensureSetup()

	var fragment models.Fragment
	if err := c.BodyParser(&fragment); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "validation_error", "Invalid request body")
	}
	fragment.ID = 0
	fragment.UserID = usercontext.GetUserID(c)
	fragment.SealedAt = nil
	fragment.ApplyCreateDefaults()
	if err := fragment.Validate(); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "validation_error", err.Error())
	}

	if err := repos.Fragments.Create(&fragment); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to create fragment")
	}
	return c.Status(fiber.StatusCreated).JSON(fragment)
}

// HandleUpdateFragment applies a partial update. The repository enforces the
// seal rule: the first transition into "sealed" stamps SealedAt and later
// patches never touch it.
func HandleUpdateFragment(c *fiber.Ctx) error {
	ensureSetup()

	id, err := parseIDParam(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "validation_error", "Invalid fragment id")
	}
	var patch models.FragmentPatch
	if err := c.BodyParser(&patch); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "validation_error", "Invalid request body")
	}

	fragment, err := repos.Fragments.Update(id, patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Fragment not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to update fragment")
	}
	return c.JSON(fragment)
}

// HandleDeleteFragment removes a fragment. Deleting an id that does not
// exist still succeeds.
func HandleDeleteFragment(c *fiber.Ctx) error {
	ensureSetup()

	id, err := parseIDParam(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "validation_error", "Invalid fragment id")
	}
	if err := repos.Fragments.Delete(id); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to delete fragment")
	}
	return c.JSON(fiber.Map{"message": "Fragment deleted"})
}
