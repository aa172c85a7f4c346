package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/spiralhq/spiral-platform/app/models"
	"github.com/spiralhq/spiral-platform/app/repository"
	"github.com/spiralhq/spiral-platform/internal/pkg/usercontext"
)

// HandleGetCurrentUser returns the record of the request's resolved user.
func HandleGetCurrentUser(c *fiber.Ctx) error {
	ensureSetup()

	user, err := repos.Users.GetByID(usercontext.GetUserID(c))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "User not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load user")
	}
	return c.JSON(user)
}

// HandleCreateUser registers a new user account.
func HandleCreateUser(c *fiber.Ctx) error {
	ensureSetup()

	var user models.User
	if err := c.BodyParser(&user); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "validation_error", "Invalid request body")
	}
	user.ID = 0
	user.ApplyCreateDefaults()
	if err := user.Validate(); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "validation_error", err.Error())
	}
	// Uniqueness is enforced by the store itself, so concurrent signups
	// cannot slip past a check-then-create window.
	if err := repos.Users.Create(&user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return jsonError(c, fiber.StatusBadRequest, "validation_error", "Email is already registered")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to create user")
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}
