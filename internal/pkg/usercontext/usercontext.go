package usercontext

import "github.com/gofiber/fiber/v2"

// ContextKey is the fiber.Locals key the middleware stores the context under.
const ContextKey = "USER_CONTEXT"

// UserContext is the request-scoped identity every handler works against.
// Resolution is a placeholder (see middleware.UserContext): real session or
// token auth slots in here without touching the handlers.
type UserContext struct {
	UserID uint `json:"user_id"`
	IsDemo bool `json:"is_demo"`
}

// GetUserContext retrieves the user context from the fiber context.
func GetUserContext(c *fiber.Ctx) UserContext {
	if ctx := c.Locals(ContextKey); ctx != nil {
		return ctx.(UserContext)
	}
	return UserContext{}
}

// GetUserID returns the current user's ID, or 0 if none was resolved.
func GetUserID(c *fiber.Ctx) uint {
	return GetUserContext(c).UserID
}
