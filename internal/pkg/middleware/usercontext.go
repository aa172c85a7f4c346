package middleware

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spiralhq/spiral-platform/internal/pkg/usercontext"
)

// DemoUserID is the seeded account every unidentified request resolves to.
const DemoUserID uint = 1

// UserContext resolves the current user for every request.
//
// This is the placeholder resolver: an X-User-ID header wins, otherwise the
// request is attributed to the demo account. Session/token authentication
// replaces this middleware without changing any handler.
func UserContext(c *fiber.Ctx) error {
	userID := DemoUserID
	isDemo := true

	if raw := strings.TrimSpace(c.Get("X-User-ID")); raw != "" {
		if parsed, err := strconv.ParseUint(raw, 10, 32); err == nil && parsed > 0 {
			userID = uint(parsed)
			isDemo = false
		}
	}

	c.Locals(usercontext.ContextKey, usercontext.UserContext{
		UserID: userID,
		IsDemo: isDemo,
	})
	return c.Next()
}
