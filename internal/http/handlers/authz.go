package handlers

import (
	"github.com/gofiber/fiber/v2"

	"zando/internal/domain"
	applog "zando/internal/log"
	"zando/internal/services"
)

// LoadSession attaches the signed-in session, if any, to the request.
func LoadSession(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Cookies("sid")
		if sid == "" {
			return c.Next()
		}
		sess, err := auth.Current(c.UserContext(), sid)
		if err != nil {
			applog.Error(c, "session.load.fail", err, nil)
		}
		if sess != nil {
			if err := sess.EnsureLoaded(c.UserContext()); err != nil {
				applog.Error(c, "session.reload.fail", err, nil)
			}
			c.Locals("session", sess)
			c.Locals("user", sess.User)
			c.Locals("user_id", sess.User.ID)
		}
		return c.Next()
	}
}

func currentSession(c *fiber.Ctx) *services.Session {
	sess, _ := c.Locals("session").(*services.Session)
	return sess
}

func currentUser(c *fiber.Ctx) *domain.User {
	if sess := currentSession(c); sess != nil {
		return sess.User
	}
	return nil
}

func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := currentUser(c)
		if u == nil {
			return redirectWith(c, "/login", "Please log in to continue.")
		}
		if !u.IsAdmin() {
			applog.Security(c, "access.denied.admin", map[string]any{"role": u.Role})
			return notFound(c, fiber.StatusForbidden, "Access denied")
		}
		return c.Next()
	}
}

// RequireUser enforces that a user is logged in; otherwise redirect to login.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if currentSession(c) == nil {
			return redirectWith(c, "/login", "Please log in to continue.")
		}
		return c.Next()
	}
}
