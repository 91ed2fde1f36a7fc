package handlers

import (
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
)

const flashCookie = "flash"

// setFlash stores a one-shot message shown by the next rendered page.
func setFlash(c *fiber.Ctx, msg string) {
	c.Cookie(&fiber.Cookie{
		Name:     flashCookie,
		Value:    url.QueryEscape(msg),
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(time.Minute),
	})
}

func takeFlash(c *fiber.Ctx) string {
	raw := c.Cookies(flashCookie)
	if raw == "" {
		return ""
	}
	c.ClearCookie(flashCookie)
	msg, err := url.QueryUnescape(raw)
	if err != nil {
		return ""
	}
	return msg
}

// redirectWith flashes msg and redirects to to.
func redirectWith(c *fiber.Ctx, to, msg string) error {
	setFlash(c, msg)
	return c.Redirect(to)
}

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	localize(c, data)
	if sess := currentSession(c); sess != nil {
		data["User"] = sess.User
		data["CartCount"] = sess.Cart.Count()
		data["UnreadCount"] = sess.Notifications.UnreadCount()
	}
	if _, ok := data["Flash"]; !ok {
		if msg := takeFlash(c); msg != "" {
			data["Flash"] = msg
		}
	}
	// Pick up the token the CSRF middleware put into Locals
	tok, _ := c.Locals("CSRFToken").(string)
	if tok == "" {
		// fall back to the cookie so forms never render an empty hidden field
		tok = c.Cookies("csrf_")
	}
	if tok != "" {
		data["CSRFToken"] = tok
	}
	return c.Render(tmpl, data)
}

// notFound renders the friendly error page with status.
func notFound(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).Render("notfound", localize(c, fiber.Map{"Message": msg}))
}
