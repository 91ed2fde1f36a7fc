package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"zando/internal/i18n"
	applog "zando/internal/log"
)

const langCookie = "lang"

// currentLang is the visitor's chosen language, or the best match for the
// browser's Accept-Language header when none was chosen.
func currentLang(c *fiber.Ctx) string {
	if lang, ok := c.Locals("Lang").(string); ok {
		return lang
	}
	if lang, ok := i18n.Parse(c.Cookies(langCookie)); ok {
		return lang
	}
	return i18n.FromAcceptLanguage(c.Get(fiber.HeaderAcceptLanguage))
}

// Language resolves the interface language once per request and exposes it
// to every template as .Lang and .T.
func Language() fiber.Handler {
	return func(c *fiber.Ctx) error {
		lang := currentLang(c)
		c.Locals("Lang", lang)
		c.Locals("T", i18n.T(lang))
		return c.Next()
	}
}

// localize adds the interface strings to data.
func localize(c *fiber.Ctx, data fiber.Map) fiber.Map {
	lang := currentLang(c)
	data["Lang"] = lang
	data["T"] = i18n.T(lang)
	return data
}

// POST /profile/language
func (h *ProfileHandler) Language(c *fiber.Ctx) error {
	lang, ok := i18n.Parse(c.FormValue("language"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "language"})
		return redirectWith(c, backTo(c, "/"), "Choose English or Khmer.")
	}
	c.Cookie(&fiber.Cookie{
		Name:     langCookie,
		Value:    lang,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(365 * 24 * time.Hour),
	})
	applog.Info(c, "profile.language", map[string]any{"lang": lang})
	return c.Redirect(backTo(c, "/"))
}
