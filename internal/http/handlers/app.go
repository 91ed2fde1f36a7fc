package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	applog "zando/internal/log"
)

// AppConfig holds what differs between the server binary and tests.
type AppConfig struct {
	Views        fiber.Views
	StaticDir    string // empty: no static files
	AccessLog    bool
	RateLimit    int // requests per minute per IP, 0 disables
	LoginLimit   int // login attempts per 10 minutes per IP, 0 disables
	CookieSecure bool
}

// ErrorHandler logs the failure and shows a friendly page without internals.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < 500 {
		code = fe.Code
	}
	applog.Error(c, "server.error", err, nil)
	msg := "Something went wrong. Please try again."
	if code == fiber.StatusNotFound {
		msg = "Page not found"
	}
	if code == fiber.StatusRequestEntityTooLarge {
		msg = "The upload is too large."
	}
	if rerr := c.Status(code).Render("notfound", localize(c, fiber.Map{"Message": msg})); rerr != nil {
		return c.Status(code).SendString(msg)
	}
	return nil
}

// NewApp builds the storefront and back-office with its middleware stack.
func NewApp(d *Deps, cfg AppConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		Views:        cfg.Views,
		ErrorHandler: ErrorHandler,
		BodyLimit:    8 << 20, // product forms carry images
		// .Lang and .T reach pages rendered outside render
		PassLocalsToViews: true,
	})

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(recover.New())
	app.Use(Language())
	if cfg.AccessLog {
		app.Use(logger.New())
	}
	app.Use(helmet.New())
	app.Use(LoadSession(d.Auth))
	if cfg.RateLimit > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.RateLimit,
			Expiration: time.Minute,
			Next: func(c *fiber.Ctx) bool {
				return strings.HasPrefix(string(c.Request().URI().Path()), "/static/")
			},
		}))
	}
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   cfg.CookieSecure,
		Next: func(c *fiber.Ctx) bool {
			// Google posts the credential cross-site; the ID token is verified by the backend.
			return c.Path() == "/auth/google"
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", map[string]any{"form": c.FormValue("csrf") != ""})
			return notFound(c, fiber.StatusForbidden, "Security check failed. Please refresh and try again.")
		},
	}))
	app.Use(func(c *fiber.Ctx) error {
		if tok, ok := c.Locals("csrf").(string); ok {
			c.Locals("CSRFToken", tok)
		}
		return c.Next()
	})

	if cfg.StaticDir != "" {
		app.Static("/static", cfg.StaticDir)
	}

	Mount(app, d, cfg)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return notFound(c, fiber.StatusNotFound, "Page not found")
	})
	return app
}

// Mount registers every page and form route.
func Mount(app *fiber.App, d *Deps, cfg AppConfig) {
	// Public pages
	app.Get("/", d.CategoryHandler.Home)
	app.Get("/search", d.SearchHandler.Search)
	app.Get("/category/:id", d.CategoryHandler.List)
	app.Get("/product", func(c *fiber.Ctx) error {
		return notFound(c, fiber.StatusNotFound, "This item is no longer available")
	})
	app.Get("/product/:id", d.ProductHandler.Detail)

	// API
	api := app.Group("/api/v1")
	availLimiter := limiter.New(limiter.Config{
		Max:        15,
		Expiration: 30 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|avail"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.availability.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	})
	api.Get("/availability", availLimiter, d.InventoryHandler.Check)

	// Auth routes (throttled per IP and route)
	throttle := func(h fiber.Handler) []fiber.Handler {
		if cfg.LoginLimit <= 0 {
			return []fiber.Handler{h}
		}
		return []fiber.Handler{limiter.New(limiter.Config{
			Max:        cfg.LoginLimit,
			Expiration: 10 * time.Minute,
			LimitReached: func(c *fiber.Ctx) error {
				applog.Security(c, "rate.login.hit", map[string]any{"route": c.Path()})
				return c.Status(fiber.StatusTooManyRequests).Render("login", fiber.Map{"Err": "Too many attempts. Please try again later."})
			},
		}), h}
	}
	app.Get("/login", d.AuthHandler.LoginForm)
	app.Post("/login", throttle(d.AuthHandler.Login)...)
	app.Post("/auth/google", throttle(d.AuthHandler.GoogleLogin)...)
	app.Post("/logout", d.AuthHandler.Logout)
	app.Get("/register", d.AuthHandler.RegisterForm)
	app.Post("/register", throttle(d.AuthHandler.Register)...)
	app.Get("/verify-otp", d.AuthHandler.VerifyForm)
	app.Post("/verify-otp", throttle(d.AuthHandler.Verify)...)
	app.Post("/resend-otp", throttle(d.AuthHandler.Resend)...)

	// Cart, favorites & checkout; adding redirects anonymous users itself
	app.Post("/cart/add", d.CartHandler.Add)
	app.Post("/favorites", d.WishlistHandler.Save)
	app.Post("/favorites/delete", d.WishlistHandler.Unsave)
	app.Post("/profile/language", d.ProfileHandler.Language)

	user := RequireUser()
	app.Get("/cart", user, d.CartHandler.View)
	app.Post("/cart/remove", user, d.CartHandler.Remove)
	app.Get("/checkout", user, d.OrderHandler.Checkout)
	app.Post("/checkout", user, d.OrderHandler.Place)
	app.Post("/checkout/confirm", user, d.OrderHandler.Confirm)
	app.Post("/checkout/cancel", user, d.OrderHandler.Cancel)
	app.Get("/favorites", user, d.WishlistHandler.List)
	app.Get("/notifications", user, d.NotificationHandler.List)
	app.Post("/notifications/:id/read", user, d.NotificationHandler.MarkRead)
	app.Get("/profile", user, d.ProfileHandler.View)
	app.Post("/profile", user, d.ProfileHandler.Update)

	// Admin
	admin := app.Group("/admin", RequireAdmin())
	admin.Get("/", d.AdminHandler.Dashboard)
	admin.Get("/products", d.AdminHandler.Products)
	admin.Get("/products/new", d.AdminHandler.NewProduct)
	admin.Post("/products", d.AdminHandler.CreateProduct)
	admin.Get("/products/:id/edit", d.AdminHandler.EditProduct)
	admin.Post("/products/:id", d.AdminHandler.UpdateProduct)
	admin.Post("/products/:id/delete", d.AdminHandler.DeleteProduct)
	admin.Get("/transactions", d.AdminHandler.Transactions)
	admin.Get("/transactions/export", d.AdminHandler.Export)
	admin.Post("/transactions/:id/status", d.AdminHandler.UpdateStatus)
	admin.Get("/customers", d.AdminHandler.Customers)
	admin.Get("/customers/:id", d.AdminHandler.Customer)
	admin.Get("/reports", d.AdminHandler.Reports)
}
