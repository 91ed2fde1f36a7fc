package handlers

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"zando/internal/backend"
	"zando/internal/log"
	"zando/internal/services"
	"zando/internal/validate"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AuthHandler struct {
	Auth *services.AuthService
}

func ensureSID(c *fiber.Ctx) string {
	sid := c.Cookies("sid")
	if sid == "" {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     "sid",
			Value:    sid,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Secure:   false,
		})
	}
	return sid
}

// backendMessage returns the message the backend attached to a failed call, or fallback.
func backendMessage(err error, fallback string) string {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	if currentSession(c) != nil {
		return c.Redirect("/")
	}
	return render(c, "login", fiber.Map{"Err": ""})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	sid := ensureSID(c)
	email := c.FormValue("email")
	pass := c.FormValue("password")
	if _, ok := validate.Email(email); !ok || pass == "" {
		log.Security(c, "auth.login.fail", map[string]any{"email": email, "reason": "bad_format"})
		return c.Status(fiber.StatusUnauthorized).Render("login", fiber.Map{"Err": "Invalid email or password", "Email": email, "CSRFToken": c.Cookies("csrf_")})
	}

	sess, err := h.Auth.Login(c.UserContext(), sid, email, pass)
	if err != nil {
		if errors.Is(err, services.ErrBadCreds) {
			log.Security(c, "auth.login.fail", map[string]any{"email": email})
			return c.Status(fiber.StatusUnauthorized).Render("login", fiber.Map{"Err": "Invalid email or password", "Email": email, "CSRFToken": c.Cookies("csrf_")})
		}
		log.Error(c, "auth.login.error", err, map[string]any{"email": email})
		return c.Status(fiber.StatusBadGateway).Render("login", fiber.Map{"Err": "Login is unavailable right now. Please try again.", "Email": email, "CSRFToken": c.Cookies("csrf_")})
	}

	c.Locals("user_id", sess.User.ID)
	log.Audit(c, "auth.login.success", map[string]any{"email": email, "role": sess.User.Role})
	if sess.User.IsAdmin() {
		return c.Redirect("/admin")
	}
	return c.Redirect("/")
}

// POST /auth/google receives the credential posted by Google Identity Services.
func (h *AuthHandler) GoogleLogin(c *fiber.Ctx) error {
	sid := ensureSID(c)
	cred := strings.TrimSpace(c.FormValue("credential"))
	if cred == "" {
		return redirectWith(c, "/login", "Google sign-in failed. Please try again.")
	}
	sess, err := h.Auth.GoogleLogin(c.UserContext(), sid, cred)
	if err != nil {
		if errors.Is(err, services.ErrBadCreds) {
			log.Security(c, "auth.google.fail", nil)
		} else {
			log.Error(c, "auth.google.error", err, nil)
		}
		return redirectWith(c, "/login", "Google sign-in failed. Please try again.")
	}
	c.Locals("user_id", sess.User.ID)
	log.Audit(c, "auth.google.success", map[string]any{"email": sess.User.Email})
	if sess.User.IsAdmin() {
		return c.Redirect("/admin")
	}
	return c.Redirect("/")
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := ensureSID(c)
	if err := h.Auth.Logout(sid); err != nil {
		log.Error(c, "auth.logout.fail", err, nil)
	}
	// Expire cookie
	c.Cookie(&fiber.Cookie{
		Name:     "sid",
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   false,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
	log.Audit(c, "auth.logout", map[string]any{"sid": sid})
	return c.Redirect("/")
}

func (h *AuthHandler) RegisterForm(c *fiber.Ctx) error {
	return render(c, "register", fiber.Map{})
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	in := backend.RegisterRequest{Password: c.FormValue("password")}
	form := fiber.Map{
		"FirstName": c.FormValue("firstName"),
		"LastName":  c.FormValue("lastName"),
		"Email":     c.FormValue("email"),
	}
	fail := func(field, msg string) error {
		log.Security(c, "validation.fail", map[string]any{"field": field})
		form["Err"] = msg
		return c.Status(fiber.StatusBadRequest).Render("register", form)
	}

	var ok bool
	if in.FirstName, ok = validate.Name(c.FormValue("firstName")); !ok {
		return fail("firstName", "First name is required")
	}
	if in.LastName, ok = validate.Name(c.FormValue("lastName")); !ok {
		return fail("lastName", "Last name is required")
	}
	if in.Email, ok = validate.Email(c.FormValue("email")); !ok {
		return fail("email", "Enter a valid email address")
	}
	if err := validate.Password(in.Password, c.FormValue("confirmPassword")); err != nil {
		return fail("password", err.Error())
	}

	if err := h.Auth.Register(c.UserContext(), in); err != nil {
		log.Error(c, "auth.register.fail", err, map[string]any{"email": in.Email})
		form["Err"] = backendMessage(err, "Registration failed. Please try again.")
		return c.Status(fiber.StatusBadRequest).Render("register", form)
	}
	log.Audit(c, "auth.register", map[string]any{"email": in.Email})
	setFlash(c, "We sent a verification code to your email.")
	return c.Redirect("/verify-otp?email=" + url.QueryEscape(in.Email))
}

func (h *AuthHandler) VerifyForm(c *fiber.Ctx) error {
	return render(c, "verify_otp", fiber.Map{"Email": c.Query("email")})
}

func (h *AuthHandler) Verify(c *fiber.Ctx) error {
	email, ok := validate.Email(c.FormValue("email"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).Render("verify_otp", fiber.Map{"Err": "Enter a valid email address"})
	}
	otp, ok := validate.OTP(c.FormValue("otp"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "otp"})
		return c.Status(fiber.StatusBadRequest).Render("verify_otp", fiber.Map{"Email": email, "Err": "Enter the 6-digit code"})
	}
	if err := h.Auth.VerifyOTP(c.UserContext(), email, otp); err != nil {
		log.Security(c, "auth.otp.fail", map[string]any{"email": email})
		return c.Status(fiber.StatusBadRequest).Render("verify_otp", fiber.Map{"Email": email, "Err": backendMessage(err, "Invalid or expired code")})
	}
	log.Audit(c, "auth.otp.verified", map[string]any{"email": email})
	return redirectWith(c, "/login", "Your account is verified. Please log in.")
}

func (h *AuthHandler) Resend(c *fiber.Ctx) error {
	email, ok := validate.Email(c.FormValue("email"))
	if !ok {
		return redirectWith(c, "/register", "Enter a valid email address")
	}
	back := "/verify-otp?email=" + url.QueryEscape(email)
	if err := h.Auth.ResendOTP(c.UserContext(), email); err != nil {
		log.Error(c, "auth.otp.resend.fail", err, map[string]any{"email": email})
		return redirectWith(c, back, backendMessage(err, "Could not resend the code. Please try again."))
	}
	log.Info(c, "auth.otp.resend", map[string]any{"email": email})
	return redirectWith(c, back, "A new code is on its way.")
}
