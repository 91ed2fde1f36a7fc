package handlers

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"

	"zando/internal/domain"
	applog "zando/internal/log"
	"zando/internal/services"
	"zando/internal/validate"
)

type OrderHandler struct {
	Catalog   *services.CatalogService
	Accounts  *services.AccountService
	StaticDir string // where /static/... payment logos and QR codes live
}

// paymentOption is a payment method with the images that are actually installed.
type paymentOption struct {
	domain.PaymentMethod
	LogoURL string
	QRURL   string
}

// staticURL returns src when the file behind the /static/ URL exists.
func (h *OrderHandler) staticURL(src string) string {
	rel, ok := strings.CutPrefix(src, "/static/")
	if !ok || h.StaticDir == "" {
		return ""
	}
	fi, err := os.Stat(filepath.Join(h.StaticDir, filepath.FromSlash(rel)))
	if err != nil || fi.IsDir() {
		return ""
	}
	return src
}

func (h *OrderHandler) option(m domain.PaymentMethod) paymentOption {
	return paymentOption{PaymentMethod: m, LogoURL: h.staticURL(m.Logo), QRURL: h.staticURL(m.QRImage)}
}

func (h *OrderHandler) paymentOptions() []paymentOption {
	out := make([]paymentOption, 0, len(domain.PaymentMethods))
	for _, m := range domain.PaymentMethods {
		out = append(out, h.option(m))
	}
	return out
}

// guard loads the cart lines and sends the shopper elsewhere when checkout
// cannot proceed. A nil error with done set means a response was written.
func (h *OrderHandler) guard(c *fiber.Ctx) (sess *services.Session, lines []services.Line, done bool, err error) {
	sess = currentSession(c)
	if sess == nil {
		return nil, nil, true, redirectWith(c, "/login", "Please log in to check out.")
	}
	lines, err = cartLines(c, h.Catalog, sess)
	if err != nil {
		applog.Error(c, "checkout.load", err, nil)
		return sess, nil, true, notFound(c, fiber.StatusBadGateway, "Could not load your cart")
	}
	switch err := services.Guard(sess.User, lines); {
	case errors.Is(err, services.ErrUnauthenticated):
		return sess, nil, true, redirectWith(c, "/login", "Please log in to check out.")
	case errors.Is(err, services.ErrCartEmpty):
		return sess, nil, true, redirectWith(c, "/cart", "Your cart is empty.")
	}
	return sess, lines, false, nil
}

// GET /checkout
func (h *OrderHandler) Checkout(c *fiber.Ctx) error {
	sess, lines, done, err := h.guard(c)
	if done {
		return err
	}
	sess.Checkout.Reset()

	form := fiber.Map{"PaymentMethod": domain.DefaultPaymentMethod}
	if prof, err := h.Accounts.Profile(c.UserContext(), sess.User); err == nil {
		form["Name"] = prof.FullName()
		form["Phone"] = prof.PhoneNumber
		form["Address"] = prof.Address
	}
	data := fiber.Map{
		"Lines":   lines,
		"Totals":  sess.Checkout.Totals(lines),
		"Methods": h.paymentOptions(),
		"Form":    form,
		"State":   sess.Checkout.State().String(),
	}
	if req, ok := sess.Checkout.Pending(); ok {
		method, _ := domain.LookupPaymentMethod(req.PaymentMethod)
		qr := h.option(method)
		if qr.QRURL == "" {
			applog.Error(c, "checkout.qr.missing", errors.New("qr image not installed"), map[string]any{"payment_method": method.Name, "src": method.QRImage})
		}
		data["QR"] = qr
		data["Form"] = fiber.Map{
			"Name":          req.Address.Name,
			"Address":       req.Address.Address,
			"Phone":         req.Address.Phone,
			"PaymentMethod": req.PaymentMethod,
		}
	}
	return render(c, "checkout", data)
}

// POST /checkout
func (h *OrderHandler) Place(c *fiber.Ctx) error {
	sess, lines, done, err := h.guard(c)
	if done {
		return err
	}
	req := services.CheckoutRequest{
		Address: services.Address{
			Name:    strings.TrimSpace(c.FormValue("name")),
			Address: strings.TrimSpace(c.FormValue("address")),
			Phone:   strings.TrimSpace(c.FormValue("phone")),
		},
		PaymentMethod: c.FormValue("paymentMethod"),
	}
	if req.Address.Name != "" {
		if _, ok := validate.Name(req.Address.Name); !ok {
			applog.Security(c, "validation.fail", map[string]any{"field": "name"})
			return redirectWith(c, "/checkout", "Enter a name of at most 50 characters.")
		}
	}
	if req.Address.Phone != "" {
		if _, ok := validate.Phone(req.Address.Phone); !ok {
			applog.Security(c, "validation.fail", map[string]any{"field": "phone"})
			return redirectWith(c, "/checkout", "Enter a valid phone number.")
		}
	}

	st, err := sess.Checkout.Start(c.UserContext(), lines, req)
	return h.after(c, sess, st, err, req.PaymentMethod)
}

// POST /checkout/confirm is the "I Have Paid" button of the QR step.
func (h *OrderHandler) Confirm(c *fiber.Ctx) error {
	sess, lines, done, err := h.guard(c)
	if done {
		return err
	}
	req, _ := sess.Checkout.Pending()
	st, err := sess.Checkout.ConfirmPaid(c.UserContext(), lines)
	return h.after(c, sess, st, err, req.PaymentMethod)
}

// POST /checkout/cancel closes the QR step.
func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	sess := currentSession(c)
	if sess == nil {
		return c.Redirect("/login")
	}
	sess.Checkout.Cancel()
	applog.Info(c, "checkout.qr.cancel", nil)
	return c.Redirect("/checkout")
}

func (h *OrderHandler) after(c *fiber.Ctx, sess *services.Session, st services.CheckoutState, err error, method string) error {
	switch {
	case errors.Is(err, services.ErrInFlight):
		return redirectWith(c, "/checkout", "Your order is already being placed.")
	case errors.Is(err, services.ErrUnknownPayment):
		applog.Security(c, "validation.fail", map[string]any{"field": "paymentMethod"})
		return redirectWith(c, "/checkout", "Choose a payment method.")
	case errors.Is(err, services.ErrIncompleteAddress):
		return redirectWith(c, "/checkout", "Enter your delivery address.")
	case errors.Is(err, services.ErrNoPaymentPending):
		return c.Redirect("/checkout")
	case err != nil:
		applog.Error(c, "order.place.fail", err, map[string]any{"payment_method": method})
		return redirectWith(c, "/checkout", "Could not place your order. Please try again.")
	}

	if st == services.AwaitingQRConfirmation {
		applog.Info(c, "checkout.qr.shown", map[string]any{"payment_method": method})
		return c.Redirect("/checkout")
	}
	fields := map[string]any{"payment_method": method}
	if tx := sess.Checkout.LastOrder(); tx != nil {
		fields["transaction_id"] = tx.ID
		fields["total"] = tx.TotalAmount
	}
	applog.Audit(c, "order.place", fields)
	sess.Checkout.Reset()
	return redirectWith(c, "/profile", "Your order has been placed.")
}
