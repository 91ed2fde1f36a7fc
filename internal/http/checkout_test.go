package handlers_test

import (
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"zando/internal/http/handlers"
)

var address = url.Values{"name": {"Ana Lee"}, "address": {"12 Main St"}, "phone": {"012 345 678"}}

func withMethod(method string) url.Values {
	v := url.Values{"paymentMethod": {method}}
	for k, vals := range address {
		v[k] = vals
	}
	return v
}

func addShirt(t *testing.T, b *browser) {
	t.Helper()
	resp := b.post("/cart/add", url.Values{"productId": {"1"}, "variantId": {"11"}, "sizeId": {"101"}, "quantity": {"2"}})
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("add to cart: status %d", resp.StatusCode)
	}
}

func TestCheckoutGuards(t *testing.T) {
	h := newHarness(t, handlers.AppConfig{})
	b := h.browser()

	if resp := b.get("/checkout"); location(resp) != "/login" {
		t.Fatalf("anonymous checkout should go to /login, got %d %q", resp.StatusCode, location(resp))
	}

	b.login("ana@example.com", "secret1")
	if resp := b.get("/checkout"); location(resp) != "/cart" {
		t.Fatalf("empty cart should go to /cart, got %d %q", resp.StatusCode, location(resp))
	}
	if resp := b.post("/checkout", withMethod("Cash On Delivery")); location(resp) != "/cart" {
		t.Fatalf("empty cart submit should go to /cart, got %q", location(resp))
	}
	if h.api.called("POST /api/v1/transactions") != 0 {
		t.Fatal("order submitted with an empty cart")
	}
}

func TestAnonymousAddToCartAsksForLogin(t *testing.T) {
	h := newHarness(t, handlers.AppConfig{})
	b := h.browser()
	resp := b.post("/cart/add", url.Values{"productId": {"1"}, "variantId": {"11"}, "sizeId": {"101"}})
	if location(resp) != "/login" {
		t.Fatalf("expected redirect to /login, got %q", location(resp))
	}
	if h.api.called("POST /api/v1/cart") != 0 {
		t.Fatal("backend cart touched for anonymous user")
	}
	if s := body(t, b.get("/login")); !strings.Contains(s, "Please log in to add items to your cart.") {
		t.Fatalf("login flash missing; body=%s", s)
	}
}

func TestAddToCartNeedsSize(t *testing.T) {
	h := newHarness(t, handlers.AppConfig{})
	b := h.browser()
	b.login("ana@example.com", "secret1")
	resp := b.post("/cart/add", url.Values{"productId": {"1"}, "variantId": {"11"}})
	if location(resp) != "/product/1" {
		t.Fatalf("expected back to product, got %q", location(resp))
	}
	if h.api.called("POST /api/v1/cart") != 0 {
		t.Fatal("line without size sent to backend")
	}
}

func TestCheckoutDirectPayment(t *testing.T) {
	h := newHarness(t, handlers.AppConfig{})
	b := h.browser()
	b.login("ana@example.com", "secret1")
	addShirt(t, b)

	resp := b.get("/checkout")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("checkout page status %d", resp.StatusCode)
	}
	s := body(t, resp)
	// 2 x 20 + 1 delivery
	if !strings.Contains(s, "$41.00") {
		t.Fatalf("amount to pay missing; body=%s", s)
	}

	resp = b.post("/checkout", withMethod("Cash On Delivery"))
	if location(resp) != "/profile" {
		t.Fatalf("expected redirect to /profile, got %d %q", resp.StatusCode, location(resp))
	}
	if h.api.called("POST /api/v1/transactions") != 1 {
		t.Fatal("order not submitted exactly once")
	}
	if h.api.called("DELETE /api/v1/cart") != 1 {
		t.Fatal("cart not cleared after order")
	}
	got := h.api.created[0]
	if got.ShippingAddress != "Ana Lee, 12 Main St, 012 345 678" || got.PaymentMethod != "Cash On Delivery" {
		t.Fatalf("unexpected order body: %+v", got)
	}
	if len(got.Items) != 1 || got.Items[0].ProductID != 1 || got.Items[0].Quantity != 2 {
		t.Fatalf("unexpected order items: %+v", got.Items)
	}

	if s := body(t, b.get("/profile")); !strings.Contains(s, "Your order has been placed.") {
		t.Fatalf("success flash missing; body=%s", s)
	}
}

// staticDir installs the ABA PAY QR code and logo under a temporary static dir.
func staticDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, f := range []string{"qrcodes/aba_qr.jpg", "img/aba-pay-web.png"} {
		p := filepath.Join(dir, filepath.FromSlash(f))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte("img"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestQRPaymentWaitsForConfirmation(t *testing.T) {
	h := newHarness(t, handlers.AppConfig{StaticDir: staticDir(t)})
	b := h.browser()
	b.login("ana@example.com", "secret1")
	addShirt(t, b)

	resp := b.post("/checkout", withMethod("ABA PAY"))
	if location(resp) != "/checkout" {
		t.Fatalf("QR method should return to /checkout, got %q", location(resp))
	}
	if h.api.called("POST /api/v1/transactions") != 0 {
		t.Fatal("order submitted before payment was confirmed")
	}
	s := body(t, b.get("/checkout"))
	if !strings.Contains(s, "I Have Paid") || !strings.Contains(s, "/static/qrcodes/aba_qr.jpg") {
		t.Fatalf("QR step not shown; body=%s", s)
	}

	resp = b.post("/checkout/confirm", nil)
	if location(resp) != "/profile" {
		t.Fatalf("confirm should finish at /profile, got %q", location(resp))
	}
	if h.api.called("POST /api/v1/transactions") != 1 || h.api.created[0].PaymentMethod != "ABA PAY" {
		t.Fatalf("expected one ABA PAY order, got %+v", h.api.created)
	}
}

func TestMissingQRImageFallsBackToText(t *testing.T) {
	h := newHarness(t, handlers.AppConfig{})
	b := h.browser()
	b.login("ana@example.com", "secret1")
	addShirt(t, b)

	b.post("/checkout", withMethod("Wing Bank"))
	s := body(t, b.get("/checkout"))
	if !strings.Contains(s, "I Have Paid") {
		t.Fatalf("QR step not shown; body=%s", s)
	}
	if strings.Contains(s, "wing_qr.png") || strings.Contains(s, "Wing.png") {
		t.Fatalf("uninstalled images referenced; body=%s", s)
	}
	if !strings.Contains(s, "Open your Wing Bank app") {
		t.Fatalf("text instruction missing; body=%s", s)
	}
}

func TestInstalledLogoIsShown(t *testing.T) {
	h := newHarness(t, handlers.AppConfig{StaticDir: staticDir(t)})
	b := h.browser()
	b.login("ana@example.com", "secret1")
	addShirt(t, b)

	s := body(t, b.get("/checkout"))
	if !strings.Contains(s, "/static/img/aba-pay-web.png") {
		t.Fatalf("installed logo missing; body=%s", s)
	}
	if strings.Contains(s, "/static/img/Wing.png") {
		t.Fatalf("missing logo referenced; body=%s", s)
	}
}

func TestQRPaymentCancel(t *testing.T) {
	h := newHarness(t, handlers.AppConfig{})
	b := h.browser()
	b.login("ana@example.com", "secret1")
	addShirt(t, b)

	b.post("/checkout", withMethod("Wing Bank"))
	if resp := b.post("/checkout/cancel", nil); location(resp) != "/checkout" {
		t.Fatalf("cancel should return to /checkout, got %q", location(resp))
	}
	if s := body(t, b.get("/checkout")); strings.Contains(s, "I Have Paid") {
		t.Fatal("QR step still open after cancel")
	}
	// nothing pending: confirming is a no-op
	b.post("/checkout/confirm", nil)
	if h.api.called("POST /api/v1/transactions") != 0 {
		t.Fatal("cancelled payment was submitted")
	}
}

func TestCheckoutRejectsUnknownPaymentMethod(t *testing.T) {
	h := newHarness(t, handlers.AppConfig{})
	b := h.browser()
	b.login("ana@example.com", "secret1")
	addShirt(t, b)

	resp := b.post("/checkout", withMethod("Bitcoin"))
	if location(resp) != "/checkout" {
		t.Fatalf("expected back to /checkout, got %q", location(resp))
	}
	if h.api.called("POST /api/v1/transactions") != 0 {
		t.Fatal("order with unknown payment method submitted")
	}
}
