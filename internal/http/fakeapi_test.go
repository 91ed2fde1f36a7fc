package handlers_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	html "github.com/gofiber/template/html/v2"

	"zando/internal/backend"
	"zando/internal/catalog"
	"zando/internal/config"
	"zando/internal/domain"
	"zando/internal/events"
	"zando/internal/http/handlers"
	"zando/internal/repos"
)

// fakeAPI is an in-memory stand-in for the REST backend.
type fakeAPI struct {
	mu         sync.Mutex
	calls      []string
	carts      map[int64][]domain.CartLineItem
	favorites  map[int64][]domain.FavoriteEntry
	txs        []domain.Transaction
	created    []backend.CreateTransaction
	nextID     int64
	failStatus bool
}

var (
	shopperUser = domain.User{ID: 9, Name: "Ana Lee", Email: "ana@example.com", Role: domain.RoleUser, Token: "tok-9"}
	adminUser   = domain.User{ID: 1, Name: "Admin", Email: "admin@example.com", Role: domain.RoleAdmin, Token: "tok-1"}
	passwords   = map[string]string{"ana@example.com": "secret1", "admin@example.com": "admin12"}
)

func intp(n int) *int { return &n }

var products = []domain.Product{
	{ID: 1, Name: "Linen Shirt", Price: 20, OriginalPrice: 25, Gallery: []domain.Variant{
		{VariantID: 11, Color: "White", Images: []string{"/img/shirt.jpg"}, Sizes: []domain.Size{{SizeID: 101, Name: "M"}}, Quantity: intp(10)},
	}},
	{ID: 2, Name: "Canvas Cap", Price: 8, Gallery: []domain.Variant{
		{VariantID: 21, Color: "Navy", Images: []string{"/img/cap.jpg"}},
	}},
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		carts:     map[int64][]domain.CartLineItem{},
		favorites: map[int64][]domain.FavoriteEntry{},
		nextID:    100,
		txs: []domain.Transaction{
			{ID: 50, UserID: 9, Status: domain.StatusPending, TotalAmount: 41, PaymentMethod: "Cash On Delivery", OrderDate: "2026-10-01T09:00:00",
				User: &domain.TransactionUser{UserID: 9, UserName: "Ana Lee"}, Items: []domain.TransactionItem{{ProductID: 1, Quantity: 2, Product: &products[0]}}},
			{ID: 51, UserID: 9, Status: domain.StatusDelivered, TotalAmount: 9, PaymentMethod: "ABA PAY", OrderDate: "2026-09-20T09:00:00",
				User: &domain.TransactionUser{UserID: 9, UserName: "Ana Lee"}, Items: []domain.TransactionItem{{ProductID: 2, Quantity: 1, Product: &products[1]}}},
		},
	}
}

func (f *fakeAPI) called(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

func reply(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"message": http.StatusText(status), "payload": payload})
}

func (f *fakeAPI) user(r *http.Request) *domain.User {
	switch strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ") {
	case shopperUser.Token:
		return &shopperUser
	case adminUser.Token:
		return &adminUser
	}
	return nil
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, r.Method+" "+r.URL.Path)
	path := strings.TrimPrefix(r.URL.Path, "/api/v1")
	parts := strings.Split(strings.Trim(path, "/"), "/")
	id := func(i int) int64 {
		if i >= len(parts) {
			return 0
		}
		n, _ := strconv.ParseInt(parts[i], 10, 64)
		return n
	}

	// public endpoints
	switch {
	case r.Method == http.MethodPost && path == "/auths/login":
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		if pw, ok := passwords[in["email"]]; !ok || pw != in["password"] {
			reply(w, http.StatusUnauthorized, nil)
			return
		}
		u := shopperUser
		if in["email"] == adminUser.Email {
			u = adminUser
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(u)
		return
	case r.Method == http.MethodGet && path == "/products":
		reply(w, http.StatusOK, products)
		return
	case r.Method == http.MethodGet && parts[0] == "products" && len(parts) == 2:
		for _, p := range products {
			if p.ID == id(1) {
				reply(w, http.StatusOK, p)
				return
			}
		}
		reply(w, http.StatusNotFound, nil)
		return
	case r.Method == http.MethodGet && path == "/categories":
		reply(w, http.StatusOK, []domain.Category{{ID: 1, Name: "Men"}})
		return
	}

	u := f.user(r)
	if u == nil {
		reply(w, http.StatusUnauthorized, nil)
		return
	}
	switch {
	case r.Method == http.MethodGet && parts[0] == "cart":
		reply(w, http.StatusOK, f.carts[id(1)])
	case r.Method == http.MethodPost && path == "/cart":
		var in backend.AddCartItem
		_ = json.NewDecoder(r.Body).Decode(&in)
		f.nextID++
		item := domain.CartLineItem{CartItemID: f.nextID, ProductID: in.ProductID, VariantID: in.VariantID, SizeID: in.SizeID, Quantity: in.Quantity}
		f.carts[u.ID] = append(f.carts[u.ID], item)
		reply(w, http.StatusOK, item)
	case r.Method == http.MethodDelete && path == "/cart":
		delete(f.carts, u.ID)
		reply(w, http.StatusOK, nil)
	case r.Method == http.MethodDelete && parts[0] == "cart":
		reply(w, http.StatusOK, nil)
	case r.Method == http.MethodGet && parts[0] == "favorites":
		reply(w, http.StatusOK, f.favorites[id(1)])
	case r.Method == http.MethodPost && path == "/favorites":
		var in domain.FavoriteEntry
		_ = json.NewDecoder(r.Body).Decode(&in)
		f.favorites[u.ID] = append(f.favorites[u.ID], in)
		reply(w, http.StatusOK, in)
	case r.Method == http.MethodDelete && parts[0] == "favorites":
		reply(w, http.StatusOK, nil)
	case r.Method == http.MethodGet && parts[0] == "notifications":
		reply(w, http.StatusOK, []domain.Notification{{ID: 5, Title: "Welcome", Content: "Thanks for joining", CreatedAt: time.Now().Add(-time.Hour)}})
	case r.Method == http.MethodPut && parts[0] == "notifications":
		reply(w, http.StatusOK, nil)
	case r.Method == http.MethodGet && parts[0] == "profile" && len(parts) == 2:
		reply(w, http.StatusOK, domain.Profile{UserID: id(1), FirstName: "Ana", LastName: "Lee", Email: u.Email, Address: "12 Main St"})
	case r.Method == http.MethodGet && path == "/transactions":
		reply(w, http.StatusOK, f.txs)
	case r.Method == http.MethodPost && path == "/transactions":
		var in backend.CreateTransaction
		_ = json.NewDecoder(r.Body).Decode(&in)
		f.created = append(f.created, in)
		f.nextID++
		tx := domain.Transaction{ID: f.nextID, UserID: in.UserID, ShippingAddress: in.ShippingAddress, PaymentMethod: in.PaymentMethod, Status: domain.StatusPending, TotalAmount: 21}
		f.txs = append(f.txs, tx)
		reply(w, http.StatusCreated, tx)
	case r.Method == http.MethodPut && parts[0] == "transactions":
		if !u.IsAdmin() {
			reply(w, http.StatusForbidden, nil)
			return
		}
		if f.failStatus {
			reply(w, http.StatusInternalServerError, nil)
			return
		}
		raw, _ := io.ReadAll(r.Body)
		status := strings.Trim(string(raw), `"`)
		for i := range f.txs {
			if f.txs[i].ID == id(1) {
				f.txs[i].Status = domain.OrderStatus(status)
				reply(w, http.StatusOK, f.txs[i])
				return
			}
		}
		reply(w, http.StatusNotFound, nil)
	case r.Method == http.MethodGet && path == "/dashboard/stats":
		reply(w, http.StatusOK, domain.DashboardStats{SalesToday: 21, TotalEarning: 300, TotalOrders: 3, VisitorToday: 12})
	default:
		reply(w, http.StatusNotFound, nil)
	}
}

type harness struct {
	t   *testing.T
	app *fiber.App
	api *fakeAPI
}

func newHarness(t *testing.T, cfg handlers.AppConfig) *harness {
	t.Helper()
	api := newFakeAPI()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	sealer, err := repos.NewSealer("test-secret")
	if err != nil {
		t.Fatalf("sealer: %v", err)
	}
	appCfg := config.Config{DeliveryFee: 1, SessionTTL: time.Hour, StaticDir: cfg.StaticDir}
	deps := handlers.NewDeps(backend.New(srv.URL+"/api/v1", 5*time.Second, 0), repos.NewUserRepo(db, sealer), appCfg, catalog.NewMemoryCache(), events.Nop{})
	cfg.Views = html.New("../../web/templates", ".html")
	return &harness{t: t, app: handlers.NewApp(deps, cfg), api: api}
}

// browser keeps cookies between requests like a real client.
type browser struct {
	h       *harness
	cookies map[string]string
}

func (h *harness) browser() *browser {
	return &browser{h: h, cookies: map[string]string{}}
}

func (b *browser) do(req *http.Request) *http.Response {
	b.h.t.Helper()
	for k, v := range b.cookies {
		req.AddCookie(&http.Cookie{Name: k, Value: v})
	}
	resp, err := b.h.app.Test(req, 10000)
	if err != nil {
		b.h.t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	for _, c := range resp.Cookies() {
		if c.Value == "" || c.MaxAge < 0 || (!c.Expires.IsZero() && c.Expires.Before(time.Now())) {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c.Value
	}
	return resp
}

func (b *browser) get(path string) *http.Response {
	return b.do(httptest.NewRequest(http.MethodGet, path, nil))
}

// post submits form with the CSRF token, fetching one first when needed.
func (b *browser) post(path string, form url.Values) *http.Response {
	if b.cookies["csrf_"] == "" {
		b.get("/login")
	}
	if form == nil {
		form = url.Values{}
	}
	if form.Get("csrf") == "" {
		form.Set("csrf", b.cookies["csrf_"])
	}
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func (b *browser) login(email, password string) {
	b.h.t.Helper()
	resp := b.post("/login", url.Values{"email": {email}, "password": {password}})
	if resp.StatusCode != http.StatusFound {
		b.h.t.Fatalf("login %s: status %d", email, resp.StatusCode)
	}
}

func location(resp *http.Response) string { return resp.Header.Get("Location") }
