package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"mime/multipart"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"zando/internal/backend"
	"zando/internal/domain"
	applog "zando/internal/log"
	"zando/internal/report"
	"zando/internal/services"
	"zando/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	Catalog  *services.CatalogService
	Accounts *services.AccountService
}

// GET /admin
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	sess := currentSession(c)
	ctx := c.UserContext()
	stats, err := h.Accounts.DashboardStats(ctx, sess.User)
	if err != nil {
		applog.Error(c, "admin.stats.fail", err, nil)
	}
	if err := sess.Board.Load(ctx); err != nil {
		applog.Error(c, "admin.transactions.list.fail", err, nil)
	}
	recent := services.FilterTransactions(sess.Board.Transactions(), services.TransactionFilter{})
	if len(recent) > 5 {
		recent = recent[:5]
	}
	return render(c, "admin_dashboard", fiber.Map{
		"Stats":  stats,
		"Counts": sess.Board.Counts(),
		"Recent": recent,
	})
}

// GET /admin/products
func (h *AdminHandler) Products(c *fiber.Ctx) error {
	products, err := h.Catalog.ListProducts(c.UserContext())
	if err != nil {
		applog.Error(c, "admin.products.list.fail", err, nil)
		return notFound(c, fiber.StatusBadGateway, "Could not load products")
	}
	return render(c, "admin_products", fiber.Map{"Products": cards(products)})
}

type variantRow struct {
	Color    string
	Quantity int
	Sizes    string
}

func (h *AdminHandler) productForm(c *fiber.Ctx, p *domain.Product) error {
	cats, err := h.Catalog.ListCategories(c.UserContext())
	if err != nil {
		applog.Error(c, "catalog.categories.fail", err, nil)
	}
	data := fiber.Map{"Categories": cats, "Selected": map[int64]bool{}, "Available": true}
	rows := []variantRow{{}}
	if p != nil {
		data["P"] = p
		data["Available"] = p.IsAvailable == nil || *p.IsAvailable
		data["Discount"] = p.Discount
		selected := map[int64]bool{}
		for _, id := range p.CategoryIDs {
			selected[id] = true
		}
		data["Selected"] = selected
		rows = rows[:0]
		for _, v := range p.Options() {
			r := variantRow{Color: v.Color}
			if v.Quantity != nil {
				r.Quantity = *v.Quantity
			}
			names := make([]string, 0, len(v.Sizes))
			for _, s := range v.Sizes {
				names = append(names, s.Name)
			}
			r.Sizes = strings.Join(names, ", ")
			rows = append(rows, r)
		}
		// one blank row for a new color
		rows = append(rows, variantRow{})
	}
	data["Variants"] = rows
	return render(c, "admin_product_form", data)
}

// GET /admin/products/new
func (h *AdminHandler) NewProduct(c *fiber.Ctx) error {
	return h.productForm(c, nil)
}

// GET /admin/products/:id/edit
func (h *AdminHandler) EditProduct(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return notFound(c, fiber.StatusNotFound, "Product not found")
	}
	p, err := h.Catalog.GetProduct(c.UserContext(), id)
	if err != nil {
		return notFound(c, fiber.StatusNotFound, "Product not found")
	}
	return h.productForm(c, &p)
}

// formValues returns every value of a repeated form field, multipart or urlencoded.
func formValues(c *fiber.Ctx, key string) []string {
	if mf, err := c.MultipartForm(); err == nil {
		return mf.Value[key]
	}
	var out []string
	for _, v := range c.Request().PostArgs().PeekMulti(key) {
		out = append(out, string(v))
	}
	return out
}

func formFiles(c *fiber.Ctx, key string) []*multipart.FileHeader {
	if mf, err := c.MultipartForm(); err == nil {
		return mf.File[key]
	}
	return nil
}

// parseProduct reads the product editor. Variant rows arrive as parallel
// variantColor/variantQuantity/variantSizes fields; row i takes its images
// from the variantImages{i} file field.
func parseProduct(c *fiber.Ctx) (backend.ProductForm, error) {
	var f backend.ProductForm
	var ok bool
	if f.Name, ok = validate.Name(c.FormValue("name")); !ok {
		return f, errors.New("Product name is required")
	}
	f.Description = strings.TrimSpace(c.FormValue("description"))
	if f.BasePrice, ok = validate.Price(c.FormValue("basePrice")); !ok {
		return f, errors.New("Enter a valid price")
	}
	if f.DiscountPercent, ok = validate.Percent(c.FormValue("discountPercent")); !ok {
		return f, errors.New("Discount must be between 0 and 100")
	}
	f.IsAvailable = c.FormValue("isAvailable") != ""
	for _, raw := range formValues(c, "categoryIds") {
		id, ok := validate.ID(raw)
		if !ok {
			return f, errors.New("Unknown category")
		}
		f.CategoryIDs = append(f.CategoryIDs, id)
	}

	colors := formValues(c, "variantColor")
	qtys := formValues(c, "variantQuantity")
	sizes := formValues(c, "variantSizes")
	for i, color := range colors {
		color = strings.TrimSpace(color)
		if color == "" {
			continue
		}
		v := backend.VariantForm{Color: color, Sizes: []string{}}
		if i < len(qtys) && strings.TrimSpace(qtys[i]) != "" {
			n, err := strconv.Atoi(strings.TrimSpace(qtys[i]))
			if err != nil || n < 0 {
				return f, fmt.Errorf("Quantity for %s must be a whole number", color)
			}
			v.Quantity = n
		}
		if i < len(sizes) {
			for _, s := range strings.Split(sizes[i], ",") {
				if s = strings.TrimSpace(s); s != "" {
					v.Sizes = append(v.Sizes, s)
				}
			}
		}
		for _, fh := range formFiles(c, fmt.Sprintf("variantImages%d", i)) {
			up, err := readUpload(fh)
			if err != nil {
				return f, fmt.Errorf("Images for %s must be images under 2 MB", color)
			}
			if up != nil {
				f.Images = append(f.Images, *up)
				v.ImageCount++
			}
		}
		f.Variants = append(f.Variants, v)
	}
	return f, nil
}

// POST /admin/products
func (h *AdminHandler) CreateProduct(c *fiber.Ctx) error {
	f, err := parseProduct(c)
	if err != nil {
		applog.Security(c, "validation.fail", map[string]any{"form": "product", "error": err.Error()})
		return redirectWith(c, "/admin/products/new", err.Error())
	}
	p, err := h.Catalog.CreateProduct(c.UserContext(), currentUser(c), f)
	if err != nil {
		applog.Error(c, "admin.product.create.fail", err, map[string]any{"name": f.Name})
		return redirectWith(c, "/admin/products/new", backendMessage(err, "Could not create the product."))
	}
	applog.Audit(c, "admin.product.create", map[string]any{"product_id": p.ID, "name": f.Name, "variants": len(f.Variants), "images": len(f.Images)})
	return redirectWith(c, "/admin/products", "Product created.")
}

// POST /admin/products/:id
func (h *AdminHandler) UpdateProduct(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return notFound(c, fiber.StatusNotFound, "Product not found")
	}
	edit := fmt.Sprintf("/admin/products/%d/edit", id)
	f, err := parseProduct(c)
	if err != nil {
		applog.Security(c, "validation.fail", map[string]any{"form": "product", "error": err.Error()})
		return redirectWith(c, edit, err.Error())
	}
	if _, err := h.Catalog.UpdateProduct(c.UserContext(), currentUser(c), id, f); err != nil {
		applog.Error(c, "admin.product.update.fail", err, map[string]any{"product_id": id})
		return redirectWith(c, edit, backendMessage(err, "Could not update the product."))
	}
	applog.Audit(c, "admin.product.update", map[string]any{"product_id": id})
	return redirectWith(c, "/admin/products", "Product updated.")
}

// POST /admin/products/:id/delete
func (h *AdminHandler) DeleteProduct(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return notFound(c, fiber.StatusNotFound, "Product not found")
	}
	if err := h.Catalog.DeleteProduct(c.UserContext(), currentUser(c), id); err != nil {
		applog.Error(c, "admin.product.delete.fail", err, map[string]any{"product_id": id})
		return redirectWith(c, "/admin/products", backendMessage(err, "Could not delete the product."))
	}
	applog.Audit(c, "admin.product.delete", map[string]any{"product_id": id})
	return redirectWith(c, "/admin/products", "Product deleted.")
}

func transactionFilter(c *fiber.Ctx) services.TransactionFilter {
	f := services.TransactionFilter{Status: c.Query("status")}
	if q, ok := validate.Q(c.Query("q")); ok {
		f.Search = q
	}
	if d, ok := validate.Date(c.Query("dateFrom")); ok {
		f.DateFrom = d
	}
	return f
}

// filterQuery carries the list filter across redirects and the export link.
type filterQuery services.TransactionFilter

func (f filterQuery) String() string {
	v := url.Values{}
	if f.Search != "" {
		v.Set("q", f.Search)
	}
	if f.Status != "" {
		v.Set("status", f.Status)
	}
	if f.DateFrom != "" {
		v.Set("dateFrom", f.DateFrom)
	}
	return v.Encode()
}

// GET /admin/transactions?q=&status=&dateFrom=
func (h *AdminHandler) Transactions(c *fiber.Ctx) error {
	sess := currentSession(c)
	if err := sess.Board.Load(c.UserContext()); err != nil {
		applog.Error(c, "admin.transactions.list.fail", err, nil)
		return notFound(c, fiber.StatusBadGateway, "Could not load transactions")
	}
	f := transactionFilter(c)
	tabs := append([]string{domain.AllStatus}, statusNames()...)
	query := filterQuery(f).String()
	return render(c, "admin_transactions", fiber.Map{
		"Rows":      services.FilterTransactions(sess.Board.Transactions(), f),
		"Counts":    sess.Board.Counts(),
		"Tabs":      tabs,
		"Statuses":  domain.Statuses,
		"Filter":    f,
		"Query":     query,
		"ExportURL": "/admin/transactions/export?" + query,
	})
}

func statusNames() []string {
	out := make([]string, 0, len(domain.Statuses))
	for _, s := range domain.Statuses {
		out = append(out, string(s))
	}
	return out
}

// POST /admin/transactions/:id/status
func (h *AdminHandler) UpdateStatus(c *fiber.Ctx) error {
	sess := currentSession(c)
	back := "/admin/transactions"
	if q := c.FormValue("query"); q != "" {
		if _, err := url.ParseQuery(q); err == nil {
			back += "?" + q
		}
	}
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("missing id or status")
	}
	status, err := domain.ParseStatus(c.FormValue("status"))
	if err != nil {
		applog.Security(c, "validation.fail", map[string]any{"field": "status"})
		return c.Status(fiber.StatusBadRequest).SendString("missing id or status")
	}
	ctx := c.UserContext()
	if len(sess.Board.Transactions()) == 0 {
		if err := sess.Board.Load(ctx); err != nil {
			applog.Error(c, "admin.transactions.list.fail", err, nil)
			return redirectWith(c, back, "Could not load transactions.")
		}
	}
	switch err := sess.Board.SetStatus(ctx, id, status); {
	case errors.Is(err, services.ErrInFlight):
		return redirectWith(c, back, "That transaction is already being updated.")
	case errors.Is(err, services.ErrNotFound):
		return redirectWith(c, back, "Transaction not found.")
	case err != nil:
		applog.Error(c, "admin.transactions.status.fail", err, map[string]any{"transaction_id": id, "status": status})
		return redirectWith(c, back, "Could not update the status. The change was undone.")
	}
	applog.Audit(c, "admin.transactions.status", map[string]any{"transaction_id": id, "status": status})
	return c.Redirect(back)
}

// GET /admin/transactions/export downloads the filtered list as a spreadsheet.
func (h *AdminHandler) Export(c *fiber.Ctx) error {
	sess := currentSession(c)
	if err := sess.Board.Load(c.UserContext()); err != nil {
		applog.Error(c, "admin.transactions.list.fail", err, nil)
		return notFound(c, fiber.StatusBadGateway, "Could not load transactions")
	}
	rows := services.FilterTransactions(sess.Board.Transactions(), transactionFilter(c))
	var buf bytes.Buffer
	if err := report.WriteTransactions(&buf, rows); err != nil {
		applog.Error(c, "admin.transactions.export.fail", err, nil)
		return notFound(c, fiber.StatusInternalServerError, "Could not build the export")
	}
	applog.Audit(c, "admin.transactions.export", map[string]any{"rows": len(rows)})
	c.Attachment(fmt.Sprintf("transactions-%s.xlsx", time.Now().Format("20060102")))
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	return c.Send(buf.Bytes())
}

// GET /admin/customers
func (h *AdminHandler) Customers(c *fiber.Ctx) error {
	rows, err := h.Accounts.Customers(c.UserContext(), currentUser(c))
	if err != nil {
		applog.Error(c, "admin.customers.list.fail", err, nil)
		return notFound(c, fiber.StatusBadGateway, "Could not load customers")
	}
	q := strings.ToLower(strings.TrimSpace(c.Query("q")))
	if q != "" {
		kept := rows[:0]
		for _, r := range rows {
			if strings.Contains(strings.ToLower(r.UserName), q) || strings.Contains(strings.ToLower(r.Email), q) {
				kept = append(kept, r)
			}
		}
		rows = kept
	}
	return render(c, "admin_customers", fiber.Map{"Rows": rows, "Q": c.Query("q")})
}

// GET /admin/customers/:id
func (h *AdminHandler) Customer(c *fiber.Ctx) error {
	sess := currentSession(c)
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return notFound(c, fiber.StatusNotFound, "Customer not found")
	}
	ctx := c.UserContext()
	prof, err := h.Accounts.CustomerProfile(ctx, sess.User, id)
	if err != nil {
		applog.Error(c, "admin.customer.fail", err, map[string]any{"customer_id": id})
		return notFound(c, fiber.StatusNotFound, "Customer not found")
	}
	if err := sess.Board.Load(ctx); err != nil {
		applog.Error(c, "admin.transactions.list.fail", err, nil)
	}
	var orders []services.TransactionSummary
	var spent float64
	for _, t := range sess.Board.Transactions() {
		if t.UserID == id {
			orders = append(orders, services.SummarizeTransaction(t))
			spent += t.TotalAmount
		}
	}
	return render(c, "admin_customer", fiber.Map{"Profile": prof, "Orders": orders, "Spent": spent})
}

type productSales struct {
	Name     string
	Quantity int
	Orders   int
}

// GET /admin/reports
func (h *AdminHandler) Reports(c *fiber.Ctx) error {
	sess := currentSession(c)
	ctx := c.UserContext()
	stats, err := h.Accounts.DashboardStats(ctx, sess.User)
	if err != nil {
		applog.Error(c, "admin.stats.fail", err, nil)
	}
	if err := sess.Board.Load(ctx); err != nil {
		applog.Error(c, "admin.transactions.list.fail", err, nil)
		return notFound(c, fiber.StatusBadGateway, "Could not load transactions")
	}
	byProduct := map[int64]*productSales{}
	for _, t := range sess.Board.Transactions() {
		if t.Status == domain.StatusCancelled {
			continue
		}
		for _, it := range t.Items {
			ps := byProduct[it.ProductID]
			if ps == nil {
				ps = &productSales{Name: fmt.Sprintf("Product #%d", it.ProductID)}
				byProduct[it.ProductID] = ps
			}
			if it.Product != nil && it.Product.Name != "" {
				ps.Name = it.Product.Name
			}
			ps.Quantity += it.Quantity
			ps.Orders++
		}
	}
	top := make([]productSales, 0, len(byProduct))
	for _, ps := range byProduct {
		top = append(top, *ps)
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Quantity != top[j].Quantity {
			return top[i].Quantity > top[j].Quantity
		}
		return top[i].Name < top[j].Name
	})
	if len(top) > 10 {
		top = top[:10]
	}
	return render(c, "admin_reports", fiber.Map{
		"Stats":    stats,
		"Counts":   sess.Board.Counts(),
		"Statuses": statusNames(),
		"Top":      top,
	})
}
