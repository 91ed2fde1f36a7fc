package domain

import "time"

type Category struct {
	ID       int64      `json:"id"`
	Name     string     `json:"name"`
	Children []Category `json:"children,omitempty"`
}

type Size struct {
	SizeID int64  `json:"sizeId"`
	Name   string `json:"name"`
}

// Variant is one color option of a product with its own images and sizes.
type Variant struct {
	VariantID int64    `json:"variantId"`
	Color     string   `json:"color"`
	Images    []string `json:"images"`
	Sizes     []Size   `json:"sizes"`
	Quantity  *int     `json:"quantity,omitempty"` // stock, when the endpoint reports it
}

// Availability is the stock state shown next to a variant.
type Availability struct {
	Status string `json:"status"` // IN_STOCK | LOW_STOCK | OUT_OF_STOCK
	Qty    int    `json:"qty,omitempty"`
}

type Product struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	Price         float64   `json:"price"`
	OriginalPrice float64   `json:"originalPrice,omitempty"`
	Discount      float64   `json:"discount,omitempty"`
	IsAvailable   *bool     `json:"isAvailable,omitempty"`
	CategoryIDs   []int64   `json:"categoryIds,omitempty"`
	Gallery       []Variant `json:"gallery,omitempty"`
	Variants      []Variant `json:"variants,omitempty"` // some endpoints name the gallery "variants"
}

// Options returns the product's variants regardless of which field the backend filled.
func (p Product) Options() []Variant {
	if len(p.Gallery) > 0 {
		return p.Gallery
	}
	return p.Variants
}

// CartLineItem is one product+variant+size+quantity entry in a user's cart.
type CartLineItem struct {
	CartItemID int64 `json:"cartItemId"`
	ProductID  int64 `json:"productId"`
	VariantID  int64 `json:"variantId"`
	SizeID     int64 `json:"sizeId"`
	Quantity   int   `json:"quantity"`
}

// SameLine reports whether two items describe the same product/variant/size.
func (it CartLineItem) SameLine(o CartLineItem) bool {
	return it.ProductID == o.ProductID && it.VariantID == o.VariantID && it.SizeID == o.SizeID
}

type FavoriteEntry struct {
	ID        int64 `json:"id,omitempty"`
	ProductID int64 `json:"productId"`
	UserID    int64 `json:"userId"`
}

type TransactionItem struct {
	ProductID int64    `json:"productId"`
	Quantity  int      `json:"quantity"`
	Product   *Product `json:"product,omitempty"`
}

type TransactionUser struct {
	UserID   int64  `json:"userId"`
	UserName string `json:"userName"`
	Email    string `json:"email,omitempty"`
}

type Transaction struct {
	ID              int64             `json:"id"`
	UserID          int64             `json:"userId"`
	User            *TransactionUser  `json:"user,omitempty"`
	ShippingAddress string            `json:"shippingAddress"`
	PaymentMethod   string            `json:"paymentMethod"`
	Items           []TransactionItem `json:"items"`
	Status          OrderStatus       `json:"status"`
	TotalAmount     float64           `json:"totalAmount"`
	OrderDate       string            `json:"orderDate,omitempty"`
}

type Notification struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	IsRead    bool      `json:"is_read"`
}

type Profile struct {
	UserID       int64  `json:"userId"`
	UserName     string `json:"userName,omitempty"`
	FirstName    string `json:"firstName,omitempty"`
	LastName     string `json:"lastName,omitempty"`
	Email        string `json:"email,omitempty"`
	PhoneNumber  string `json:"phoneNumber,omitempty"`
	Address      string `json:"address,omitempty"`
	Birthday     string `json:"birthday,omitempty"`
	Gender       string `json:"gender,omitempty"`
	ProfileImage string `json:"profileImage,omitempty"`
}

// FullName prefers first/last name and falls back to the user name.
func (p Profile) FullName() string {
	switch {
	case p.FirstName != "" && p.LastName != "":
		return p.FirstName + " " + p.LastName
	case p.FirstName != "":
		return p.FirstName
	}
	return p.UserName
}

type Customer struct {
	UserID   int64  `json:"userId"`
	UserName string `json:"userName"`
	Email    string `json:"email"`
	Role     string `json:"role,omitempty"`
	Verified bool   `json:"isVerified,omitempty"`
}

type DashboardStats struct {
	SalesToday   float64 `json:"salesToday"`
	TotalEarning float64 `json:"totalEarning"`
	TotalOrders  int     `json:"totalOrders"`
	VisitorToday int     `json:"visitorToday"`
}
