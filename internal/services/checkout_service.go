package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"zando/internal/backend"
	"zando/internal/domain"
	"zando/internal/events"
	applog "zando/internal/log"
)

var (
	ErrCartEmpty         = errors.New("cart is empty")
	ErrUnknownPayment    = errors.New("unknown payment method")
	ErrNoPaymentPending  = errors.New("no payment awaiting confirmation")
	ErrIncompleteAddress = errors.New("delivery address is incomplete")
)

type CheckoutState int

const (
	CheckoutIdle CheckoutState = iota
	AwaitingQRConfirmation
	Submitting
	Completed
)

func (s CheckoutState) String() string {
	switch s {
	case AwaitingQRConfirmation:
		return "awaiting_qr_confirmation"
	case Submitting:
		return "submitting"
	case Completed:
		return "completed"
	}
	return "idle"
}

type Address struct {
	Name    string
	Address string
	Phone   string
}

// String is the shipping address sent with the order: the non-empty parts
// joined by ", ".
func (a Address) String() string {
	var parts []string
	for _, p := range []string{a.Name, a.Address, a.Phone} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

type CheckoutRequest struct {
	Address       Address
	PaymentMethod string
}

// Guard reports why checkout cannot proceed: no signed-in user, or no cart
// line that resolves to a product.
func Guard(user *domain.User, lines []Line) error {
	if token(user) == "" {
		return ErrUnauthenticated
	}
	if len(lines) == 0 {
		return ErrCartEmpty
	}
	return nil
}

// Checkout drives one session's way from cart to placed order:
// Idle → (AwaitingQRConfirmation →) Submitting → Completed.
type Checkout struct {
	api    TransactionsAPI
	cart   *Cart
	user   *domain.User
	events events.Publisher
	fee    float64

	mu      sync.Mutex
	state   CheckoutState
	pending *CheckoutRequest
	last    *domain.Transaction
}

func NewCheckout(api TransactionsAPI, cart *Cart, user *domain.User, pub events.Publisher, fee float64) *Checkout {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Checkout{api: api, cart: cart, user: user, events: pub, fee: fee}
}

func (c *Checkout) State() CheckoutState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Pending returns the order waiting for the QR payment confirmation.
func (c *Checkout) Pending() (CheckoutRequest, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return CheckoutRequest{}, false
	}
	return *c.pending, true
}

// LastOrder is the transaction created by the most recent completed checkout.
func (c *Checkout) LastOrder() *domain.Transaction {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

func (c *Checkout) Totals(lines []Line) Totals { return Summarize(lines, c.fee) }

// Start handles "Check out". A QR payment method parks the request until
// ConfirmPaid; any other method submits right away.
func (c *Checkout) Start(ctx context.Context, lines []Line, req CheckoutRequest) (CheckoutState, error) {
	if err := Guard(c.user, lines); err != nil {
		return c.State(), err
	}
	method, ok := domain.LookupPaymentMethod(req.PaymentMethod)
	if !ok {
		return c.State(), ErrUnknownPayment
	}
	if req.Address.String() == "" {
		return c.State(), ErrIncompleteAddress
	}

	c.mu.Lock()
	if c.state == Submitting {
		c.mu.Unlock()
		return Submitting, ErrInFlight
	}
	if method.RequiresQR() {
		c.state = AwaitingQRConfirmation
		r := req
		c.pending = &r
		c.mu.Unlock()
		return AwaitingQRConfirmation, nil
	}
	c.state = Submitting
	c.mu.Unlock()
	return c.submit(ctx, lines, req, CheckoutIdle)
}

// ConfirmPaid handles "I Have Paid" and submits the parked request.
func (c *Checkout) ConfirmPaid(ctx context.Context, lines []Line) (CheckoutState, error) {
	if err := Guard(c.user, lines); err != nil {
		return c.State(), err
	}
	c.mu.Lock()
	switch {
	case c.state == Submitting:
		c.mu.Unlock()
		return Submitting, ErrInFlight
	case c.state != AwaitingQRConfirmation || c.pending == nil:
		st := c.state
		c.mu.Unlock()
		return st, ErrNoPaymentPending
	}
	req := *c.pending
	c.state = Submitting
	c.mu.Unlock()
	return c.submit(ctx, lines, req, AwaitingQRConfirmation)
}

// Cancel closes the QR step without sending anything.
func (c *Checkout) Cancel() CheckoutState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == AwaitingQRConfirmation {
		c.state = CheckoutIdle
		c.pending = nil
	}
	return c.state
}

// Reset returns a completed checkout to Idle for the next order.
func (c *Checkout) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Completed {
		c.state = CheckoutIdle
	}
}

func (c *Checkout) submit(ctx context.Context, lines []Line, req CheckoutRequest, prev CheckoutState) (CheckoutState, error) {
	body := backend.CreateTransaction{
		UserID:          c.user.ID,
		ShippingAddress: req.Address.String(),
		PaymentMethod:   req.PaymentMethod,
		Items:           make([]backend.TransactionLine, 0, len(lines)),
	}
	for _, l := range lines {
		body.Items = append(body.Items, backend.TransactionLine{ProductID: l.Item.ProductID, Quantity: l.Item.Quantity})
	}

	tx, err := c.api.CreateTransaction(ctx, c.user.Token, body)
	if err != nil {
		c.mu.Lock()
		c.state = prev
		c.mu.Unlock()
		return prev, fmt.Errorf("place order: %w", err)
	}

	c.mu.Lock()
	c.state = Completed
	c.pending = nil
	c.last = &tx
	c.mu.Unlock()

	amount := tx.TotalAmount
	if amount == 0 {
		amount = c.Totals(lines).AmountToPay
	}
	if err := c.events.Publish(ctx, events.Event{
		Type:          events.OrderPlaced,
		TransactionID: tx.ID,
		UserID:        c.user.ID,
		Status:        tx.Status,
		PaymentMethod: req.PaymentMethod,
		Amount:        amount,
	}); err != nil {
		applog.Logger().Warn().Err(err).Int64("transaction_id", tx.ID).Msg("order event not published")
	}
	if c.cart != nil {
		if err := c.cart.Clear(ctx); err != nil {
			applog.Logger().Warn().Err(err).Int64("user_id", c.user.ID).Msg("cart not cleared after order")
		}
	}
	return Completed, nil
}
