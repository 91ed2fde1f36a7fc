package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"zando/internal/catalog"
	"zando/internal/domain"
	"zando/internal/events"
	applog "zando/internal/log"
)

var ErrForbidden = errors.New("admin role required")

// Board is the admin's transaction list with per-status counts.
type Board struct {
	api      TransactionsAPI
	user     *domain.User
	events   events.Publisher
	list     Value[[]domain.Transaction]
	counts   Value[map[string]int]
	inflight InFlight
}

func NewBoard(api TransactionsAPI, user *domain.User, pub events.Publisher) *Board {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Board{api: api, user: user, events: pub}
}

func (b *Board) authorize() error {
	if token(b.user) == "" {
		return ErrUnauthenticated
	}
	if !b.user.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

// Load fetches every transaction and recounts the status tabs.
func (b *Board) Load(ctx context.Context) error {
	if err := b.authorize(); err != nil {
		return err
	}
	list, err := b.api.Transactions(ctx, b.user.Token)
	if err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}
	b.list.Set(list)
	b.counts.Set(CountStatuses(list))
	return nil
}

func (b *Board) Transactions() []domain.Transaction {
	return append([]domain.Transaction(nil), b.list.Get()...)
}

func (b *Board) Counts() map[string]int {
	out := map[string]int{}
	for k, v := range b.counts.Get() {
		out[k] = v
	}
	return out
}

// SetStatus changes one transaction's status locally, then on the backend.
// A failed update restores the whole list as it was; a successful one
// refetches the status counts.
func (b *Board) SetStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	if err := b.authorize(); err != nil {
		return err
	}
	done, err := b.inflight.Begin(strconv.FormatInt(id, 10))
	if err != nil {
		return err
	}
	defer done()

	var prev domain.OrderStatus
	var userID int64
	err = Optimistic(ctx, &b.list,
		func(cur []domain.Transaction) ([]domain.Transaction, error) {
			for i, t := range cur {
				if t.ID != id {
					continue
				}
				if err := domain.ValidateTransition(t.Status, status); err != nil {
					return nil, err
				}
				prev, userID = t.Status, t.UserID
				next := append([]domain.Transaction(nil), cur...)
				next[i].Status = status
				return next, nil
			}
			return nil, ErrNotFound
		},
		func(ctx context.Context) error {
			_, err := b.api.UpdateTransactionStatus(ctx, b.user.Token, id, status)
			return err
		})
	if err != nil {
		return fmt.Errorf("set transaction %d status: %w", id, err)
	}

	if err := b.RefreshCounts(ctx); err != nil {
		applog.Logger().Warn().Err(err).Msg("status counts not refreshed")
	}
	if err := b.events.Publish(ctx, events.Event{
		Type:          events.OrderStatusChanged,
		TransactionID: id,
		UserID:        userID,
		Status:        status,
		PreviousState: prev,
	}); err != nil {
		applog.Logger().Warn().Err(err).Int64("transaction_id", id).Msg("status event not published")
	}
	return nil
}

// RefreshCounts recomputes the tab counts from a fresh transaction list
// without touching the displayed list.
func (b *Board) RefreshCounts(ctx context.Context) error {
	if err := b.authorize(); err != nil {
		return err
	}
	list, err := b.api.Transactions(ctx, b.user.Token)
	if err != nil {
		return fmt.Errorf("refresh status counts: %w", err)
	}
	b.counts.Set(CountStatuses(list))
	return nil
}

// CountStatuses counts transactions per status, plus the total under
// domain.AllStatus.
func CountStatuses(list []domain.Transaction) map[string]int {
	counts := map[string]int{domain.AllStatus: len(list)}
	for _, t := range list {
		counts[string(t.Status)]++
	}
	return counts
}

type TransactionFilter struct {
	Search   string
	Status   string
	DateFrom string // yyyy-mm-dd
}

// TransactionSummary is one row of the admin transaction list.
type TransactionSummary struct {
	ID                 int64
	ProductName        string
	ProductImage       string
	AdditionalProducts int
	Price              float64
	Status             domain.OrderStatus
	OrderDate          string
	CustomerName       string
	PaymentMethod      string
}

func SummarizeTransaction(t domain.Transaction) TransactionSummary {
	s := TransactionSummary{
		ID:                 t.ID,
		ProductName:        "Product Not Found",
		ProductImage:       catalog.PlaceholderImage,
		AdditionalProducts: len(t.Items) - 1,
		Price:              t.TotalAmount,
		Status:             t.Status,
		OrderDate:          orderDay(t.OrderDate),
		CustomerName:       "N/A",
		PaymentMethod:      t.PaymentMethod,
	}
	if s.AdditionalProducts < 0 {
		s.AdditionalProducts = 0
	}
	if len(t.Items) > 0 && t.Items[0].Product != nil {
		p := t.Items[0].Product
		if p.Name != "" {
			s.ProductName = p.Name
		}
		s.ProductImage = catalog.FirstImage(*p)
	}
	if t.User != nil && t.User.UserName != "" {
		s.CustomerName = t.User.UserName
	}
	return s
}

// FilterTransactions summarizes list and keeps the rows matching f. Search
// matches product name, customer name or id; DateFrom keeps orders placed on
// or after that day.
func FilterTransactions(list []domain.Transaction, f TransactionFilter) []TransactionSummary {
	q := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]TransactionSummary, 0, len(list))
	for _, t := range list {
		s := SummarizeTransaction(t)
		if q != "" && !strings.Contains(strings.ToLower(s.ProductName), q) &&
			!strings.Contains(strings.ToLower(s.CustomerName), q) &&
			!strings.Contains(strconv.FormatInt(s.ID, 10), q) {
			continue
		}
		if f.Status != "" && f.Status != domain.AllStatus && string(s.Status) != f.Status {
			continue
		}
		if f.DateFrom != "" && (s.OrderDate == "" || s.OrderDate < f.DateFrom) {
			continue
		}
		out = append(out, s)
	}
	return out
}

var orderDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// orderDay formats the backend's order timestamp as yyyy-mm-dd.
func orderDay(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	for _, layout := range orderDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02")
		}
	}
	if len(raw) >= 10 {
		return raw[:10]
	}
	return raw
}
