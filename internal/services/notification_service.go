package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"zando/internal/domain"
)

// errNoop aborts an optimistic change that would not change anything.
var errNoop = errors.New("no change")

const (
	GroupToday    = "Today"
	GroupLastWeek = "Last Week"
	GroupOlder    = "Older"
)

// Notifications is the session's notification list.
type Notifications struct {
	api      NotificationsAPI
	user     *domain.User
	list     Value[[]domain.Notification]
	inflight InFlight
}

func NewNotifications(api NotificationsAPI, user *domain.User) *Notifications {
	return &Notifications{api: api, user: user}
}

func (n *Notifications) Load(ctx context.Context) error {
	if token(n.user) == "" {
		return ErrUnauthenticated
	}
	list, err := n.api.Notifications(ctx, n.user.Token, n.user.ID)
	if err != nil {
		return fmt.Errorf("load notifications: %w", err)
	}
	n.list.Set(list)
	return nil
}

func (n *Notifications) List() []domain.Notification {
	return append([]domain.Notification(nil), n.list.Get()...)
}

func (n *Notifications) UnreadCount() int {
	c := 0
	for _, x := range n.list.Get() {
		if !x.IsRead {
			c++
		}
	}
	return c
}

// MarkAsRead flips id to read locally and confirms it with the backend.
// Already read or unknown notifications cause no change and no request.
func (n *Notifications) MarkAsRead(ctx context.Context, id int64) error {
	if token(n.user) == "" {
		return ErrUnauthenticated
	}
	done, err := n.inflight.Begin(fmt.Sprint(id))
	if err != nil {
		return err
	}
	defer done()

	err = Optimistic(ctx, &n.list,
		func(cur []domain.Notification) ([]domain.Notification, error) {
			for i, x := range cur {
				if x.ID != id {
					continue
				}
				if x.IsRead {
					return nil, errNoop
				}
				next := append([]domain.Notification(nil), cur...)
				next[i].IsRead = true
				return next, nil
			}
			return nil, errNoop
		},
		func(ctx context.Context) error {
			return n.api.MarkNotificationRead(ctx, n.user.Token, id, n.user.ID)
		})
	if errors.Is(err, errNoop) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("mark notification %d read: %w", id, err)
	}
	return nil
}

type NotificationGroup struct {
	Label string
	Items []domain.Notification
}

// GroupByAge buckets notifications by whole days since creation: under one
// day is Today, under seven is Last Week, the rest Older. Empty groups are
// omitted; order within a group is preserved.
func GroupByAge(list []domain.Notification, now time.Time) []NotificationGroup {
	buckets := map[string][]domain.Notification{}
	for _, x := range list {
		label := ageGroup(x.CreatedAt, now)
		buckets[label] = append(buckets[label], x)
	}
	var out []NotificationGroup
	for _, label := range []string{GroupToday, GroupLastWeek, GroupOlder} {
		if len(buckets[label]) > 0 {
			out = append(out, NotificationGroup{Label: label, Items: buckets[label]})
		}
	}
	return out
}

func ageGroup(created, now time.Time) string {
	days := math.Floor(now.Sub(created).Hours() / 24)
	switch {
	case days < 1:
		return GroupToday
	case days < 7:
		return GroupLastWeek
	}
	return GroupOlder
}

// FilterNotifications returns the unread notifications for the "unread" tab
// and all of them otherwise.
func FilterNotifications(list []domain.Notification, tab string) []domain.Notification {
	if tab != "unread" {
		return list
	}
	var out []domain.Notification
	for _, x := range list {
		if !x.IsRead {
			out = append(out, x)
		}
	}
	return out
}
