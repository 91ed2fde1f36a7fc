package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"zando/internal/domain"
	"zando/internal/services"
)

func loadedNotifications(t *testing.T, m *mockBackend, list []domain.Notification) *services.Notifications {
	t.Helper()
	m.On("Notifications", mock.Anything, "tok", int64(9)).Return(list, nil)
	n := services.NewNotifications(m, shopper)
	require.NoError(t, n.Load(context.Background()))
	return n
}

func TestMarkAlreadyReadIsNoop(t *testing.T) {
	m := &mockBackend{}
	n := loadedNotifications(t, m, []domain.Notification{{ID: 1, IsRead: true}, {ID: 2}})

	require.NoError(t, n.MarkAsRead(context.Background(), 1))
	require.NoError(t, n.MarkAsRead(context.Background(), 404))
	assert.Equal(t, 1, n.UnreadCount())
	m.AssertNotCalled(t, "MarkNotificationRead", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMarkAsRead(t *testing.T) {
	m := &mockBackend{}
	n := loadedNotifications(t, m, []domain.Notification{{ID: 2}})
	m.On("MarkNotificationRead", mock.Anything, "tok", int64(2), int64(9)).Return(nil).Once()

	require.NoError(t, n.MarkAsRead(context.Background(), 2))
	assert.Zero(t, n.UnreadCount())
	m.AssertExpectations(t)
}

func TestMarkAsReadFailureReverts(t *testing.T) {
	m := &mockBackend{}
	before := []domain.Notification{{ID: 2, Title: "Shipped"}, {ID: 3}}
	n := loadedNotifications(t, m, before)
	m.On("MarkNotificationRead", mock.Anything, "tok", int64(2), int64(9)).Return(errors.New("down"))

	require.Error(t, n.MarkAsRead(context.Background(), 2))
	assert.Equal(t, before, n.List())
}

func TestGroupByAge(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	list := []domain.Notification{
		{ID: 1, CreatedAt: now.Add(-2 * time.Hour)},
		{ID: 2, CreatedAt: now.Add(-30 * time.Hour)},
		{ID: 3, CreatedAt: now.Add(-6*24*time.Hour - time.Hour)},
		{ID: 4, CreatedAt: now.Add(-7 * 24 * time.Hour)},
	}

	groups := services.GroupByAge(list, now)
	require.Len(t, groups, 3)
	assert.Equal(t, services.GroupToday, groups[0].Label)
	assert.Len(t, groups[0].Items, 1)
	assert.Equal(t, services.GroupLastWeek, groups[1].Label)
	assert.Len(t, groups[1].Items, 2)
	assert.Equal(t, services.GroupOlder, groups[2].Label)
	assert.Equal(t, int64(4), groups[2].Items[0].ID)

	assert.Len(t, services.FilterNotifications([]domain.Notification{{ID: 1, IsRead: true}, {ID: 2}}, "unread"), 1)
}
