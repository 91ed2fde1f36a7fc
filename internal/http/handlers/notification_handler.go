package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	applog "zando/internal/log"
	"zando/internal/services"
	"zando/internal/validate"
)

type NotificationHandler struct{}

func notificationTab(s string) string {
	if s == "unread" {
		return s
	}
	return "all"
}

// GET /notifications?tab=all|unread
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	sess := currentSession(c)
	tab := notificationTab(c.Query("tab"))
	list := services.FilterNotifications(sess.Notifications.List(), tab)
	return render(c, "notifications", fiber.Map{
		"Tab":    tab,
		"Groups": services.GroupByAge(list, time.Now()),
		"Empty":  len(list) == 0,
	})
}

// POST /notifications/:id/read
func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	sess := currentSession(c)
	back := "/notifications?tab=" + notificationTab(c.FormValue("tab"))
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("invalid notification id")
	}
	switch err := sess.Notifications.MarkAsRead(c.UserContext(), id); {
	case errors.Is(err, services.ErrInFlight):
	case err != nil:
		applog.Error(c, "notification.read.fail", err, map[string]any{"notification_id": id})
		return redirectWith(c, back, "Could not update the notification.")
	}
	return c.Redirect(back)
}
