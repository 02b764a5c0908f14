package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notificationRepository repositories.NotificationRepository
	userRepository         repositories.UserRepository
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifRepo repositories.NotificationRepository, userRepo repositories.UserRepository) *NotificationHandler {
	return &NotificationHandler{
		notificationRepository: notifRepo,
		userRepository:         userRepo,
	}
}

// RegisterNotificationRoutes registers notification routes on a protected group
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("", h.GetNotifications)
	g.GET("/unread-count", h.GetUnreadCount)
	g.DELETE("", h.DeleteNotifications)
	g.DELETE("/:id", h.DeleteNotification)
}

func (h *NotificationHandler) enrichNotifications(c echo.Context, list []models.Notification) ([]models.NotificationView, error) {
	seen := make(map[primitive.ObjectID]bool)
	var ids []primitive.ObjectID
	for _, n := range list {
		if !seen[n.From] {
			seen[n.From] = true
			ids = append(ids, n.From)
		}
	}

	actors, err := h.userRepository.GetUsersByIDs(c.Request().Context(), ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]*models.User, len(actors))
	for i := range actors {
		byID[actors[i].ID] = &actors[i]
	}

	views := make([]models.NotificationView, len(list))
	for i, n := range list {
		views[i] = models.NewNotificationView(n, byID[n.From])
	}
	return views, nil
}

// GetNotifications returns the caller's notifications and then marks them read
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	me, err := currentUser(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	list, err := h.notificationRepository.GetByRecipientID(ctx, me.ID)
	if err != nil {
		return internalError(err)
	}
	views, err := h.enrichNotifications(c, list)
	if err != nil {
		return internalError(err)
	}

	if err := h.notificationRepository.MarkAllAsRead(ctx, me.ID); err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusOK, views)
}

// GetUnreadCount returns the unread notification count
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	me, err := currentUser(c)
	if err != nil {
		return err
	}
	count, err := h.notificationRepository.GetUnreadCount(c.Request().Context(), me.ID)
	if err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"count": count})
}

func (h *NotificationHandler) DeleteNotifications(c echo.Context) error {
	me, err := currentUser(c)
	if err != nil {
		return err
	}
	if _, err := h.notificationRepository.DeleteByRecipientID(c.Request().Context(), me.ID); err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Notifications deleted successfully"})
}

// DeleteNotification removes one of the caller's notifications
func (h *NotificationHandler) DeleteNotification(c echo.Context) error {
	me, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := parseObjectID(c, "id", "notification")
	if err != nil {
		return err
	}
	if err := h.notificationRepository.DeleteNotification(c.Request().Context(), id, me.ID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Notification not found")
		}
		return internalError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Notification deleted successfully"})
}
