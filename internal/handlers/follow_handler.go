package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/notifications"
	"github.com/anonto42/nano-social/backend/internal/observability"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// FollowHandler handles follow/unfollow requests
type FollowHandler struct {
	userRepository repositories.UserRepository
	notifications  *notifications.Service
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(userRepo repositories.UserRepository, notifier *notifications.Service) *FollowHandler {
	return &FollowHandler{userRepository: userRepo, notifications: notifier}
}

// RegisterFollowRoutes registers follow routes on the protected users group
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/follow/:id", h.FollowUnfollowUser)
}

// FollowUnfollowUser toggles whether the caller follows :id
func (h *FollowHandler) FollowUnfollowUser(c echo.Context) error {
	me, err := currentUser(c)
	if err != nil {
		return err
	}
	targetID, err := parseObjectID(c, "id", "user")
	if err != nil {
		return err
	}
	if targetID == me.ID {
		return echo.NewHTTPError(http.StatusBadRequest, "You can't follow/unfollow yourself")
	}
	ctx := c.Request().Context()

	if _, err := h.userRepository.GetUserByID(ctx, targetID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusBadRequest, "User not found")
		}
		return internalError(err)
	}

	if me.IsFollowing(targetID) {
		if err := h.userRepository.RemoveFollow(ctx, me.ID, targetID); err != nil {
			return internalError(err)
		}
		observability.RecordInteraction(observability.InteractionUnfollow)
		return c.JSON(http.StatusOK, echo.Map{"message": "User unfollowed successfully"})
	}

	if err := h.userRepository.AddFollow(ctx, me.ID, targetID); err != nil {
		return internalError(err)
	}
	observability.RecordInteraction(observability.InteractionFollow)
	if err := h.notifications.Notify(ctx, me, targetID, models.NotificationFollow); err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "User followed successfully"})
}
