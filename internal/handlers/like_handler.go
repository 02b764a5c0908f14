package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/notifications"
	"github.com/anonto42/nano-social/backend/internal/observability"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LikeHandler handles HTTP requests related to likes
type LikeHandler struct {
	postRepository repositories.PostRepository
	userRepository repositories.UserRepository
	notifications  *notifications.Service
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(postRepo repositories.PostRepository, userRepo repositories.UserRepository, notifier *notifications.Service) *LikeHandler {
	return &LikeHandler{
		postRepository: postRepo,
		userRepository: userRepo,
		notifications:  notifier,
	}
}

// RegisterLikeRoutes registers like routes on the protected posts group
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/like/:id", h.LikeUnlikePost)
}

// LikeUnlikePost toggles the caller's like on :id
func (h *LikeHandler) LikeUnlikePost(c echo.Context) error {
	me, err := currentUser(c)
	if err != nil {
		return err
	}
	postID, err := parseObjectID(c, "id", "post")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	post, err := h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return internalError(err)
	}

	if post.LikedBy(me.ID) {
		if _, err := h.postRepository.RemoveLike(ctx, postID, me.ID); err != nil {
			return likeError(err)
		}
		if err := h.userRepository.RemoveLikedPost(ctx, me.ID, postID); err != nil {
			return internalError(err)
		}
		observability.RecordInteraction(observability.InteractionUnlike)
		return c.JSON(http.StatusOK, echo.Map{
			"message": "Post unliked successfully",
			"likes":   without(post.Likes, me.ID),
		})
	}

	added, err := h.postRepository.AddLike(ctx, postID, me.ID)
	if err != nil {
		return likeError(err)
	}
	if err := h.userRepository.AddLikedPost(ctx, me.ID, postID); err != nil {
		return internalError(err)
	}

	likes := post.Likes
	if added {
		likes = append(likes, me.ID)
		observability.RecordInteraction(observability.InteractionLike)
		if err := h.notifications.Notify(ctx, me, post.User, models.NotificationLike); err != nil {
			return internalError(err)
		}
	}
	if likes == nil {
		likes = []primitive.ObjectID{}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Post liked successfully",
		"likes":   likes,
	})
}

func likeError(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}
	return internalError(err)
}

func without(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
