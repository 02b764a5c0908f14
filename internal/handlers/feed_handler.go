package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FeedHandler serves the post listings
type FeedHandler struct {
	postRepository repositories.PostRepository
	userRepository repositories.UserRepository
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(postRepo repositories.PostRepository, userRepo repositories.UserRepository) *FeedHandler {
	return &FeedHandler{postRepository: postRepo, userRepository: userRepo}
}

// RegisterFeedRoutes registers listing routes on the protected posts group
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/all", h.GetAllPosts)
	g.GET("/following", h.GetFollowingPosts)
	g.GET("/likes/:id", h.GetLikedPosts)
	g.GET("/user/:username", h.GetUserPosts)
}

func (h *FeedHandler) GetAllPosts(c echo.Context) error {
	posts, err := h.postRepository.GetAllPosts(c.Request().Context(), pageFromQuery(c))
	if err != nil {
		return internalError(err)
	}
	return h.render(c, posts)
}

// GetFollowingPosts lists posts by the users the caller follows
func (h *FeedHandler) GetFollowingPosts(c echo.Context) error {
	me, err := currentUser(c)
	if err != nil {
		return err
	}
	posts, err := h.postRepository.GetPostsByUserIDs(c.Request().Context(), me.Following, pageFromQuery(c))
	if err != nil {
		return internalError(err)
	}
	return h.render(c, posts)
}

// GetLikedPosts lists the posts user :id has liked
func (h *FeedHandler) GetLikedPosts(c echo.Context) error {
	userID, err := parseObjectID(c, "id", "user")
	if err != nil {
		return err
	}
	user, err := h.userRepository.GetUserByID(c.Request().Context(), userID)
	if err != nil {
		return userLookupError(err)
	}
	posts, err := h.postRepository.GetPostsByIDs(c.Request().Context(), user.LikedPosts, pageFromQuery(c))
	if err != nil {
		return internalError(err)
	}
	return h.render(c, posts)
}

// GetUserPosts lists the posts written by :username
func (h *FeedHandler) GetUserPosts(c echo.Context) error {
	user, err := h.userRepository.GetUserByUsername(c.Request().Context(), c.Param("username"))
	if err != nil {
		return userLookupError(err)
	}
	posts, err := h.postRepository.GetPostsByUserIDs(c.Request().Context(), []primitive.ObjectID{user.ID}, pageFromQuery(c))
	if err != nil {
		return internalError(err)
	}
	return h.render(c, posts)
}

func (h *FeedHandler) render(c echo.Context, posts []models.Post) error {
	views, err := populatePosts(c.Request().Context(), h.userRepository, posts)
	if err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusOK, views)
}

func userLookupError(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}
	return internalError(err)
}
