package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/observability"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	postRepository repositories.PostRepository
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(postRepo repositories.PostRepository) *CommentHandler {
	return &CommentHandler{postRepository: postRepo}
}

// RegisterCommentRoutes registers comment routes on the protected posts group
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/comment/:id", h.CommentOnPost)
}

// CommentOnPost appends the caller's comment and returns the updated post
func (h *CommentHandler) CommentOnPost(c echo.Context) error {
	me, err := currentUser(c)
	if err != nil {
		return err
	}
	postID, err := parseObjectID(c, "id", "post")
	if err != nil {
		return err
	}

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if strings.TrimSpace(req.Text) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Text field is required")
	}
	if err := validate(c, &req); err != nil {
		return err
	}

	post, err := h.postRepository.AddComment(c.Request().Context(), postID, models.Comment{Text: req.Text, User: me.ID})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return internalError(err)
	}
	observability.RecordInteraction(observability.InteractionComment)
	return c.JSON(http.StatusOK, post)
}
