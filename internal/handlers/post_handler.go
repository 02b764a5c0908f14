package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/observability"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/anonto42/nano-social/backend/internal/storage"
	"github.com/labstack/echo/v4"
)

// PostHandler handles creating and deleting posts
type PostHandler struct {
	postRepository repositories.PostRepository
	images         storage.ImageStore
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postRepo repositories.PostRepository, images storage.ImageStore) *PostHandler {
	return &PostHandler{postRepository: postRepo, images: images}
}

// RegisterPostRoutes registers post routes on the protected posts group
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/create", h.CreatePost)
	g.DELETE("/:id", h.DeletePost)
}

// CreatePost handles creating a new post
func (h *PostHandler) CreatePost(c echo.Context) error {
	me, err := currentUser(c)
	if err != nil {
		return err
	}
	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.Text) == "" && req.Img == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Text or image is required")
	}
	ctx := c.Request().Context()

	img := ""
	if req.Img != "" {
		if img, err = h.images.Upload(ctx, req.Img); err != nil {
			return imageError(err)
		}
	}

	post := models.NewPost(me.ID, req.Text, img)
	if err := h.postRepository.CreatePost(ctx, post); err != nil {
		if img != "" && !storage.IsRemote(req.Img) {
			if derr := h.images.Delete(ctx, img); derr != nil {
				observability.Logger.WarnContext(ctx, "delete orphaned post image failed", "url", img, "error", derr)
			}
		}
		return internalError(err)
	}
	observability.RecordInteraction(observability.InteractionPost)
	return c.JSON(http.StatusCreated, post)
}

// DeletePost removes one of the caller's posts and its image
func (h *PostHandler) DeletePost(c echo.Context) error {
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
	if post.User != me.ID {
		return echo.NewHTTPError(http.StatusUnauthorized, "You can only delete your own posts")
	}

	if post.Img != "" {
		if err := h.images.Delete(ctx, post.Img); err != nil {
			observability.Logger.WarnContext(ctx, "delete post image failed", "post", post.ID.Hex(), "error", err)
		}
	}

	if err := h.postRepository.DeletePost(ctx, postID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return internalError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Post deleted successfully"})
}
