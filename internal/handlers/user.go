package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/observability"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/anonto42/nano-social/backend/internal/storage"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

const (
	suggestionSample = 10
	suggestionCount  = 4
	minPasswordLen   = 6
)

// UserHandler handles HTTP requests related to users
type UserHandler struct {
	userRepository repositories.UserRepository
	images         storage.ImageStore
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository, images storage.ImageStore) *UserHandler {
	return &UserHandler{userRepository: userRepo, images: images}
}

// RegisterUserRoutes registers profile routes on a protected group
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.GET("/profile/:username", h.GetUserProfile)
	g.GET("/suggested", h.GetSuggestedUsers)
	g.POST("/update", h.UpdateUser)
}

func (h *UserHandler) GetUserProfile(c echo.Context) error {
	user, err := h.userRepository.GetUserByUsername(c.Request().Context(), c.Param("username"))
	if err != nil {
		return userLookupError(err)
	}
	user.Password = ""
	return c.JSON(http.StatusOK, user)
}

// GetSuggestedUsers returns a few random users the caller does not follow yet
func (h *UserHandler) GetSuggestedUsers(c echo.Context) error {
	me, err := currentUser(c)
	if err != nil {
		return err
	}

	sample, err := h.userRepository.SampleUsers(c.Request().Context(), me.ID, suggestionSample)
	if err != nil {
		return internalError(err)
	}

	suggested := make([]models.User, 0, suggestionCount)
	for _, u := range sample {
		if u.ID == me.ID || me.IsFollowing(u.ID) {
			continue
		}
		u.Password = ""
		suggested = append(suggested, u)
		if len(suggested) == suggestionCount {
			break
		}
	}
	return c.JSON(http.StatusOK, suggested)
}

// UpdateUser edits the caller's profile; empty fields keep their current value
func (h *UserHandler) UpdateUser(c echo.Context) error {
	me, err := currentUser(c)
	if err != nil {
		return err
	}
	var req models.UpdateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	// the context copy has its hash stripped
	user, err := h.userRepository.GetUserByID(ctx, me.ID)
	if err != nil {
		return userLookupError(err)
	}

	if (req.CurrentPassword == "") != (req.NewPassword == "") {
		return echo.NewHTTPError(http.StatusBadRequest, "Please provide both current password and new password")
	}
	if req.CurrentPassword != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
			observability.AuthFailuresTotal.WithLabelValues("bad_credentials").Inc()
			return echo.NewHTTPError(http.StatusBadRequest, "Current password is incorrect")
		}
		if len(req.NewPassword) < minPasswordLen {
			return echo.NewHTTPError(http.StatusBadRequest, "Password must be at least 6 characters")
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password")
		}
		user.Password = string(hashed)
	}

	if req.Username != "" && req.Username != user.Username {
		if _, err := h.userRepository.GetUserByUsername(ctx, req.Username); err == nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Username is already taken")
		} else if !errors.Is(err, repositories.ErrNotFound) {
			return internalError(err)
		}
		user.Username = req.Username
	}
	if req.Email != "" && req.Email != user.Email {
		if _, err := h.userRepository.GetUserByEmail(ctx, req.Email); err == nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Email is already taken")
		} else if !errors.Is(err, repositories.ErrNotFound) {
			return internalError(err)
		}
		user.Email = req.Email
	}

	// stale holds images replaced by this edit, uploaded the ones it stored; whichever
	// set loses once the save settles is removed.
	var stale, uploaded []string
	for _, img := range []struct {
		payload string
		field   *string
	}{
		{req.ProfileImg, &user.ProfileImg},
		{req.CoverImg, &user.CoverImg},
	} {
		if img.payload == "" || img.payload == *img.field {
			continue
		}
		url, err := h.images.Upload(ctx, img.payload)
		if err != nil {
			h.removeImages(c, uploaded)
			return imageError(err)
		}
		if !storage.IsRemote(img.payload) {
			uploaded = append(uploaded, url)
		}
		stale = append(stale, *img.field)
		*img.field = url
	}

	if req.FullName != "" {
		user.FullName = req.FullName
	}
	if req.Bio != "" {
		user.Bio = req.Bio
	}
	if req.Link != "" {
		user.Link = req.Link
	}

	if err := h.userRepository.UpdateUser(ctx, user); err != nil {
		h.removeImages(c, uploaded)
		if errors.Is(err, repositories.ErrDuplicate) {
			return echo.NewHTTPError(http.StatusBadRequest, "Username or email is already taken")
		}
		return internalError(err)
	}
	h.removeImages(c, stale)

	user.Password = ""
	return c.JSON(http.StatusOK, user)
}

// removeImages deletes images best-effort.
func (h *UserHandler) removeImages(c echo.Context, urls []string) {
	ctx := c.Request().Context()
	for _, url := range urls {
		if url == "" {
			continue
		}
		if err := h.images.Delete(ctx, url); err != nil {
			observability.Logger.WarnContext(ctx, "delete image failed", "url", url, "error", err)
		}
	}
}
