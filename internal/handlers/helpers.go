package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/anonto42/nano-social/backend/internal/middleware"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/anonto42/nano-social/backend/internal/storage"
	"github.com/anonto42/nano-social/backend/internal/validators"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// currentUser returns the user ProtectRoute loaded for this request.
func currentUser(c echo.Context) (*models.User, error) {
	user, ok := c.Get(middleware.UserContextKey).(*models.User)
	if !ok || user == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized: No token provided")
	}
	return user, nil
}

func parseObjectID(c echo.Context, param, what string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(c.Param(param))
	if err != nil {
		return primitive.NilObjectID, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+what+" ID")
	}
	return id, nil
}

// pageFromQuery reads optional skip/limit; anything unparsable means "not set".
func pageFromQuery(c echo.Context) repositories.Page {
	skip, _ := strconv.ParseInt(c.QueryParam("skip"), 10, 64)
	limit, _ := strconv.ParseInt(c.QueryParam("limit"), 10, 64)
	if skip < 0 {
		skip = 0
	}
	if limit < 0 {
		limit = 0
	}
	return repositories.Page{Skip: skip, Limit: limit}
}

// bindAndValidate binds the body into req and renders validation failures as 400s.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	return validate(c, req)
}

func validate(c echo.Context, req interface{}) error {
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, validators.Message(err))
	}
	return nil
}

func internalError(err error) error {
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

func imageError(err error) error {
	switch {
	case errors.Is(err, storage.ErrInvalidImage):
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid image")
	case errors.Is(err, storage.ErrImageTooLarge):
		return echo.NewHTTPError(http.StatusBadRequest, "Image is too large")
	}
	return internalError(err)
}

// populatePosts joins posts with their authors and commenters, without password hashes.
func populatePosts(ctx context.Context, users repositories.UserRepository, posts []models.Post) ([]models.PostView, error) {
	seen := make(map[primitive.ObjectID]bool)
	var ids []primitive.ObjectID
	add := func(id primitive.ObjectID) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, p := range posts {
		add(p.User)
		for _, cm := range p.Comments {
			add(cm.User)
		}
	}

	found, err := users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]*models.User, len(found))
	for i := range found {
		found[i].Password = ""
		byID[found[i].ID] = &found[i]
	}

	views := make([]models.PostView, len(posts))
	for i, p := range posts {
		views[i] = models.NewPostView(p, byID)
	}
	return views, nil
}
