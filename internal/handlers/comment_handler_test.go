package handlers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCommentOnPost(t *testing.T) {
	alice := newTestUser(t, "alice", "")
	postID := primitive.NewObjectID()

	posts := new(MockPostRepository)
	commented := models.NewPost(primitive.NewObjectID(), "hi", "")
	commented.ID = postID
	commented.Comments = []models.Comment{{ID: primitive.NewObjectID(), Text: "nice", User: alice.ID}}
	posts.On("AddComment", mock.Anything, postID, models.Comment{Text: "nice", User: alice.ID}).Return(commented, nil)
	missing := primitive.NewObjectID()
	posts.On("AddComment", mock.Anything, missing, mock.Anything).Return(nil, repositories.ErrNotFound)

	e := newTestEcho()
	NewCommentHandler(posts).RegisterCommentRoutes(e.Group("/api/posts", asUser(alice)))

	t.Run("appends the comment", func(t *testing.T) {
		rec := doRequest(e, http.MethodPost, "/api/posts/comment/"+postID.Hex(), map[string]string{"text": "nice"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var body models.Post
		decode(t, rec, &body)
		require.Len(t, body.Comments, 1)
		assert.Equal(t, "nice", body.Comments[0].Text)
		assert.Equal(t, alice.ID, body.Comments[0].User)
	})

	t.Run("blank text", func(t *testing.T) {
		rec := doRequest(e, http.MethodPost, "/api/posts/comment/"+postID.Hex(), map[string]string{"text": "  "})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Text field is required", errorMessage(t, rec))
	})

	t.Run("too long", func(t *testing.T) {
		rec := doRequest(e, http.MethodPost, "/api/posts/comment/"+postID.Hex(), map[string]string{"text": strings.Repeat("x", 501)})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown post", func(t *testing.T) {
		rec := doRequest(e, http.MethodPost, "/api/posts/comment/"+missing.Hex(), map[string]string{"text": "nice"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Post not found", errorMessage(t, rec))
	})
}
