package handlers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/anonto42/nano-social/backend/internal/storage"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newPostServer(posts *MockPostRepository, images *MockImageStore, me *models.User) *echo.Echo {
	e := newTestEcho()
	NewPostHandler(posts, images).RegisterPostRoutes(e.Group("/api/posts", asUser(me)))
	return e
}

func TestCreatePost(t *testing.T) {
	alice := newTestUser(t, "alice", "")

	t.Run("text only", func(t *testing.T) {
		posts := new(MockPostRepository)
		posts.On("CreatePost", mock.Anything, mock.MatchedBy(func(p *models.Post) bool {
			return p.User == alice.ID && p.Text == "hello" && p.Img == ""
		})).Return(nil)
		images := new(MockImageStore)
		e := newPostServer(posts, images, alice)

		rec := doRequest(e, http.MethodPost, "/api/posts/create", map[string]string{"text": "hello"})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var body map[string]interface{}
		decode(t, rec, &body)
		assert.Equal(t, "hello", body["text"])
		assert.Equal(t, alice.ID.Hex(), body["user"])
		assert.Equal(t, []interface{}{}, body["likes"])
		assert.Equal(t, []interface{}{}, body["comments"])
		images.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
	})

	t.Run("image is uploaded first", func(t *testing.T) {
		posts := new(MockPostRepository)
		posts.On("CreatePost", mock.Anything, mock.MatchedBy(func(p *models.Post) bool {
			return p.Img == "https://cdn.example.com/a.png"
		})).Return(nil)
		images := new(MockImageStore)
		images.On("Upload", mock.Anything, "data:image/png;base64,AAAA").Return("https://cdn.example.com/a.png", nil)
		e := newPostServer(posts, images, alice)

		rec := doRequest(e, http.MethodPost, "/api/posts/create", map[string]string{"img": "data:image/png;base64,AAAA"})
		assert.Equal(t, http.StatusCreated, rec.Code)
		posts.AssertExpectations(t)
	})

	t.Run("upload is removed when the post cannot be saved", func(t *testing.T) {
		posts := new(MockPostRepository)
		posts.On("CreatePost", mock.Anything, mock.Anything).Return(assert.AnError)
		images := new(MockImageStore)
		images.On("Upload", mock.Anything, "data:image/png;base64,AAAA").Return("https://cdn.example.com/a.png", nil)
		images.On("Delete", mock.Anything, "https://cdn.example.com/a.png").Return(nil)
		e := newPostServer(posts, images, alice)

		rec := doRequest(e, http.MethodPost, "/api/posts/create", map[string]string{"img": "data:image/png;base64,AAAA"})
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		images.AssertExpectations(t)
	})

	t.Run("hosted url is left alone when the post cannot be saved", func(t *testing.T) {
		posts := new(MockPostRepository)
		posts.On("CreatePost", mock.Anything, mock.Anything).Return(assert.AnError)
		images := new(MockImageStore)
		images.On("Upload", mock.Anything, "https://elsewhere.example/a.png").Return("https://elsewhere.example/a.png", nil)
		e := newPostServer(posts, images, alice)

		rec := doRequest(e, http.MethodPost, "/api/posts/create", map[string]string{"img": "https://elsewhere.example/a.png"})
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		images.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	tests := []struct {
		name    string
		body    map[string]string
		setup   func(images *MockImageStore)
		message string
	}{
		{name: "empty", body: map[string]string{"text": "   "}, message: "Text or image is required"},
		{name: "too long", body: map[string]string{"text": strings.Repeat("x", 281)}, message: "Text must be at most 280 characters"},
		{
			name: "oversized image",
			body: map[string]string{"img": "data:image/png;base64,AAAA"},
			setup: func(images *MockImageStore) {
				images.On("Upload", mock.Anything, mock.Anything).Return("", storage.ErrImageTooLarge)
			},
			message: "Image is too large",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts := new(MockPostRepository)
			images := new(MockImageStore)
			if tt.setup != nil {
				tt.setup(images)
			}
			e := newPostServer(posts, images, alice)

			rec := doRequest(e, http.MethodPost, "/api/posts/create", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.message, errorMessage(t, rec))
			posts.AssertNotCalled(t, "CreatePost", mock.Anything, mock.Anything)
		})
	}
}

func TestDeletePost(t *testing.T) {
	alice := newTestUser(t, "alice", "")

	t.Run("not found", func(t *testing.T) {
		id := primitive.NewObjectID()
		posts := new(MockPostRepository)
		posts.On("GetPostByID", mock.Anything, id).Return(nil, repositories.ErrNotFound)
		e := newPostServer(posts, new(MockImageStore), alice)

		rec := doRequest(e, http.MethodDelete, "/api/posts/"+id.Hex(), nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Post not found", errorMessage(t, rec))
	})

	t.Run("someone else's post", func(t *testing.T) {
		post := models.NewPost(primitive.NewObjectID(), "theirs", "")
		post.ID = primitive.NewObjectID()
		posts := new(MockPostRepository)
		posts.On("GetPostByID", mock.Anything, post.ID).Return(post, nil)
		e := newPostServer(posts, new(MockImageStore), alice)

		rec := doRequest(e, http.MethodDelete, "/api/posts/"+post.ID.Hex(), nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "You can only delete your own posts", errorMessage(t, rec))
		posts.AssertNotCalled(t, "DeletePost", mock.Anything, mock.Anything)
	})

	t.Run("own post with image", func(t *testing.T) {
		post := models.NewPost(alice.ID, "mine", "https://cdn.example.com/a.png")
		post.ID = primitive.NewObjectID()
		posts := new(MockPostRepository)
		posts.On("GetPostByID", mock.Anything, post.ID).Return(post, nil)
		posts.On("DeletePost", mock.Anything, post.ID).Return(nil)
		images := new(MockImageStore)
		images.On("Delete", mock.Anything, post.Img).Return(assert.AnError)
		e := newPostServer(posts, images, alice)

		rec := doRequest(e, http.MethodDelete, "/api/posts/"+post.ID.Hex(), nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"message":"Post deleted successfully"}`, rec.Body.String())
		posts.AssertExpectations(t)
		images.AssertExpectations(t)
	})
}
