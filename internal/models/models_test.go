package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUserJSONOmitsPassword(t *testing.T) {
	u := NewUser("Alice A", "alice", "alice@example.com", "$2a$10$hash")
	u.ID = primitive.NewObjectID()

	raw, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "password")
	assert.NotContains(t, string(raw), "$2a$10$hash")
	assert.Contains(t, string(raw), `"followers":[]`)
}

func TestToPublicNormalizesNilSets(t *testing.T) {
	u := &User{ID: primitive.NewObjectID(), Username: "bob"}
	p := u.ToPublic()
	assert.NotNil(t, p.Followers)
	assert.NotNil(t, p.Following)
	assert.Equal(t, "bob", p.Username)
}

func TestIsFollowingAndLikedBy(t *testing.T) {
	a, b := primitive.NewObjectID(), primitive.NewObjectID()
	u := NewUser("", "u", "u@example.com", "")
	u.Following = append(u.Following, a)
	assert.True(t, u.IsFollowing(a))
	assert.False(t, u.IsFollowing(b))

	p := NewPost(a, "hi", "")
	p.Likes = append(p.Likes, b)
	assert.True(t, p.LikedBy(b))
	assert.False(t, p.LikedBy(a))
}

func TestNewPostViewPopulatesUsers(t *testing.T) {
	owner := NewUser("Owner", "owner", "o@example.com", "secret-hash")
	owner.ID = primitive.NewObjectID()
	commenter := NewUser("C", "commenter", "c@example.com", "other-hash")
	commenter.ID = primitive.NewObjectID()
	ghost := primitive.NewObjectID()

	p := NewPost(owner.ID, "hello", "")
	p.ID = primitive.NewObjectID()
	p.Comments = []Comment{
		{ID: primitive.NewObjectID(), Text: "first", User: commenter.ID},
		{ID: primitive.NewObjectID(), Text: "gone", User: ghost},
	}

	view := NewPostView(*p, map[primitive.ObjectID]*User{owner.ID: owner, commenter.ID: commenter})
	require.NotNil(t, view.User)
	assert.Equal(t, "owner", view.User.Username)
	require.Len(t, view.Comments, 2)
	assert.Equal(t, "commenter", view.Comments[0].User.Username)
	assert.Nil(t, view.Comments[1].User)

	raw, err := json.Marshal(view)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret-hash")
	assert.NotContains(t, string(raw), "other-hash")
}
