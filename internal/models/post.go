package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post represents a social media post stored in MongoDB
type Post struct {
	ID        primitive.ObjectID   `json:"_id" bson:"_id,omitempty"`
	User      primitive.ObjectID   `json:"user" bson:"user"` // owner
	Text      string               `json:"text,omitempty" bson:"text,omitempty"`
	Img       string               `json:"img,omitempty" bson:"img,omitempty"`
	Likes     []primitive.ObjectID `json:"likes" bson:"likes"`
	Comments  []Comment            `json:"comments" bson:"comments"`
	CreatedAt time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt" bson:"updatedAt"`
}

func NewPost(owner primitive.ObjectID, text, img string) *Post {
	return &Post{
		User:     owner,
		Text:     text,
		Img:      img,
		Likes:    []primitive.ObjectID{},
		Comments: []Comment{},
	}
}

// LikedBy reports whether userID is in the post's like-set.
func (p *Post) LikedBy(userID primitive.ObjectID) bool {
	return containsID(p.Likes, userID)
}

// PostView is a post with its author and commenters populated.
type PostView struct {
	ID        primitive.ObjectID   `json:"_id"`
	User      *User                `json:"user"`
	Text      string               `json:"text,omitempty"`
	Img       string               `json:"img,omitempty"`
	Likes     []primitive.ObjectID `json:"likes"`
	Comments  []CommentView        `json:"comments"`
	CreatedAt time.Time            `json:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt"`
}

// NewPostView joins p with users; ids missing from users render as null.
func NewPostView(p Post, users map[primitive.ObjectID]*User) PostView {
	comments := make([]CommentView, len(p.Comments))
	for i, c := range p.Comments {
		comments[i] = CommentView{ID: c.ID, Text: c.Text, User: users[c.User]}
	}
	return PostView{
		ID:        p.ID,
		User:      users[p.User],
		Text:      p.Text,
		Img:       p.Img,
		Likes:     nonNil(p.Likes),
		Comments:  comments,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// CreatePostRequest defines the request body for creating a new post. Img is either a
// base64 data URI or an already hosted http(s) URL.
type CreatePostRequest struct {
	Text string `json:"text" validate:"max=280"`
	Img  string `json:"img"`
}
