package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Comment is embedded in Post.Comments in insertion order.
type Comment struct {
	ID   primitive.ObjectID `json:"_id" bson:"_id"`
	Text string             `json:"text" bson:"text"`
	User primitive.ObjectID `json:"user" bson:"user"`
}

// CommentView is a comment with its author populated.
type CommentView struct {
	ID   primitive.ObjectID `json:"_id"`
	Text string             `json:"text"`
	User *User              `json:"user"`
}

// CreateCommentRequest defines the request body for commenting on a post
type CreateCommentRequest struct {
	Text string `json:"text" validate:"max=500"`
}
