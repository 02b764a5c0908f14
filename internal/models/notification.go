package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	NotificationLike   = "like"
	NotificationFollow = "follow"
)

// Notification is stored in the "notifications" collection.
type Notification struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	From      primitive.ObjectID `json:"from" bson:"from"`
	To        primitive.ObjectID `json:"to" bson:"to"`
	Type      string             `json:"type" bson:"type"`
	Read      bool               `json:"read" bson:"read"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// NotificationView includes sender info
type NotificationView struct {
	ID        primitive.ObjectID `json:"_id"`
	From      *UserCompact       `json:"from"`
	To        primitive.ObjectID `json:"to"`
	Type      string             `json:"type"`
	Read      bool               `json:"read"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// NewNotificationView embeds from as the actor. A nil from is kept as null.
func NewNotificationView(n Notification, from *User) NotificationView {
	view := NotificationView{
		ID:        n.ID,
		To:        n.To,
		Type:      n.Type,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
	if from != nil {
		compact := from.ToCompact()
		view.From = &compact
	}
	return view
}
