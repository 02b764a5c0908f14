package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a member account stored in the "users" collection.
type User struct {
	ID          primitive.ObjectID   `json:"_id" bson:"_id,omitempty"`
	Username    string               `json:"username" bson:"username"`
	FullName    string               `json:"fullName" bson:"fullName"`
	Email       string               `json:"email" bson:"email"`
	Password    string               `json:"-" bson:"password"` // bcrypt hash, never serialized
	Followers   []primitive.ObjectID `json:"followers" bson:"followers"`
	Following   []primitive.ObjectID `json:"following" bson:"following"`
	ProfileImg  string               `json:"profileImg" bson:"profileImg"`
	CoverImg    string               `json:"coverImg" bson:"coverImg"`
	Bio         string               `json:"bio" bson:"bio"`
	Link        string               `json:"link" bson:"link"`
	LikedPosts  []primitive.ObjectID `json:"likedPosts" bson:"likedPosts"`
	FirebaseUID string               `json:"-" bson:"firebaseUid,omitempty"`
	CreatedAt   time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// NewUser returns a user with empty relationship sets so they encode as [] rather than null.
func NewUser(fullName, username, email, passwordHash string) *User {
	return &User{
		FullName:   fullName,
		Username:   username,
		Email:      email,
		Password:   passwordHash,
		Followers:  []primitive.ObjectID{},
		Following:  []primitive.ObjectID{},
		LikedPosts: []primitive.ObjectID{},
	}
}

// IsFollowing reports whether u follows id.
func (u *User) IsFollowing(id primitive.ObjectID) bool {
	return containsID(u.Following, id)
}

// PublicProfile is what signup and login return.
type PublicProfile struct {
	ID         primitive.ObjectID   `json:"_id"`
	FullName   string               `json:"fullName"`
	Username   string               `json:"username"`
	Email      string               `json:"email"`
	Followers  []primitive.ObjectID `json:"followers"`
	Following  []primitive.ObjectID `json:"following"`
	ProfileImg string               `json:"profileImg"`
	CoverImg   string               `json:"coverImg"`
}

func (u *User) ToPublic() PublicProfile {
	return PublicProfile{
		ID:         u.ID,
		FullName:   u.FullName,
		Username:   u.Username,
		Email:      u.Email,
		Followers:  nonNil(u.Followers),
		Following:  nonNil(u.Following),
		ProfileImg: u.ProfileImg,
		CoverImg:   u.CoverImg,
	}
}

// UserCompact is the author/actor shape embedded in notifications.
type UserCompact struct {
	ID         primitive.ObjectID `json:"_id"`
	Username   string             `json:"username"`
	FullName   string             `json:"fullName"`
	ProfileImg string             `json:"profileImg"`
}

func (u *User) ToCompact() UserCompact {
	return UserCompact{
		ID:         u.ID,
		Username:   u.Username,
		FullName:   u.FullName,
		ProfileImg: u.ProfileImg,
	}
}

// SignupRequest tags cover format only. A missing email fails loose_email; the password
// minimum is checked by the handler after the uniqueness lookups.
type SignupRequest struct {
	FullName string `json:"fullName" validate:"required,max=100"`
	Username string `json:"username" validate:"required,min=1,max=30"`
	Email    string `json:"email" validate:"loose_email"`
	Password string `json:"password" validate:"max=72"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UpdateUserRequest carries a partial profile edit; empty fields keep their value.
type UpdateUserRequest struct {
	FullName        string `json:"fullName" validate:"omitempty,max=100"`
	Username        string `json:"username" validate:"omitempty,max=30"`
	Email           string `json:"email" validate:"omitempty,loose_email"`
	Bio             string `json:"bio" validate:"omitempty,max=160"`
	Link            string `json:"link" validate:"omitempty,max=200"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ProfileImg      string `json:"profileImg"`
	CoverImg        string `json:"coverImg"`
}

// SessionClaims is the payload of the session cookie token.
type SessionClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func nonNil(ids []primitive.ObjectID) []primitive.ObjectID {
	if ids == nil {
		return []primitive.ObjectID{}
	}
	return ids
}
