package handlers

import (
	"net/http"
	"testing"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newNotificationServer(notifs *MockNotificationRepository, users *MockUserRepository, me *models.User) *echo.Echo {
	e := newTestEcho()
	NewNotificationHandler(notifs, users).RegisterNotificationRoutes(e.Group("/api/notifications", asUser(me)))
	return e
}

func TestGetNotifications(t *testing.T) {
	alice := newTestUser(t, "alice", "")
	bob := newTestUser(t, "bob", "secret1")
	list := []models.Notification{
		{ID: primitive.NewObjectID(), From: bob.ID, To: alice.ID, Type: models.NotificationLike},
		{ID: primitive.NewObjectID(), From: bob.ID, To: alice.ID, Type: models.NotificationFollow},
	}

	notifs := new(MockNotificationRepository)
	notifs.On("GetByRecipientID", mock.Anything, alice.ID).Return(list, nil)
	notifs.On("MarkAllAsRead", mock.Anything, alice.ID).Return(nil)
	users := new(MockUserRepository)
	users.On("GetUsersByIDs", mock.Anything, []primitive.ObjectID{bob.ID}).Return([]models.User{*bob}, nil)
	e := newNotificationServer(notifs, users, alice)

	rec := doRequest(e, http.MethodGet, "/api/notifications", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got []map[string]interface{}
	decode(t, rec, &got)
	require.Len(t, got, 2)
	from := got[0]["from"].(map[string]interface{})
	assert.Equal(t, "bob", from["username"])
	assert.NotContains(t, from, "password")
	assert.NotContains(t, from, "email")
	assert.Equal(t, false, got[0]["read"])
	notifs.AssertExpectations(t)
}

func TestGetUnreadCount(t *testing.T) {
	alice := newTestUser(t, "alice", "")
	notifs := new(MockNotificationRepository)
	notifs.On("GetUnreadCount", mock.Anything, alice.ID).Return(int64(3), nil)
	e := newNotificationServer(notifs, new(MockUserRepository), alice)

	rec := doRequest(e, http.MethodGet, "/api/notifications/unread-count", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count":3}`, rec.Body.String())
}

func TestDeleteNotifications(t *testing.T) {
	alice := newTestUser(t, "alice", "")
	own := primitive.NewObjectID()
	foreign := primitive.NewObjectID()

	notifs := new(MockNotificationRepository)
	notifs.On("DeleteByRecipientID", mock.Anything, alice.ID).Return(int64(2), nil)
	notifs.On("DeleteNotification", mock.Anything, own, alice.ID).Return(nil)
	notifs.On("DeleteNotification", mock.Anything, foreign, alice.ID).Return(repositories.ErrNotFound)
	e := newNotificationServer(notifs, new(MockUserRepository), alice)

	rec := doRequest(e, http.MethodDelete, "/api/notifications", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Notifications deleted successfully"}`, rec.Body.String())

	rec = doRequest(e, http.MethodDelete, "/api/notifications/"+own.Hex(), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Notification deleted successfully"}`, rec.Body.String())

	rec = doRequest(e, http.MethodDelete, "/api/notifications/"+foreign.Hex(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Notification not found", errorMessage(t, rec))
}
