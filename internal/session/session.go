// Package session issues and verifies the signed cookie that carries a login.
package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CookieName is the name of the session cookie.
const CookieName = "jwt"

var ErrInvalidToken = errors.New("invalid session token")

// Manager signs session tokens with a shared HMAC secret.
type Manager struct {
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

func NewManager(secret string, ttl time.Duration, secure bool) *Manager {
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
		secure: secure,
		now:    time.Now,
	}
}

// TTL is both the token lifetime and the cookie max age.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue returns a signed token for userID.
func (m *Manager) Issue(userID primitive.ObjectID) (string, error) {
	now := m.now()
	claims := &models.SessionClaims{
		UserID: userID.Hex(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Parse verifies token and returns the user id it was issued for.
func (m *Manager) Parse(token string) (primitive.ObjectID, error) {
	claims := &models.SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid {
		return primitive.NilObjectID, ErrInvalidToken
	}

	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidToken
	}
	return id, nil
}

// SetCookie issues a token for userID and attaches it to the response.
func (m *Manager) SetCookie(c echo.Context, userID primitive.ObjectID) error {
	token, err := m.Issue(userID)
	if err != nil {
		return err
	}
	c.SetCookie(m.cookie(token, int(m.ttl.Seconds())))
	return nil
}

// ClearCookie overwrites the session cookie with an expired empty one.
func (m *Manager) ClearCookie(c echo.Context) {
	cookie := m.cookie("", -1)
	cookie.Expires = time.Unix(0, 0)
	c.SetCookie(cookie)
}

func (m *Manager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteStrictMode,
	}
}
