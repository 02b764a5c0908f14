package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/nano-social/backend/internal/middleware"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/observability"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/anonto42/nano-social/backend/internal/session"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

const invalidCredentials = "Invalid credentials provided"

// dummyHash is compared against when the username is unknown so both failure paths
// cost one bcrypt comparison.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("nano-social-placeholder"), bcrypt.DefaultCost)

var usernameUnsafe = regexp.MustCompile(`[^a-z0-9_]+`)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	userRepository repositories.UserRepository
	sessions       *session.Manager
	firebaseAuth   middleware.IDTokenVerifier
}

// NewAuthHandler creates a new AuthHandler. firebaseAuth may be nil, which disables
// the Firebase login route.
func NewAuthHandler(userRepo repositories.UserRepository, sessions *session.Manager, firebaseAuth middleware.IDTokenVerifier) *AuthHandler {
	return &AuthHandler{
		userRepository: userRepo,
		sessions:       sessions,
		firebaseAuth:   firebaseAuth,
	}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group, protect, limit echo.MiddlewareFunc) {
	g.POST("/signup", h.Signup, limit)
	g.POST("/login", h.Login, limit)
	g.POST("/logout", h.Logout)
	g.GET("/me", h.GetMe, protect)
	if h.firebaseAuth != nil {
		g.POST("/firebase", h.FirebaseLogin, limit, middleware.FirebaseIDToken(h.firebaseAuth))
	}
}

// Signup registers a local account and starts a session for it
func (h *AuthHandler) Signup(c echo.Context) error {
	var req models.SignupRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	// Format errors come from the validator; uniqueness is reported before password length.

	if _, err := h.userRepository.GetUserByUsername(ctx, req.Username); err == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Username is already taken")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return internalError(err)
	}
	if _, err := h.userRepository.GetUserByEmail(ctx, req.Email); err == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Email is already taken")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return internalError(err)
	}

	if len(req.Password) < minPasswordLen {
		return echo.NewHTTPError(http.StatusBadRequest, "Password must be at least 6 characters")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password")
	}

	user := models.NewUser(req.FullName, req.Username, req.Email, string(hashedPassword))
	if err := h.userRepository.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return echo.NewHTTPError(http.StatusBadRequest, "Username or email is already taken")
		}
		return internalError(err)
	}

	if err := h.sessions.SetCookie(c, user.ID); err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusCreated, user.ToPublic())
}

// Login checks a username/password pair and starts a session
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	user, err := h.userRepository.GetUserByUsername(c.Request().Context(), req.Username)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			return internalError(err)
		}
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(req.Password))
		observability.AuthFailuresTotal.WithLabelValues("bad_credentials").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, invalidCredentials)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		observability.AuthFailuresTotal.WithLabelValues("bad_credentials").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, invalidCredentials)
	}

	if err := h.sessions.SetCookie(c, user.ID); err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusOK, user.ToPublic())
}

func (h *AuthHandler) Logout(c echo.Context) error {
	h.sessions.ClearCookie(c)
	return c.JSON(http.StatusOK, echo.Map{"message": "Logged out successfully"})
}

// GetMe returns the authenticated user
func (h *AuthHandler) GetMe(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// FirebaseLogin exchanges a verified Firebase ID token for a session. The account is
// found by Firebase UID, then linked by email, then created. The last two require the
// token's email_verified claim.
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	token, ok := c.Get(middleware.FirebaseTokenKey).(*auth.Token)
	if !ok || token == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired ID token")
	}
	ctx := c.Request().Context()

	email, _ := token.Claims["email"].(string)
	name, _ := token.Claims["name"].(string)
	picture, _ := token.Claims["picture"].(string)

	user, err := h.userRepository.GetUserByFirebaseUID(ctx, token.UID)
	if err == nil {
		return h.startSession(c, user, http.StatusOK)
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return internalError(err)
	}

	if email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Firebase account has no email")
	}
	// Linking or claiming by email is only safe once Firebase has verified it.
	if verified, _ := token.Claims["email_verified"].(bool); !verified {
		observability.AuthFailuresTotal.WithLabelValues("unverified_email").Inc()
		return echo.NewHTTPError(http.StatusUnauthorized, "Firebase email is not verified")
	}

	user, err = h.userRepository.GetUserByEmail(ctx, email)
	if err == nil {
		user.FirebaseUID = token.UID
		if err := h.userRepository.UpdateUser(ctx, user); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to link Firebase account")
		}
		return h.startSession(c, user, http.StatusOK)
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return internalError(err)
	}

	username, err := h.availableUsername(c, email)
	if err != nil {
		return err
	}
	if name == "" {
		name = username
	}
	// Federated accounts never log in with a password; store an unguessable hash.
	unusable, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password")
	}

	user = models.NewUser(name, username, email, string(unusable))
	user.FirebaseUID = token.UID
	user.ProfileImg = picture
	if err := h.userRepository.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return echo.NewHTTPError(http.StatusBadRequest, "Username or email is already taken")
		}
		return internalError(err)
	}
	return h.startSession(c, user, http.StatusCreated)
}

func (h *AuthHandler) startSession(c echo.Context, user *models.User, status int) error {
	if err := h.sessions.SetCookie(c, user.ID); err != nil {
		return internalError(err)
	}
	return c.JSON(status, user.ToPublic())
}

// availableUsername derives a username from the email's local part, adding a short
// random suffix until it is free.
func (h *AuthHandler) availableUsername(c echo.Context, email string) (string, error) {
	local, _, _ := strings.Cut(strings.ToLower(email), "@")
	base := usernameUnsafe.ReplaceAllString(local, "")
	if base == "" {
		base = "user"
	}
	if len(base) > 20 {
		base = base[:20]
	}

	candidate := base
	for attempt := 0; attempt < 5; attempt++ {
		_, err := h.userRepository.GetUserByUsername(c.Request().Context(), candidate)
		if errors.Is(err, repositories.ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", internalError(err)
		}
		candidate = fmt.Sprintf("%s_%s", base, uuid.NewString()[:6])
	}
	return "", echo.NewHTTPError(http.StatusInternalServerError, "Could not allocate a username")
}
