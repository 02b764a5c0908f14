package config

import (
	"net/http"
	"strconv"

	"github.com/anonto42/nano-social/backend/internal/observability"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// SetupMiddleware installs the global middleware chain. The SPA authenticates with a
// cookie, so CORS must allow credentials for the configured origins.
func SetupMiddleware(e *echo.Echo, cfg *Config) {
	e.IPExtractor = cfg.IPExtractor()
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(observability.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Origins(),
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	e.Use(middleware.BodyLimit(bodyLimit(cfg)))
	e.Use(observability.MetricsMiddleware())
}

// bodyLimit leaves room for two base64 images at the upload cap (profile and cover
// in one update) plus the rest of the JSON body.
func bodyLimit(cfg *Config) string {
	// base64 inflates by 4/3; ceil(2 * 4/3 * MB)
	mb := (8*cfg.ImageMaxUploadMB+2)/3 + 1
	if mb < 2 {
		mb = 2
	}
	return strconv.Itoa(mb) + "M"
}
