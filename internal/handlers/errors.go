package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/anonto42/nano-social/backend/internal/observability"
	"github.com/labstack/echo/v4"
)

// HTTPErrorHandler renders every error as {"error": message}.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		message = fmt.Sprint(he.Message)
	}

	if code >= http.StatusInternalServerError {
		observability.Logger.ErrorContext(c.Request().Context(), "handler error",
			"method", c.Request().Method,
			"path", c.Path(),
			"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
			"error", err.Error(),
		)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, echo.Map{"error": message})
	}
	if err != nil {
		observability.Logger.Error("write error response", "error", err)
	}
}
