package httpserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

var statusBySentinel = []struct {
	err  error
	code int
}{
	{service.ErrInvalidRefreshToken, http.StatusForbidden},
	{service.ErrAccountDisabled, http.StatusForbidden},
	{service.ErrForbidden, http.StatusForbidden},
	{service.ErrUnauthorized, http.StatusUnauthorized},
	{service.ErrNotFound, http.StatusNotFound},
	{service.ErrConflict, http.StatusConflict},
	{service.ErrValidation, http.StatusBadRequest},
}

// httpError turns a service error into an echo error. The sentinel prefix
// is stripped so clients see only the detail.
func httpError(err error) *echo.HTTPError {
	for _, s := range statusBySentinel {
		if errors.Is(err, s.err) {
			msg := err.Error()
			if trimmed := strings.TrimPrefix(msg, s.err.Error()+": "); trimmed != "" {
				msg = trimmed
			}
			return echo.NewHTTPError(s.code, msg)
		}
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error").SetInternal(err)
}

// fail logs a failed handler outcome at the level its status deserves.
func fail(l *slog.Logger, event string, err error) error {
	he := httpError(err)
	if he.Code >= http.StatusInternalServerError {
		l.Error(event, "status", he.Code, "error", err)
	} else {
		l.Warn(event, "status", he.Code, "error", err)
	}
	return he
}

func badRequest(l *slog.Logger, event, msg string) error {
	l.Warn(event, "status", http.StatusBadRequest, "reason", msg)
	return echo.NewHTTPError(http.StatusBadRequest, msg)
}

// ErrorHandler renders every error as {"error": "..."}. Map messages, such as
// the auth middleware's {error, code}, are passed through.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if !errors.As(err, &he) {
		logging.FromContext(c.Request().Context()).Error("unhandled_error", "error", err)
		he = echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	var body echo.Map
	switch m := he.Message.(type) {
	case echo.Map:
		body = m
	case string:
		body = echo.Map{"error": m}
	case error:
		body = echo.Map{"error": m.Error()}
	default:
		body = echo.Map{"error": http.StatusText(he.Code)}
	}
	if he.Code >= http.StatusInternalServerError {
		body = echo.Map{"error": "internal server error"}
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(he.Code)
		return
	}
	_ = c.JSON(he.Code, body)
}
