package loggingmw

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/metrics"
)

// RequestLogger puts a per-request logger into the request context and
// emits one http_request line per request. Handler errors are rendered here
// so the logged status is the one the client saw.
func RequestLogger(base *slog.Logger, m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			l := base.With(
				"method", req.Method,
				"path", c.Path(),
				"url", req.URL.Path,
				"remote_ip", c.RealIP(),
			)
			if rid := requestID(c); rid != "" {
				l = l.With("request_id", rid)
				c.Response().Header().Set(echo.HeaderXRequestID, rid)
			}
			c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), l)))

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			took := time.Since(start)
			status := c.Response().Status

			m.ObserveRequest(req.Method, c.Path(), status, took)

			attrs := []any{"status", status, "duration_ms", took.Milliseconds(), "bytes", c.Response().Size}
			if err != nil {
				attrs = append(attrs, "error", err.Error())
			}
			l.Log(req.Context(), levelFor(status), "http_request", attrs...)
			return nil
		}
	}
}

// requestID prefers the inbound header over one generated by echo's
// RequestID middleware.
func requestID(c echo.Context) string {
	if rid := c.Request().Header.Get(echo.HeaderXRequestID); rid != "" {
		return rid
	}
	return c.Response().Header().Get(echo.HeaderXRequestID)
}

func levelFor(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
