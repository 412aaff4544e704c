package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type HealthHTTP struct {
	DB *gorm.DB
}

func (h *HealthHTTP) Live(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

func (h *HealthHTTP) Ready(c echo.Context) error {
	ctx := c.Request().Context()
	if err := db.Ping(ctx, h.DB); err != nil {
		logging.FromContext(ctx).Warn("readiness_failed", "reason", "database", "error", err)
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable"})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
