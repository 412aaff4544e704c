package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/util"
	authmw "github.com/Skotchmaster/storefront/pkg/middleware/auth"
)

// Configure installs the validator and error renderer shared by main and tests.
func Configure(e *echo.Echo) {
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()
	e.HTTPErrorHandler = ErrorHandler
}

func currentUser(c echo.Context) (uint, error) {
	id, ok := authmw.UserID(c)
	if !ok {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return id, nil
}

func pathID(c echo.Context, name string) (uint, error) {
	id, err := util.ParseID(c.Param(name))
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

func pageParams(c echo.Context) (page, size int) {
	page = util.ParseIntDefault(c.QueryParam("page"), 1)
	size = util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	return page, size
}

func clientMeta(c echo.Context) service.ClientMeta {
	return service.ClientMeta{UserAgent: c.Request().UserAgent(), IP: c.RealIP()}
}

func userResponse(u *models.User) transport.UserResponse {
	return transport.UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

func pageOf[T any](data []T, page, size int, total int64) transport.Page[T] {
	offset, limit := util.Calculate(page, size)
	if data == nil {
		data = []T{}
	}
	return transport.Page[T]{Data: data, Meta: transport.Meta{Page: offset/limit + 1, Size: limit, Total: total}}
}
