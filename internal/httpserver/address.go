package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type AddressHTTP struct {
	Svc *service.AddressService
}

func (h *AddressHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "address_list")

	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	out, err := h.Svc.List(ctx, uid)
	if err != nil {
		return fail(l, "address_list_error", err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AddressHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "address_create")

	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	var req transport.AddressRequest
	if err := bindValid(c, &req); err != nil {
		return badRequest(l, "address_create_error", err.Error())
	}
	a, err := h.Svc.Create(ctx, uid, req)
	if err != nil {
		return fail(l, "address_create_error", err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *AddressHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "address_update")

	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req transport.AddressRequest
	if err := bindValid(c, &req); err != nil {
		return badRequest(l, "address_update_error", err.Error())
	}
	a, err := h.Svc.Update(ctx, uid, id, req)
	if err != nil {
		return fail(l, "address_update_error", err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *AddressHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "address_delete")

	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Svc.Delete(ctx, uid, id); err != nil {
		return fail(l, "address_delete_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "address deleted"})
}

func (h *AddressHTTP) SetDefault(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "address_set_default")

	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	a, err := h.Svc.SetDefault(ctx, uid, id)
	if err != nil {
		return fail(l, "address_set_default_error", err)
	}
	return c.JSON(http.StatusOK, a)
}
