package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
	authmw "github.com/Skotchmaster/storefront/pkg/middleware/auth"
)

// CartHTTP serves the server-side cart. Guests keep their cart in the
// browser, so unauthenticated reads and adds answer with a guest marker
// instead of 401.
type CartHTTP struct {
	Svc *service.CartService
}

func (h *CartHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart_get")

	uid, ok := authmw.UserID(c)
	if !ok {
		return c.JSON(http.StatusOK, transport.CartResponse{Guest: true, Items: []transport.CartLine{}, Subtotal: decimal.Zero})
	}
	cart, err := h.Svc.Get(ctx, uid)
	if err != nil {
		return fail(l, "cart_get_error", err)
	}
	return c.JSON(http.StatusOK, cart)
}

func (h *CartHTTP) Add(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart_add")

	var req transport.CartAddRequest
	if err := bindValid(c, &req); err != nil {
		return badRequest(l, "cart_add_error", err.Error())
	}
	uid, ok := authmw.UserID(c)
	if !ok {
		return c.JSON(http.StatusOK, echo.Map{"guest": true})
	}

	res, created, err := h.Svc.Add(ctx, uid, req)
	if err != nil {
		return fail(l, "cart_add_error", err)
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	return c.JSON(status, res)
}

func (h *CartHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart_update")

	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	var req transport.CartUpdateRequest
	if err := bindValid(c, &req); err != nil {
		return badRequest(l, "cart_update_error", err.Error())
	}
	res, err := h.Svc.Update(ctx, uid, req)
	if err != nil {
		return fail(l, "cart_update_error", err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *CartHTTP) ChangeVariant(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart_change_variant")

	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	var req transport.ChangeVariantRequest
	if err := bindValid(c, &req); err != nil {
		return badRequest(l, "cart_change_variant_error", err.Error())
	}
	res, err := h.Svc.ChangeVariant(ctx, uid, req)
	if err != nil {
		return fail(l, "cart_change_variant_error", err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *CartHTTP) Remove(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart_remove")

	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	variantID, err := pathID(c, "variantId")
	if err != nil {
		return err
	}
	if err := h.Svc.Remove(ctx, uid, variantID); err != nil {
		return fail(l, "cart_remove_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "removed from cart"})
}

func (h *CartHTTP) Clear(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart_clear")

	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.Svc.Clear(ctx, uid); err != nil {
		return fail(l, "cart_clear_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "cart cleared"})
}

func (h *CartHTTP) Merge(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart_merge")

	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	var req transport.MergeRequest
	if err := bindValid(c, &req); err != nil {
		return badRequest(l, "cart_merge_error", err.Error())
	}
	res, err := h.Svc.Merge(ctx, uid, req)
	if err != nil {
		return fail(l, "cart_merge_error", err)
	}
	return c.JSON(http.StatusOK, res)
}
