package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/util"
	"github.com/Skotchmaster/storefront/pkg/logging"
	authmw "github.com/Skotchmaster/storefront/pkg/middleware/auth"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order_create")

	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	var req transport.CreateOrderRequest
	if err := bindValid(c, &req); err != nil {
		return badRequest(l, "order_create_error", err.Error())
	}
	o, err := h.Svc.Create(ctx, uid, req)
	if err != nil {
		return fail(l, "order_create_error", err)
	}
	l.Info("order_created", "order_id", o.ID, "user_id", uid)
	return c.JSON(http.StatusCreated, transport.CreateOrderResponse{OrderID: o.ID, TotalAmount: o.TotalAmount})
}

func (h *OrderHTTP) My(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order_my")

	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	orders, err := h.Svc.My(ctx, uid)
	if err != nil {
		return fail(l, "order_my_error", err)
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order_get")

	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	o, err := h.Svc.Get(ctx, uid, authmw.IsAdmin(c), id)
	if err != nil {
		return fail(l, "order_get_error", err)
	}
	return c.JSON(http.StatusOK, o)
}

func (h *OrderHTTP) Cancel(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order_cancel")

	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	o, err := h.Svc.Cancel(ctx, uid, id)
	if err != nil {
		return fail(l, "order_cancel_error", err)
	}
	return c.JSON(http.StatusOK, o)
}

func (h *OrderHTTP) AdminList(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_orders_list")

	page, size := pageParams(c)
	offset, limit := util.Calculate(page, size)
	total, orders, err := h.Svc.AdminList(ctx, c.QueryParam("status"), offset, limit)
	if err != nil {
		return fail(l, "admin_orders_list_error", err)
	}
	return c.JSON(http.StatusOK, pageOf(orders, page, size, total))
}

func (h *OrderHTTP) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_order_status")

	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req transport.OrderStatusRequest
	if err := bindValid(c, &req); err != nil {
		return badRequest(l, "order_status_error", err.Error())
	}
	o, err := h.Svc.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		return fail(l, "order_status_error", err)
	}
	return c.JSON(http.StatusOK, o)
}
