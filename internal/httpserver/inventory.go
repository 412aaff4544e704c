package httpserver

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/util"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type InventoryHTTP struct {
	Svc *service.InventoryService
}

func (h *InventoryHTTP) Variants(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "inventory_variants")

	var productID uint
	if raw := strings.TrimSpace(c.QueryParam("product_id")); raw != "" {
		id, err := util.ParseID(raw)
		if err != nil {
			return badRequest(l, "inventory_variants_error", "invalid product_id")
		}
		productID = id
	}
	var lowStock *int
	if raw := strings.TrimSpace(c.QueryParam("low_stock")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return badRequest(l, "inventory_variants_error", "invalid low_stock")
		}
		lowStock = &n
	}

	out, err := h.Svc.Variants(ctx, productID, lowStock)
	if err != nil {
		return fail(l, "inventory_variants_error", err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *InventoryHTTP) Variant(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "inventory_variant")

	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	out, err := h.Svc.Variant(ctx, id)
	if err != nil {
		return fail(l, "inventory_variant_error", err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *InventoryHTTP) Adjust(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "inventory_adjust")

	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req transport.StockAdjustRequest
	if err := bindValid(c, &req); err != nil {
		return badRequest(l, "stock_adjust_error", err.Error())
	}
	out, err := h.Svc.Adjust(ctx, id, req)
	if err != nil {
		return fail(l, "stock_adjust_error", err)
	}
	l.Info("stock_adjusted", "variant_id", id, "old_stock", out.OldStock, "new_stock", out.NewStock)
	return c.JSON(http.StatusOK, out)
}

func (h *InventoryHTTP) Logs(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "inventory_logs")

	var variantID uint
	if raw := strings.TrimSpace(c.QueryParam("variant_id")); raw != "" {
		id, err := util.ParseID(raw)
		if err != nil {
			return badRequest(l, "inventory_logs_error", "invalid variant_id")
		}
		variantID = id
	}
	limit := util.ParseIntDefault(c.QueryParam("limit"), service.DefaultLogLimit)

	out, err := h.Svc.Logs(ctx, variantID, limit)
	if err != nil {
		return fail(l, "inventory_logs_error", err)
	}
	return c.JSON(http.StatusOK, out)
}
