package httpserver

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/util"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func (h *CatalogHTTP) Products(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog_products")

	var brandID uint
	if raw := strings.TrimSpace(c.QueryParam("brand")); raw != "" {
		id, err := util.ParseID(raw)
		if err != nil {
			return badRequest(l, "catalog_products_error", "invalid brand")
		}
		brandID = id
	}
	page, size := pageParams(c)
	out, err := h.Svc.ListProducts(ctx, page, size, c.QueryParam("category"), brandID, false)
	if err != nil {
		return fail(l, "catalog_products_error", err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CatalogHTTP) Product(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog_product")

	out, err := h.Svc.Detail(ctx, c.Param("id"))
	if err != nil {
		return fail(l, "catalog_product_error", err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CatalogHTTP) ProductVariants(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog_product_variants")

	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	out, err := h.Svc.Variants(ctx, id)
	if err != nil {
		return fail(l, "catalog_variants_error", err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CatalogHTTP) Variant(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog_variant")

	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	out, err := h.Svc.Variant(ctx, id)
	if err != nil {
		return fail(l, "catalog_variant_error", err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CatalogHTTP) Brands(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog_brands")

	out, err := h.Svc.Brands(ctx, true)
	if err != nil {
		return fail(l, "catalog_brands_error", err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CatalogHTTP) Categories(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog_categories")

	out, err := h.Svc.Categories(ctx)
	if err != nil {
		return fail(l, "catalog_categories_error", err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CatalogHTTP) NewIn(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog_new_in")

	out, err := h.Svc.NewIn(ctx)
	if err != nil {
		return fail(l, "catalog_new_in_error", err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CatalogHTTP) BestSellers(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog_best_sellers")

	out, err := h.Svc.BestSellers(ctx)
	if err != nil {
		return fail(l, "catalog_best_sellers_error", err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CatalogHTTP) Category(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog_category")

	page, size := pageParams(c)
	out, err := h.Svc.Category(ctx, c.Param("category"), page, size)
	if err != nil {
		return fail(l, "catalog_category_error", err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CatalogHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog_search")

	page, size := pageParams(c)
	out, err := h.Svc.SearchProducts(ctx, c.QueryParam("q"), page, size)
	if err != nil {
		return fail(l, "catalog_search_error", err)
	}
	return c.JSON(http.StatusOK, out)
}
