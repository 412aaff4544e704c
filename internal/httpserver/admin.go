package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/util"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

// AdminHTTP groups the catalog management routes. Every route is mounted
// behind RequireAdmin.
type AdminHTTP struct {
	Products   *service.ProductAdminService
	Catalog    *service.CatalogService
	Promotions *service.PromotionService
}

func (h *AdminHTTP) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_products_list")

	page, size := pageParams(c)
	out, err := h.Products.List(ctx, page, size)
	if err != nil {
		return fail(l, "admin_products_list_error", err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_product_get")

	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	out, err := h.Catalog.AdminDetail(ctx, util.FormatID(id))
	if err != nil {
		return fail(l, "admin_product_get_error", err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_product_create")

	var req transport.CreateProductRequest
	if err := bindValid(c, &req); err != nil {
		return badRequest(l, "product_create_error", err.Error())
	}
	out, err := h.Products.Create(ctx, req)
	if err != nil {
		return fail(l, "product_create_error", err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *AdminHTTP) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_product_update")

	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req transport.UpdateProductRequest
	if err := bindValid(c, &req); err != nil {
		return badRequest(l, "product_update_error", err.Error())
	}
	out, err := h.Products.Update(ctx, id, req)
	if err != nil {
		return fail(l, "product_update_error", err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_product_delete")

	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Products.Delete(ctx, id); err != nil {
		return fail(l, "product_delete_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "product deleted"})
}

func (h *AdminHTTP) AddVariant(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_variant_add")

	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req transport.VariantRequest
	if err := bindValid(c, &req); err != nil {
		return badRequest(l, "variant_add_error", err.Error())
	}
	out, err := h.Products.AddVariant(ctx, id, req)
	if err != nil {
		return fail(l, "variant_add_error", err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *AdminHTTP) UpdateVariant(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_variant_update")

	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req transport.UpdateVariantRequest
	if err := bindValid(c, &req); err != nil {
		return badRequest(l, "variant_update_error", err.Error())
	}
	out, err := h.Products.UpdateVariant(ctx, id, req)
	if err != nil {
		return fail(l, "variant_update_error", err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminHTTP) DeleteVariant(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_variant_delete")

	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Products.DeleteVariant(ctx, id); err != nil {
		return fail(l, "variant_delete_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "variant deleted"})
}

func (h *AdminHTTP) AddImages(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_images_add")

	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req transport.AddImagesRequest
	if err := bindValid(c, &req); err != nil {
		return badRequest(l, "images_add_error", err.Error())
	}
	out, err := h.Products.AddImages(ctx, id, req)
	if err != nil {
		return fail(l, "images_add_error", err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *AdminHTTP) DeleteImage(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_image_delete")

	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Products.DeleteImage(ctx, id); err != nil {
		return fail(l, "image_delete_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "image deleted"})
}

func (h *AdminHTTP) ListBrands(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_brands_list")

	out, err := h.Catalog.Brands(ctx, false)
	if err != nil {
		return fail(l, "brands_list_error", err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminHTTP) CreateBrand(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_brand_create")

	var req transport.BrandRequest
	if err := bindValid(c, &req); err != nil {
		return badRequest(l, "brand_create_error", err.Error())
	}
	out, err := h.Products.CreateBrand(ctx, req)
	if err != nil {
		return fail(l, "brand_create_error", err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *AdminHTTP) UpdateBrand(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_brand_update")

	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req transport.UpdateBrandRequest
	if err := bindValid(c, &req); err != nil {
		return badRequest(l, "brand_update_error", err.Error())
	}
	out, err := h.Products.UpdateBrand(ctx, id, req)
	if err != nil {
		return fail(l, "brand_update_error", err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminHTTP) DeleteBrand(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_brand_delete")

	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Products.DeleteBrand(ctx, id); err != nil {
		return fail(l, "brand_delete_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "brand deleted"})
}

func (h *AdminHTTP) ListCategories(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_categories_list")

	out, err := h.Catalog.Categories(ctx)
	if err != nil {
		return fail(l, "categories_list_error", err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminHTTP) CreateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_category_create")

	var req transport.CategoryRequest
	if err := bindValid(c, &req); err != nil {
		return badRequest(l, "category_create_error", err.Error())
	}
	out, err := h.Products.CreateCategory(ctx, req)
	if err != nil {
		return fail(l, "category_create_error", err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *AdminHTTP) AddCategoryAlias(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_category_alias")

	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req transport.AliasRequest
	if err := bindValid(c, &req); err != nil {
		return badRequest(l, "category_alias_error", err.Error())
	}
	out, err := h.Products.AddCategoryAlias(ctx, id, req)
	if err != nil {
		return fail(l, "category_alias_error", err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *AdminHTTP) DeleteCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_category_delete")

	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Products.DeleteCategory(ctx, id); err != nil {
		return fail(l, "category_delete_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "category deleted"})
}

func (h *AdminHTTP) CreatePromotion(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_promotion_create")

	var req transport.CreatePromotionRequest
	if err := bindValid(c, &req); err != nil {
		return badRequest(l, "promotion_create_error", err.Error())
	}
	out, err := h.Promotions.Create(ctx, req)
	if err != nil {
		return fail(l, "promotion_create_error", err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *AdminHTTP) ListPromotions(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_promotions_list")

	out, err := h.Promotions.List(ctx)
	if err != nil {
		return fail(l, "promotions_list_error", err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminHTTP) DeletePromotion(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_promotion_delete")

	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Promotions.Delete(ctx, id); err != nil {
		return fail(l, "promotion_delete_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "promotion deleted"})
}
