package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
	authmw "github.com/Skotchmaster/storefront/pkg/middleware/auth"
)

type ReviewHTTP struct {
	Svc *service.ReviewService
}

func (h *ReviewHTTP) ForProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "reviews_for_product")

	id, err := pathID(c, "productId")
	if err != nil {
		return err
	}
	out, err := h.Svc.ForProduct(ctx, id)
	if err != nil {
		return fail(l, "reviews_list_error", err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ReviewHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "review_create")

	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	var req transport.CreateReviewRequest
	if err := bindValid(c, &req); err != nil {
		return badRequest(l, "review_create_error", err.Error())
	}
	out, err := h.Svc.Create(ctx, uid, req)
	if err != nil {
		return fail(l, "review_create_error", err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *ReviewHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "review_update")

	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req transport.UpdateReviewRequest
	if err := bindValid(c, &req); err != nil {
		return badRequest(l, "review_update_error", err.Error())
	}
	out, err := h.Svc.Update(ctx, uid, id, req)
	if err != nil {
		return fail(l, "review_update_error", err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ReviewHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "review_delete")

	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Svc.Delete(ctx, uid, authmw.IsAdmin(c), id); err != nil {
		return fail(l, "review_delete_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "review deleted"})
}

type WishlistHTTP struct {
	Svc *service.WishlistService
}

func (h *WishlistHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "wishlist_list")

	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	out, err := h.Svc.List(ctx, uid)
	if err != nil {
		return fail(l, "wishlist_list_error", err)
	}
	if out == nil {
		out = []models.WishlistItem{}
	}
	return c.JSON(http.StatusOK, out)
}

func (h *WishlistHTTP) Add(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "wishlist_add")

	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	var req transport.WishlistRequest
	if err := bindValid(c, &req); err != nil {
		return badRequest(l, "wishlist_add_error", err.Error())
	}
	added, err := h.Svc.Add(ctx, uid, req.ProductID)
	if err != nil {
		return fail(l, "wishlist_add_error", err)
	}
	if !added {
		return c.JSON(http.StatusOK, echo.Map{"message": "already in wishlist"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "added to wishlist"})
}

func (h *WishlistHTTP) Remove(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "wishlist_remove")

	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "productId")
	if err != nil {
		return err
	}
	if err := h.Svc.Remove(ctx, uid, id); err != nil {
		return fail(l, "wishlist_remove_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "removed from wishlist"})
}

type PromotionHTTP struct {
	Svc *service.PromotionService
}

func (h *PromotionHTTP) Active(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "promotions_active")

	out, err := h.Svc.Active(ctx)
	if err != nil {
		return fail(l, "promotions_active_error", err)
	}
	return c.JSON(http.StatusOK, out)
}
