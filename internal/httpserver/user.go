package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/util"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type UserHTTP struct {
	Svc *service.UserService
}

func (h *UserHTTP) UpdateMe(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user_update_me")

	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	var req transport.UpdateProfileRequest
	if err := bindValid(c, &req); err != nil {
		return badRequest(l, "profile_update_error", err.Error())
	}
	u, err := h.Svc.UpdateProfile(ctx, uid, req)
	if err != nil {
		return fail(l, "profile_update_error", err)
	}
	return c.JSON(http.StatusOK, transport.UserEnvelope{User: userResponse(u)})
}

func (h *UserHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_users_list")

	page, size := pageParams(c)
	offset, limit := util.Calculate(page, size)
	total, users, err := h.Svc.List(ctx, offset, limit)
	if err != nil {
		return fail(l, "users_list_error", err)
	}
	out := make([]transport.UserResponse, len(users))
	for i := range users {
		out[i] = userResponse(&users[i])
	}
	return c.JSON(http.StatusOK, pageOf(out, page, size, total))
}

func (h *UserHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_users_create")

	var req transport.AdminCreateUserRequest
	if err := bindValid(c, &req); err != nil {
		return badRequest(l, "user_create_error", err.Error())
	}
	u, err := h.Svc.Create(ctx, req)
	if err != nil {
		return fail(l, "user_create_error", err)
	}
	return c.JSON(http.StatusCreated, transport.UserEnvelope{User: userResponse(u)})
}

func (h *UserHTTP) SetActive(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_users_set_active")

	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req transport.SetActiveRequest
	if err := bindValid(c, &req); err != nil {
		return badRequest(l, "user_set_active_error", err.Error())
	}
	u, err := h.Svc.SetActive(ctx, actor, id, *req.IsActive)
	if err != nil {
		return fail(l, "user_set_active_error", err)
	}
	l.Info("user_active_changed", "user_id", id, "is_active", u.IsActive)
	return c.JSON(http.StatusOK, transport.UserEnvelope{User: userResponse(u)})
}
