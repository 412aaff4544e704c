package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	jwthelp "github.com/Skotchmaster/storefront/pkg/jwt"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

// RefreshCookiePath scopes the refresh cookie to the auth routes.
const RefreshCookiePath = "/api/auth"

type AuthHTTP struct {
	Svc          *service.AuthService
	CookieSecure bool
}

func (h *AuthHTTP) setSession(c echo.Context, s *service.Session) {
	c.SetCookie(jwthelp.CreateCookie(jwthelp.RefreshCookieName, s.RefreshToken, RefreshCookiePath, s.RefreshExp, h.CookieSecure))
}

func (h *AuthHTTP) clearSession(c echo.Context) {
	c.SetCookie(jwthelp.DeleteCookie(jwthelp.RefreshCookieName, RefreshCookiePath, h.CookieSecure))
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req transport.RegisterRequest
	if err := bindValid(c, &req); err != nil {
		return badRequest(l, "register_error", err.Error())
	}

	sess, err := h.Svc.Register(ctx, req, clientMeta(c))
	if err != nil {
		return fail(l, "register_error", err)
	}
	h.setSession(c, sess)
	return c.JSON(http.StatusCreated, transport.AuthResponse{User: userResponse(sess.User), AccessToken: sess.AccessToken})
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req transport.LoginRequest
	if err := bindValid(c, &req); err != nil {
		return badRequest(l, "login_error", err.Error())
	}

	sess, err := h.Svc.Login(ctx, req, clientMeta(c))
	if err != nil {
		return fail(l, "login_error", err)
	}
	h.setSession(c, sess)
	l.Info("login_successful", "user_id", sess.User.ID)
	return c.JSON(http.StatusOK, transport.AuthResponse{User: userResponse(sess.User), AccessToken: sess.AccessToken})
}

// Refresh answers 401 when the cookie is absent so clients can tell a
// signed-out browser from a rejected token (403).
func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_refresh")

	cookie, err := c.Cookie(jwthelp.RefreshCookieName)
	if err != nil || cookie.Value == "" {
		l.Warn("refresh_error", "status", http.StatusUnauthorized, "reason", "no refresh cookie")
		return echo.NewHTTPError(http.StatusUnauthorized, "refresh token missing")
	}

	sess, err := h.Svc.Refresh(ctx, cookie.Value, clientMeta(c))
	if err != nil {
		h.clearSession(c)
		return fail(l, "refresh_error", err)
	}
	h.setSession(c, sess)
	return c.JSON(http.StatusOK, transport.AuthResponse{User: userResponse(sess.User), AccessToken: sess.AccessToken})
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_logout")

	if cookie, err := c.Cookie(jwthelp.RefreshCookieName); err == nil {
		if err := h.Svc.Logout(ctx, cookie.Value); err != nil {
			l.Error("logout_failed", "reason", "cannot revoke refresh token", "error", err)
		}
	}
	h.clearSession(c)
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

func (h *AuthHTTP) Me(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_me")

	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	u, err := h.Svc.Me(ctx, uid)
	if err != nil {
		return fail(l, "me_error", err)
	}
	return c.JSON(http.StatusOK, transport.UserEnvelope{User: userResponse(u)})
}

func (h *AuthHTTP) RequestPasswordChange(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_password_request")

	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	var req transport.PasswordChangeRequest
	if err := bindValid(c, &req); err != nil {
		return badRequest(l, "password_request_error", err.Error())
	}
	if err := h.Svc.RequestPasswordChange(ctx, uid, req); err != nil {
		return fail(l, "password_request_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "confirmation code sent"})
}

func (h *AuthHTTP) ConfirmPasswordChange(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_password_confirm")

	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	var req transport.PasswordConfirmRequest
	if err := bindValid(c, &req); err != nil {
		return badRequest(l, "password_confirm_error", err.Error())
	}
	if err := h.Svc.ConfirmPasswordChange(ctx, uid, req.Code); err != nil {
		return fail(l, "password_confirm_error", err)
	}
	h.clearSession(c)
	return c.JSON(http.StatusOK, echo.Map{"message": "password changed"})
}
