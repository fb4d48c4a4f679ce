package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Filipe-Ambrozio/stockwatch/internal/logging"
	authmw "github.com/Filipe-Ambrozio/stockwatch/internal/middleware/auth"
	"github.com/Filipe-Ambrozio/stockwatch/internal/models"
	"github.com/Filipe-Ambrozio/stockwatch/internal/service"
	"github.com/Filipe-Ambrozio/stockwatch/internal/transport"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func me(s *models.Session) transport.Me {
	return transport.Me{
		Username: s.Username,
		Section:  s.Section,
		IsAdmin:  s.Section == models.SectionAdmin,
		SeesAll:  models.SeesAllSections(s.Section),
	}
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "login_failed", "invalid body", err)
	}

	res, err := h.Svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		return fail(l, "login_failed", err)
	}

	authmw.SetAuthCookies(c, res)
	l.Info("login_successful", "username", res.Session.Username)
	return c.JSON(http.StatusOK, me(res.Session))
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.refresh")

	cookie, err := c.Cookie(authmw.RefreshCookie)
	if err != nil || cookie.Value == "" {
		l.Warn("refresh_failed", "status", 401, "reason", "refresh cookie missing")
		return echo.NewHTTPError(http.StatusUnauthorized, "refresh token missing")
	}

	res, err := h.Svc.Refresh(ctx, cookie.Value)
	if err != nil {
		authmw.ClearAuthCookies(c)
		return fail(l, "refresh_failed", err)
	}

	authmw.SetAuthCookies(c, res)
	return c.JSON(http.StatusOK, echo.Map{
		"access_exp":  res.AccessExp.Unix(),
		"refresh_exp": res.RefreshExp.Unix(),
	})
}

// LogOut revokes whichever session the cookies name and always clears them.
func (h *AuthHTTP) LogOut(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")
	authmw.ClearAuthCookies(c)

	if cookie, err := c.Cookie(authmw.RefreshCookie); err == nil && cookie.Value != "" {
		if err := h.Svc.LogOutToken(ctx, cookie.Value); err != nil {
			return fail(l, "logout_failed", err)
		}
	} else if cookie, err := c.Cookie(authmw.AccessCookie); err == nil && cookie.Value != "" {
		if sess, err := h.Svc.Authenticate(ctx, cookie.Value); err == nil {
			if err := h.Svc.LogOut(ctx, sess.ID); err != nil {
				return fail(l, "logout_failed", err)
			}
		}
	}

	l.Info("successful_logout")
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

func (h *AuthHTTP) Me(c echo.Context) error {
	sess, ok := authmw.SessionFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "login required")
	}
	return c.JSON(http.StatusOK, me(sess))
}

func Sections(c echo.Context) error {
	return c.JSON(http.StatusOK, transport.Sections{
		Departments: models.Departments,
		UserScopes:  append([]string{models.SectionAdmin, models.SectionManagement}, models.Departments...),
	})
}
