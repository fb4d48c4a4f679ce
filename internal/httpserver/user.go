package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Filipe-Ambrozio/stockwatch/internal/logging"
	authmw "github.com/Filipe-Ambrozio/stockwatch/internal/middleware/auth"
	"github.com/Filipe-Ambrozio/stockwatch/internal/service"
	"github.com/Filipe-Ambrozio/stockwatch/internal/transport"
)

type UserHTTP struct {
	Svc *service.UserService
}

func (h *UserHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.register")

	var req transport.RegisterUserRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "register_failed", "invalid body", err)
	}

	u, err := h.Svc.Register(ctx, authmw.PrincipalFrom(c), req)
	if err != nil {
		return fail(l, "register_failed", err)
	}

	l.Info("successful_register", "username", u.Username, "section", u.Section)
	return c.JSON(http.StatusCreated, u)
}

func (h *UserHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.list")

	users, err := h.Svc.List(ctx, authmw.PrincipalFrom(c))
	if err != nil {
		return fail(l, "list_users_failed", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"data": users})
}
