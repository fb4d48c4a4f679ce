package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Filipe-Ambrozio/stockwatch/internal/logging"
	authmw "github.com/Filipe-Ambrozio/stockwatch/internal/middleware/auth"
	"github.com/Filipe-Ambrozio/stockwatch/internal/service"
	"github.com/Filipe-Ambrozio/stockwatch/internal/transport"
	"github.com/Filipe-Ambrozio/stockwatch/internal/util"
)

type StatusHTTP struct {
	Svc *service.StatusService
}

func (h *StatusHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "status.get")

	st, err := h.Svc.Get(ctx)
	if err != nil {
		return fail(l, "get_status_failed", err)
	}

	return c.JSON(http.StatusOK, st)
}

func (h *StatusHTTP) Set(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "status.set")

	var req transport.SetStatusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "set_status_failed", "invalid body", err)
	}

	entry, err := h.Svc.Set(ctx, authmw.PrincipalFrom(c), req)
	if err != nil {
		return fail(l, "set_status_failed", err)
	}

	l.Info("status_changed", "color", entry.Color)
	return c.JSON(http.StatusOK, entry)
}

func (h *StatusHTTP) History(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "status.history")

	limit := util.ParseIntDefault(c.QueryParam("limit"), service.DefaultHistoryLimit)
	entries, err := h.Svc.History(ctx, limit)
	if err != nil {
		return fail(l, "status_history_failed", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"data": entries})
}
