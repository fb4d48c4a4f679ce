package httpserver

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Filipe-Ambrozio/stockwatch/internal/logging"
	authmw "github.com/Filipe-Ambrozio/stockwatch/internal/middleware/auth"
	"github.com/Filipe-Ambrozio/stockwatch/internal/service"
)

type ReportHTTP struct {
	Svc *service.ReportService
}

func (h *ReportHTTP) Summary(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "report.summary")

	sum, err := h.Svc.Summary(ctx, authmw.PrincipalFrom(c))
	if err != nil {
		return fail(l, "report_summary_failed", err)
	}

	return c.JSON(http.StatusOK, sum)
}

// ExportCSV buffers the whole export so a failed read never sends a partial file.
func (h *ReportHTTP) ExportCSV(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "report.export_csv")

	var buf bytes.Buffer
	if err := h.Svc.ExportCSV(ctx, authmw.PrincipalFrom(c), &buf); err != nil {
		return fail(l, "report_export_failed", err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="products.csv"`)
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
