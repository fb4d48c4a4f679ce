package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Filipe-Ambrozio/stockwatch/internal/logging"
	authmw "github.com/Filipe-Ambrozio/stockwatch/internal/middleware/auth"
	"github.com/Filipe-Ambrozio/stockwatch/internal/service"
	"github.com/Filipe-Ambrozio/stockwatch/internal/transport"
	"github.com/Filipe-Ambrozio/stockwatch/internal/util"
)

type ProductHTTP struct {
	Svc *service.ProductService
}

func (h *ProductHTTP) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.list_products")

	q := transport.ListProductsQuery{
		Section: c.QueryParam("section"),
		Tier:    c.QueryParam("tier"),
		Query:   c.QueryParam("q"),
		Page:    util.ParseIntDefault(c.QueryParam("page"), 1),
		Size:    util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize),
	}

	page, err := h.Svc.List(ctx, authmw.PrincipalFrom(c), q)
	if err != nil {
		return fail(l, "list_products_failed", err)
	}

	return c.JSON(http.StatusOK, page)
}

func (h *ProductHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(l, "get_product_failed", "id is not a uuid", err)
	}

	v, err := h.Svc.Get(ctx, authmw.PrincipalFrom(c), id)
	if err != nil {
		return fail(l, "get_product_failed", err)
	}

	return c.JSON(http.StatusOK, v)
}

func (h *ProductHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create_product")

	var req transport.RegisterProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "product_create_failed", "invalid body", err)
	}

	v, err := h.Svc.Register(ctx, authmw.PrincipalFrom(c), req)
	if err != nil {
		return fail(l, "product_create_failed", err)
	}

	l.Info("product_created", "id", v.ID, "section", v.Section)
	return c.JSON(http.StatusCreated, v)
}

func (h *ProductHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete_product")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(l, "product_delete_failed", "id is not a uuid", err)
	}

	if err := h.Svc.Delete(ctx, authmw.PrincipalFrom(c), id); err != nil {
		return fail(l, "product_delete_failed", err)
	}

	l.Info("product_deleted", "id", id)
	return c.NoContent(http.StatusNoContent)
}

// DeleteMatching removes every row equal to the posted tuple.
func (h *ProductHTTP) DeleteMatching(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete_matching")

	var req transport.DeleteMatchRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "product_delete_failed", "invalid body", err)
	}

	n, err := h.Svc.DeleteMatching(ctx, authmw.PrincipalFrom(c), req)
	if err != nil {
		return fail(l, "product_delete_failed", err)
	}

	l.Info("products_deleted", "removed", n)
	return c.JSON(http.StatusOK, transport.DeleteMatchResult{Removed: n})
}

func (h *ProductHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search_products")

	rows, err := h.Svc.Search(ctx, authmw.PrincipalFrom(c), c.QueryParam("q"))
	if err != nil {
		return fail(l, "search_products_failed", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}
