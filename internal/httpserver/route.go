package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	authmw "github.com/Filipe-Ambrozio/stockwatch/internal/middleware/auth"
)

type Deps struct {
	Auth     *AuthHTTP
	Products *ProductHTTP
	Users    *UserHTTP
	Status   *StatusHTTP
	Reports  *ReportHTTP
	Session  *authmw.SessionMiddleware

	// CSRF guards every /api/v1 route when set.
	CSRF echo.MiddlewareFunc
	// Ready backs /health/ready; nil always reports ready.
	Ready func(ctx context.Context) error
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return c.JSON(http.StatusServiceUnavailable, echo.Map{"message": "not ready"})
			}
		}
		return c.NoContent(http.StatusOK)
	})

	api := e.Group("/api/v1")
	if d.CSRF != nil {
		api.Use(d.CSRF)
	}
	api.GET("/sections", Sections)

	auth := api.Group("/auth")
	auth.POST("/login", d.Auth.Login)
	auth.POST("/refresh", d.Auth.Refresh)
	auth.POST("/logout", d.Auth.LogOut)
	auth.GET("/me", d.Auth.Me, d.Session.RequireSession)

	products := api.Group("/products", d.Session.RequireSession)
	products.GET("", d.Products.ListProducts)
	products.POST("", d.Products.CreateProduct)
	products.GET("/search", d.Products.SearchProducts)
	products.POST("/delete-match", d.Products.DeleteMatching)
	products.GET("/:id", d.Products.GetProduct)
	products.DELETE("/:id", d.Products.DeleteProduct)

	users := api.Group("/users")
	users.GET("", d.Users.List, d.Session.RequireOverview)
	users.POST("", d.Users.Register, d.Session.RequireAdmin)

	status := api.Group("/status", d.Session.RequireSession)
	status.GET("", d.Status.Get)
	status.GET("/history", d.Status.History)
	status.PUT("", d.Status.Set, d.Session.RequireAdmin)

	reports := api.Group("/reports", d.Session.RequireSession)
	reports.GET("/summary", d.Reports.Summary)
	reports.GET("/products.csv", d.Reports.ExportCSV)
}
