package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/pagehub/contentd/cmd/contentd/container"
	"github.com/pagehub/contentd/cmd/contentd/handlers"
)

// RegisterPageRoutes registers the page read endpoints
func RegisterPageRoutes(e *echo.Echo, c *container.Container) {
	h := handlers.NewPageHandler(c.PageService, c.Components.Logger)

	pages := e.Group("/api/page/content")
	{
		pages.GET("/", h.List)         // GET /api/page/content/
		pages.GET("/:id/", h.Retrieve) // GET /api/page/content/{id}/
	}
}
