package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/pagehub/contentd/cmd/contentd/container"
	"github.com/pagehub/contentd/cmd/contentd/handlers"
)

// RegisterUploadRoutes registers the media attach endpoints
func RegisterUploadRoutes(e *echo.Echo, c *container.Container) {
	h := handlers.NewUploadHandler(c.UploadService, c.Components.Logger)

	contents := e.Group("/api/content")
	{
		contents.POST("/:kind/:id/file", h.Attach)   // POST /api/content/{kind}/{id}/file
		contents.POST("/:kind/:id/url", h.AttachURL) // POST /api/content/{kind}/{id}/url
	}
}
