package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/pagehub/contentd/cmd/contentd/models"
	"github.com/pagehub/contentd/cmd/contentd/service"
	"github.com/pagehub/contentd/common/logger"
)

// PageHandler serves the page read endpoints
type PageHandler struct {
	pages *service.PageService
	log   *logger.Logger
}

// NewPageHandler creates a new page handler
func NewPageHandler(pages *service.PageService, log *logger.Logger) *PageHandler {
	return &PageHandler{
		pages: pages,
		log:   log,
	}
}

// List serves the paginated page list
// GET /api/page/content/
func (h *PageHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	fullPath := c.Request().URL.RequestURI()

	list, err := h.pages.List(c.Request().Context(), fullPath, limit, offset)
	if err != nil {
		return h.errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, list)
}

// Retrieve serves a single page by id
// GET /api/page/content/:id/
func (h *PageHandler) Retrieve(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"detail": "not found",
		})
	}

	fullPath := c.Request().URL.RequestURI()

	page, err := h.pages.Retrieve(c.Request().Context(), id, fullPath)
	if err != nil {
		return h.errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, page)
}

func (h *PageHandler) errorResponse(c echo.Context, err error) error {
	var validationErr *models.ValidationError

	switch {
	case errors.Is(err, models.ErrPageNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{
			"detail": "not found",
		})
	case errors.As(err, &validationErr):
		return c.JSON(http.StatusBadRequest, map[string]any{
			"errors": validationErr.Fields,
		})
	case errors.Is(err, models.ErrSourceUnavailable):
		h.log.Error("source of record query failed", "path", c.Request().URL.Path, "error", err)
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"error": "source of record unavailable",
		})
	default:
		h.log.Error("page request failed", "path", c.Request().URL.Path, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "internal error",
		})
	}
}
