package handlers

import (
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/pagehub/contentd/cmd/contentd/models"
	"github.com/pagehub/contentd/cmd/contentd/service"
	"github.com/pagehub/contentd/common/logger"
)

// UploadHandler attaches uploaded media files to content records
type UploadHandler struct {
	uploads *service.UploadService
	log     *logger.Logger
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(uploads *service.UploadService, log *logger.Logger) *UploadHandler {
	return &UploadHandler{
		uploads: uploads,
		log:     log,
	}
}

// Attach stores an uploaded file for a content record
// POST /api/content/:kind/:id/file
func (h *UploadHandler) Attach(c echo.Context) error {
	kind, err := models.ParseContentKind(c.Param("kind"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
	}

	recordID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"detail": "not found",
		})
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "missing file field",
		})
	}

	src, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "unreadable upload",
		})
	}
	defer src.Close()

	// Spool to a temp file so the dedup engine gets a seekable source
	tmp, err := os.CreateTemp("", "upload-*")
	if err != nil {
		h.log.Error("failed to create upload temp file", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "internal error",
		})
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		h.log.Error("failed to spool upload", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "internal error",
		})
	}
	tmp.Close()

	path, deduped, err := h.uploads.AttachFile(
		c.Request().Context(), kind, recordID, tmpPath, fileHeader.Filename,
	)
	if err != nil {
		os.Remove(tmpPath)
		h.log.Error("failed to attach upload",
			"kind", kind, "record_id", recordID, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to store upload",
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"path":         path,
		"deduplicated": deduped,
	})
}

// AttachURL points a content record at a remote file
// POST /api/content/:kind/:id/url
func (h *UploadHandler) AttachURL(c echo.Context) error {
	kind, err := models.ParseContentKind(c.Param("kind"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
	}

	recordID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"detail": "not found",
		})
	}

	var body struct {
		URL string `json:"url"`
	}
	if err := c.Bind(&body); err != nil || body.URL == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "missing url",
		})
	}

	if err := h.uploads.AttachURL(c.Request().Context(), kind, recordID, body.URL); err != nil {
		h.log.Error("failed to attach url",
			"kind", kind, "record_id", recordID, "error", err)
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"url": body.URL,
	})
}
