package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/clinic-api/internal/services"
)

// UploadReport takes a multipart form with title, description and file.
func (h *Handler) UploadReport(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			sendError(c, http.StatusRequestEntityTooLarge, CodeValidationError, "File is too large", nil)
			return
		}
		sendValidationError(c, "file is required")
		return
	}
	f, err := fh.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer f.Close()

	r, err := h.Reports.Create(c.Request.Context(), a, services.NewReport{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Filename:    fh.Filename,
		Body:        f,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (h *Handler) ListReports(c *gin.Context) {
	reports, err := h.Reports.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reports)
}

func (h *Handler) DeleteReport(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	if err := h.Reports.Delete(c.Request.Context(), a, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Report deleted"})
}
