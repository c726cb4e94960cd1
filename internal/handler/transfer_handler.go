package handler

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rosterly/rosterly-backend/internal/response"
	"github.com/rosterly/rosterly-backend/internal/service"
)

// TransferHandler handles collection import and export.
type TransferHandler struct {
	transferService *service.TransferService
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(transferService *service.TransferService) *TransferHandler {
	return &TransferHandler{transferService: transferService}
}

// ExportStudents godoc
// GET /api/v1/admin/export/:format
// Streams the whole collection as a file download. Formats: csv, json, xlsx.
func (h *TransferHandler) ExportStudents(c *gin.Context) {
	format := strings.ToLower(c.Param("format"))
	stamp := time.Now().UTC().Format("20060102")
	filename := fmt.Sprintf("students_export_%s.%s", stamp, format)

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	var err error
	switch format {
	case "csv":
		c.Header("Content-Type", "text/csv; charset=utf-8")
		err = h.transferService.ExportCSV(c.Writer)
	case "json":
		c.Header("Content-Type", "application/json")
		err = h.transferService.ExportJSON(c.Writer)
	case "xlsx":
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		err = h.transferService.ExportXLSX(c.Writer)
	default:
		response.Fail(c, http.StatusBadRequest, response.ErrUnsupportedFile)
		return
	}

	if err != nil {
		// Headers may already be out; nothing sensible left to send.
		c.Abort()
	}
}

// ImportStudents godoc
// POST /api/v1/admin/import
// Accepts a multipart upload (field "file") in CSV, JSON, or XLSX and
// bulk-imports it with best-effort semantics. The response reports each
// rejected row.
func (h *TransferHandler) ImportStudents(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	defer file.Close()

	ctx := c.Request.Context()

	switch strings.ToLower(filepath.Ext(fileHeader.Filename)) {
	case ".csv":
		report, err := h.transferService.ImportCSV(ctx, file)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, response.ErrMalformedFile)
			return
		}
		response.Success(c, http.StatusOK, gin.H{"report": report})
	case ".json":
		report, err := h.transferService.ImportJSON(ctx, file)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, response.ErrMalformedFile)
			return
		}
		response.Success(c, http.StatusOK, gin.H{"report": report})
	case ".xlsx":
		report, err := h.transferService.ImportXLSX(ctx, file)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, response.ErrMalformedFile)
			return
		}
		response.Success(c, http.StatusOK, gin.H{"report": report})
	default:
		response.Fail(c, http.StatusBadRequest, response.ErrUnsupportedFile)
	}
}
