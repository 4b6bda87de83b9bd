package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/atelier-ops/workshop-api/internal/service"
	appErrors "github.com/atelier-ops/workshop-api/pkg/errors"
	"github.com/atelier-ops/workshop-api/pkg/response"
)

type exporter interface {
	Export(ctx context.Context, tableName string, format service.ExportFormat) ([]byte, string, error)
}

// ExportHandler serves table downloads for managers.
type ExportHandler struct {
	exports exporter
	enabled bool
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(exports exporter, enabled bool) *ExportHandler {
	return &ExportHandler{exports: exports, enabled: enabled}
}

// Export godoc
// @Summary Download a table as CSV or XLSX
// @Tags Exports
// @Produce application/octet-stream
// @Param table path string true "Table name"
// @Param format query string false "csv or xlsx" default(csv)
// @Success 200 {file} binary
// @Router /exports/{table} [get]
func (h *ExportHandler) Export(c *gin.Context) {
	if !h.enabled {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "exports are disabled"))
		return
	}
	table := c.Param("table")
	format := service.ExportFormat(strings.ToLower(c.DefaultQuery("format", "csv")))
	data, contentType, err := h.exports.Export(c.Request.Context(), table, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", table+"."+string(format)))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, contentType, data)
}
