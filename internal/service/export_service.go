package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/atelier-ops/workshop-api/internal/mirror"
	"github.com/atelier-ops/workshop-api/internal/repository"
	"github.com/atelier-ops/workshop-api/internal/schema"
	appErrors "github.com/atelier-ops/workshop-api/pkg/errors"
	"github.com/atelier-ops/workshop-api/pkg/export"
)

// ExportFormat selects the rendered file type.
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatXLSX ExportFormat = "xlsx"
)

// ExportService renders mirrored tables as downloadable files, using the
// same column ordering and value formatting the sheet shows.
type ExportService struct {
	rows   *repository.RowRepository
	csv    *export.CSVExporter
	excel  *export.ExcelExporter
	logger *zap.Logger
}

// NewExportService constructs the service.
func NewExportService(rows *repository.RowRepository, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		rows:   rows,
		csv:    export.NewCSVExporter(),
		excel:  export.NewExcelExporter(),
		logger: logger,
	}
}

// Export renders one table. Returns the file bytes and its content type.
func (s *ExportService) Export(ctx context.Context, tableName string, format ExportFormat) ([]byte, string, error) {
	table, ok := schema.ByName(tableName)
	if !ok {
		return nil, "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown table %q", tableName))
	}
	storeRows, err := s.rows.ListRows(ctx, table)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load table")
	}

	dataset := export.Dataset{Headers: table.Headers()}
	for _, row := range storeRows {
		rendered := make(map[string]string, len(table.Columns))
		for _, col := range table.Columns {
			rendered[col.Label] = mirror.FormatValue(col, row[col.Name])
		}
		dataset.Rows = append(dataset.Rows, rendered)
	}

	switch format {
	case FormatCSV:
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render csv")
		}
		return payload, "text/csv", nil
	case FormatXLSX:
		payload, err := s.excel.Render(dataset, table.Sheet)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render xlsx")
		}
		return payload, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown format %q", format))
	}
}
