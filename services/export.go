package services

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/soilq/soilq-api/models"
)

// ExportSheet is the worksheet name used for soil history exports
const ExportSheet = "Soil Analyses"

var exportHeader = []any{
	"Date", "Location", "Nitrogen (mg/kg)", "Phosphorus (mg/kg)", "Potassium (mg/kg)",
	"pH", "Moisture (%)", "Status", "Recommendations", "Suggested Crops", "Notes",
}

// ExportAnalyses writes analyses as an xlsx workbook to w, one row each
func ExportAnalyses(w io.Writer, analyses []models.SoilAnalysis) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ExportSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetSheetRow(ExportSheet, "A1", &exportHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetRowStyle(ExportSheet, 1, 1, bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, a := range analyses {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			a.Date.Format("2006-01-02 15:04"),
			a.Location,
			a.Nitrogen,
			a.Phosphorus,
			a.Potassium,
			a.PH,
			a.Moisture,
			string(a.Status),
			strings.Join(a.Recommendations, "; "),
			strings.Join(a.CropSuggestions, ", "),
			a.Notes,
		}
		if err := f.SetSheetRow(ExportSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(ExportSheet, "I", "J", 60); err != nil {
		return err
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
