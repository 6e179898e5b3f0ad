package httpapi

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"xfinance-dashboard/internal/alerts"
	"xfinance-dashboard/internal/grid"
)

const exportSheet = "Inspeções"

// alertFills cell fill per alert level; levels without an entry stay unstyled.
var alertFills = map[alerts.Level]string{
	alerts.LevelWarning: "#FEF3C7",
	alerts.LevelDanger:  "#FEE2E2",
	alerts.LevelSuccess: "#D1FAE5",
}

// GenerateGridExport one header row, then one row per grid row with the status label last.
func GenerateGridExport(rows []grid.Row) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	levelStyles := make(map[alerts.Level]int, len(alertFills))
	for level, color := range alertFills {
		id, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create %s style: %w", level, err)
		}
		levelStyles[level] = id
	}

	columns := grid.Columns()
	headers := make([]string, 0, len(columns)+1)
	for _, c := range columns {
		headers = append(headers, c.Header)
	}
	headers = append(headers, "Status")

	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(exportSheet, cell, h); err != nil {
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(exportSheet, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}
	}

	for r, row := range rows {
		for i, c := range columns {
			cell, err := excelize.CoordinatesToCellName(i+1, r+2)
			if err != nil {
				return nil, fmt.Errorf("failed to convert coordinates: %w", err)
			}
			rendered := row.Cell(c.ID)
			if err := f.SetCellValue(exportSheet, cell, rendered.Value); err != nil {
				return nil, fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
			if style, ok := levelStyles[rendered.Alert]; ok {
				if err := f.SetCellStyle(exportSheet, cell, cell, style); err != nil {
					return nil, fmt.Errorf("failed to set cell style %s: %w", cell, err)
				}
			}
		}
		cell, _ := excelize.CoordinatesToCellName(len(columns)+1, r+2)
		if err := f.SetCellValue(exportSheet, cell, row.Status.Label()); err != nil {
			return nil, fmt.Errorf("failed to set status cell %s: %w", cell, err)
		}
	}

	for i := range headers {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(exportSheet, col, col, 16); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
