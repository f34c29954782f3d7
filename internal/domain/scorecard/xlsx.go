package scorecard

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain"
)

const sheetName = "Scorecards"

// WriteXLSX renders rows as a workbook with a styled header
func WriteXLSX(w io.Writer, rows []domain.ScorecardRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}
	scoreStyle, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return err
	}

	header := headerValues()
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(Header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetName, "A1", last, headerStyle); err != nil {
		return err
	}

	for i, row := range toValues(rows) {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if len(rows) > 0 {
		if err := f.SetCellStyle(sheetName, "E2", fmt.Sprintf("E%d", len(rows)+1), scoreStyle); err != nil {
			return err
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 38)
	_ = f.SetColWidth(sheetName, "B", "C", 28)
	_ = f.SetColWidth(sheetName, "D", "E", 10)
	_ = f.SetColWidth(sheetName, "F", "G", 24)
	_ = f.SetColWidth(sheetName, "H", "H", 22)

	if err := f.SetPanes(sheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return err
	}

	return f.Write(w)
}
