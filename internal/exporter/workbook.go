package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// WorkbookWriter writes all report tables into a single Excel workbook,
// one sheet per report.
type WorkbookWriter struct {
	reportsDir string
}

// NewWorkbookWriter creates a workbook writer targeting the given directory.
func NewWorkbookWriter(reportsDir string) *WorkbookWriter {
	return &WorkbookWriter{reportsDir: reportsDir}
}

// Write creates <filename> with one sheet per table. The sheet name is the
// table title, truncated to Excel's 31-character limit.
func (w *WorkbookWriter) Write(filename string, tables []Table) error {
	path := filepath.Join(w.reportsDir, filename)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, t := range tables {
		sheet := sheetName(t.Title)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				return fmt.Errorf("create sheet %s: %w", sheet, err)
			}
		}

		if err := writeSheet(f, sheet, t); err != nil {
			return fmt.Errorf("write sheet %s: %w", sheet, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}

	slog.Info("wrote report workbook",
		slog.String("path", path),
		slog.Int("sheets", len(tables)))
	return nil
}

// writeSheet writes the header row and data rows of one table.
func writeSheet(f *excelize.File, sheet string, t Table) error {
	header := make([]interface{}, len(t.Headers))
	for i, h := range t.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i, row := range t.Rows {
		cells := make([]interface{}, len(row))
		for j, c := range row {
			cells[j] = c
		}
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, axis, &cells); err != nil {
			return err
		}
	}
	return nil
}

// sheetName truncates a title to Excel's sheet name limit.
func sheetName(title string) string {
	const maxLen = 31
	if len(title) > maxLen {
		return title[:maxLen]
	}
	return title
}
