package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// CSVWriter writes report tables as CSV files under the reports directory.
type CSVWriter struct {
	reportsDir string
}

// NewCSVWriter creates a CSV writer targeting the given directory.
func NewCSVWriter(reportsDir string) *CSVWriter {
	return &CSVWriter{reportsDir: reportsDir}
}

// WriteTable writes one table as <name>.csv with a UTF-8 BOM so Excel
// opens it cleanly.
func (w *CSVWriter) WriteTable(t Table) error {
	path := filepath.Join(w.reportsDir, t.Name+".csv")

	slog.Info("writing report CSV",
		slog.String("path", path),
		slog.Int("rows", len(t.Rows)))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("write BOM: %w", err)
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(t.Headers); err != nil {
		return fmt.Errorf("write headers: %w", err)
	}
	for i, row := range t.Rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	return writer.Error()
}

// WriteAll writes every table as its own CSV file.
func (w *CSVWriter) WriteAll(tables []Table) error {
	for _, t := range tables {
		if err := w.WriteTable(t); err != nil {
			return err
		}
	}
	return nil
}
