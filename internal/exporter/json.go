package exporter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"staypulse/pkg/contracts/domain"
)

// WriteJSON writes the full report bundle as indented JSON, for
// consumption by web frontends or downstream tooling.
func WriteJSON(reportsDir, filename string, report *domain.MarketReport) error {
	path := filepath.Join(reportsDir, filename)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}
