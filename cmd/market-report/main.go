package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"staypulse/internal/analytics"
	"staypulse/internal/config"
	"staypulse/internal/dataset"
	"staypulse/internal/exporter"
	"staypulse/internal/infrastructure"
	"staypulse/internal/services"
)

func main() {
	dataDir := flag.String("data", "", "directory with the snapshot CSVs (defaults to configured data dir)")
	outDir := flag.String("out", "", "output directory for reports (defaults to configured reports dir)")
	workbook := flag.String("workbook", "market_report.xlsx", "Excel workbook file name")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, err := infrastructure.NewLogger(cfg.Logging)
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	if *dataDir == "" {
		*dataDir = cfg.Paths.DataDir
	}
	if *outDir == "" {
		*outDir = cfg.Paths.ReportsDir
	}

	snap, err := dataset.LoadSnapshot(*dataDir)
	if err != nil {
		logger.Error("Failed to load snapshot", "error", err, "dir", *dataDir)
		os.Exit(1)
	}

	prep, err := analytics.Prepare(snap, logger)
	if err != nil {
		logger.Error("Snapshot failed structural validation", "error", err)
		os.Exit(1)
	}

	policy := services.ParseNullPolicy(cfg.Analytics.NullPolicy)
	engine := analytics.NewEngine(logger,
		analytics.WithNullPolicy(policy),
		analytics.WithCompareCategory(cfg.Analytics.CompareCategory),
		analytics.WithCutoffs(cfg.Analytics.TopN, cfg.Analytics.BottomN),
	)

	report, err := engine.Run(context.Background(), prep)
	if err != nil {
		logger.Error("Report run failed", "error", err)
		os.Exit(1)
	}

	tables := exporter.Tables(report, policy)

	csvWriter := exporter.NewCSVWriter(*outDir)
	if err := csvWriter.WriteAll(tables); err != nil {
		logger.Error("Failed to write CSV reports", "error", err)
		os.Exit(1)
	}

	wb := exporter.NewWorkbookWriter(*outDir)
	if err := wb.Write(*workbook, tables); err != nil {
		logger.Error("Failed to write workbook", "error", err)
		os.Exit(1)
	}

	if err := exporter.WriteJSON(*outDir, "market_report.json", report); err != nil {
		logger.Error("Failed to write JSON bundle", "error", err)
		os.Exit(1)
	}

	logger.Info("Market report complete",
		"run_id", report.RunID,
		"output_dir", *outDir,
		"cities_ranked", len(report.CityPriceRanks),
		"listings_missing_rate", report.Stats.ListingsMissingRate,
	)
}
