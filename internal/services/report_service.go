// Package services bridges the HTTP transport and the analytics core.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"staypulse/internal/analytics"
	"staypulse/internal/config"
	"staypulse/pkg/contracts/domain"
)

// ReportService owns the prepared snapshot and the report engine, and
// memoizes the computed report: the snapshot is immutable for the process
// lifetime, so every run over it yields the same rows.
type ReportService struct {
	engine *analytics.Engine
	prep   *analytics.Prepared
	logger *slog.Logger

	mu     sync.Mutex
	cached *domain.MarketReport
}

// NewReportService validates the snapshot and builds the engine from
// configuration. A structurally invalid snapshot fails here, before the
// service is ever exposed.
func NewReportService(snap *domain.Snapshot, cfg config.AnalyticsConfig, logger *slog.Logger) (*ReportService, error) {
	if logger == nil {
		logger = slog.Default()
	}

	prep, err := analytics.Prepare(snap, logger)
	if err != nil {
		return nil, fmt.Errorf("prepare snapshot: %w", err)
	}

	engine := analytics.NewEngine(logger,
		analytics.WithNullPolicy(ParseNullPolicy(cfg.NullPolicy)),
		analytics.WithCompareCategory(cfg.CompareCategory),
		analytics.WithCutoffs(cfg.TopN, cfg.BottomN),
	)

	return &ReportService{
		engine: engine,
		prep:   prep,
		logger: logger,
	}, nil
}

// ParseNullPolicy maps the configuration string to the engine policy.
func ParseNullPolicy(s string) analytics.NullPolicy {
	switch s {
	case "unknown_label":
		return analytics.UnknownLabel
	case "propagate_null":
		return analytics.PropagateNull
	default:
		return analytics.ZeroFill
	}
}

// Report returns the full report bundle, computing it on first use.
func (s *ReportService) Report(ctx context.Context) (*domain.MarketReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil {
		return s.cached, nil
	}

	report, err := s.engine.Run(ctx, s.prep)
	if err != nil {
		return nil, fmt.Errorf("run report engine: %w", err)
	}
	s.cached = report
	return report, nil
}

// CityPriceRanks returns the city price ranking report.
func (s *ReportService) CityPriceRanks(ctx context.Context) ([]domain.CityPriceRank, error) {
	report, err := s.Report(ctx)
	if err != nil {
		return nil, err
	}
	return report.CityPriceRanks, nil
}

// TopPropertyTypes returns the most common property types per city.
func (s *ReportService) TopPropertyTypes(ctx context.Context) ([]domain.PropertyTypeRank, error) {
	report, err := s.Report(ctx)
	if err != nil {
		return nil, err
	}
	return report.TopPropertyTypes, nil
}

// RarestPropertyTypes returns the rarest property types per city.
func (s *ReportService) RarestPropertyTypes(ctx context.Context) ([]domain.PropertyTypeRank, error) {
	report, err := s.Report(ctx)
	if err != nil {
		return nil, err
	}
	return report.RarePropertyTypes, nil
}

// RoomTypeDelta returns the entire-property vs room price delta.
func (s *ReportService) RoomTypeDelta(ctx context.Context) (domain.RoomTypeDelta, error) {
	report, err := s.Report(ctx)
	if err != nil {
		return domain.RoomTypeDelta{}, err
	}
	return report.RoomTypeDelta, nil
}

// ScoreComparison returns the fixed-category score comparison.
func (s *ReportService) ScoreComparison(ctx context.Context) ([]domain.ScoreComparisonRow, error) {
	report, err := s.Report(ctx)
	if err != nil {
		return nil, err
	}
	return report.ScoreComparison, nil
}

// PriceTierScores returns the per-city price tier score comparison.
func (s *ReportService) PriceTierScores(ctx context.Context) ([]domain.PriceTierScores, error) {
	report, err := s.Report(ctx)
	if err != nil {
		return nil, err
	}
	return report.PriceTierScores, nil
}

// Competitiveness returns the market competitiveness report.
func (s *ReportService) Competitiveness(ctx context.Context) ([]domain.CityCompetitiveness, error) {
	report, err := s.Report(ctx)
	if err != nil {
		return nil, err
	}
	return report.Competitiveness, nil
}

// VerificationImpact returns the host verification score comparison.
func (s *ReportService) VerificationImpact(ctx context.Context) ([]domain.VerificationImpactRow, error) {
	report, err := s.Report(ctx)
	if err != nil {
		return nil, err
	}
	return report.VerificationImpact, nil
}
