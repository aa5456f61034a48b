package exporter

import (
	"fmt"

	"staypulse/internal/analytics"
	"staypulse/pkg/contracts/domain"
)

// Table is a presentation-ready report: a name, a header row and string
// cells. All numeric formatting happens here, not in the core.
type Table struct {
	Name    string
	Title   string
	Headers []string
	Rows    [][]string
}

var scoreHeaders = []string{
	"AvgOverall", "AvgCleanliness", "AvgLocation", "AvgValue", "AvgAccuracy", "AvgCommunication",
}

// Tables projects a market report into its presentation tables. The
// policy controls how empty score aggregates render: under UnknownLabel a
// bucket with zero qualifying reviews shows the literal "Unknown" instead
// of zeros.
func Tables(r *domain.MarketReport, policy analytics.NullPolicy) []Table {
	return []Table{
		cityPriceTable(r.CityPriceRanks),
		propertyTypeTable("top_property_types", "Top Property Types", r.TopPropertyTypes),
		roomDeltaTable(r.RoomTypeDelta),
		propertyTypeTable("rare_property_types", "Rarest Property Types", r.RarePropertyTypes),
		scoreComparisonTable(r.ScoreComparison, policy),
		priceTierTable(r.PriceTierScores, policy),
		competitivenessTable(r.Competitiveness),
		verificationTable(r.VerificationImpact, policy),
	}
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func score(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// scoreCells renders the six score columns, substituting the Unknown
// label for empty buckets under the UnknownLabel policy.
func scoreCells(s domain.ScoreAverages, count int, policy analytics.NullPolicy) []string {
	if count == 0 && policy == analytics.UnknownLabel {
		cells := make([]string, 6)
		for i := range cells {
			cells[i] = analytics.UnknownKey
		}
		return cells
	}
	return []string{
		score(s.Overall), score(s.Cleanliness), score(s.Location),
		score(s.Value), score(s.Accuracy), score(s.Communication),
	}
}

func cityPriceTable(rows []domain.CityPriceRank) Table {
	t := Table{
		Name:    "city_price_rank",
		Title:   "City Price Rank",
		Headers: []string{"Rank", "City", "AvgPriceUSD"},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{fmt.Sprintf("%d", r.Rank), r.City, money(r.AvgPriceUSD)})
	}
	return t
}

func propertyTypeTable(name, title string, rows []domain.PropertyTypeRank) Table {
	t := Table{
		Name:    name,
		Title:   title,
		Headers: []string{"City", "PropertyType", "Rank", "ListingCount", "AvgPriceUSD"},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			r.City, r.PropertyType, fmt.Sprintf("%d", r.Rank),
			fmt.Sprintf("%d", r.ListingCount), money(r.AvgPriceUSD),
		})
	}
	return t
}

func roomDeltaTable(d domain.RoomTypeDelta) Table {
	return Table{
		Name:    "room_type_delta",
		Title:   "Entire vs Room Price Delta",
		Headers: []string{"AvgEntireUSD", "AvgRoomUSD", "DeltaPct"},
		Rows: [][]string{{
			money(d.AvgEntireUSD), money(d.AvgRoomUSD), fmt.Sprintf("%.2f", d.DeltaPct),
		}},
	}
}

func scoreComparisonTable(rows []domain.ScoreComparisonRow, policy analytics.NullPolicy) Table {
	t := Table{
		Name:    "score_comparison",
		Title:   "Score Comparison",
		Headers: append([]string{"Category", "ReviewCount"}, scoreHeaders...),
	}
	for _, r := range rows {
		cells := []string{r.Category, fmt.Sprintf("%d", r.ReviewCount)}
		t.Rows = append(t.Rows, append(cells, scoreCells(r.ScoreAverages, r.ReviewCount, policy)...))
	}
	return t
}

func priceTierTable(rows []domain.PriceTierScores, policy analytics.NullPolicy) Table {
	headers := []string{"City", "AvgPriceUSD", "AboveListings", "BelowListings"}
	for _, h := range scoreHeaders {
		headers = append(headers, "Above"+h)
	}
	for _, h := range scoreHeaders {
		headers = append(headers, "Below"+h)
	}
	t := Table{
		Name:    "price_tier_scores",
		Title:   "Price Tier Score Comparison",
		Headers: headers,
	}
	for _, r := range rows {
		cells := []string{
			r.City, money(r.AvgPriceUSD),
			fmt.Sprintf("%d", r.AboveListings), fmt.Sprintf("%d", r.BelowListings),
		}
		cells = append(cells, scoreCells(r.Above, r.AboveReviews, policy)...)
		cells = append(cells, scoreCells(r.Below, r.BelowReviews, policy)...)
		t.Rows = append(t.Rows, cells)
	}
	return t
}

func competitivenessTable(rows []domain.CityCompetitiveness) Table {
	t := Table{
		Name:    "market_competitiveness",
		Title:   "Market Competitiveness",
		Headers: []string{"City", "TotalListings", "AvgPriceUSD", "AvgRating"},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			r.City, fmt.Sprintf("%d", r.TotalListings), money(r.AvgPriceUSD), score(r.AvgRating),
		})
	}
	return t
}

func verificationTable(rows []domain.VerificationImpactRow, policy analytics.NullPolicy) Table {
	t := Table{
		Name:    "verification_impact",
		Title:   "Verification Impact",
		Headers: append([]string{"VerificationStatus", "ReviewCount"}, scoreHeaders...),
	}
	for _, r := range rows {
		cells := []string{r.Status, fmt.Sprintf("%d", r.ReviewCount)}
		t.Rows = append(t.Rows, append(cells, scoreCells(r.ScoreAverages, r.ReviewCount, policy)...))
	}
	return t
}
