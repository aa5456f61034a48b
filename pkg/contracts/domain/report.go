package domain

import "time"

// ScoreAverages holds the mean of each of the six review score dimensions
// for one comparison bucket.
type ScoreAverages struct {
	Overall       float64 `json:"avg_overall"`
	Cleanliness   float64 `json:"avg_cleanliness"`
	Location      float64 `json:"avg_location"`
	Value         float64 `json:"avg_value"`
	Accuracy      float64 `json:"avg_accuracy"`
	Communication float64 `json:"avg_communication"`
}

// CityPriceRank is one row of the city price ranking report. Rank is a
// dense rank ascending by average USD price: equal averages share a rank
// and the next distinct average advances the rank by exactly one.
type CityPriceRank struct {
	Rank        int     `json:"rank"`
	City        string  `json:"city"`
	AvgPriceUSD float64 `json:"average_price_usd"`
}

// PropertyTypeRank is one row of the top-N / bottom-N property type
// reports. Rank is a row-number within the city partition, ties broken by
// property type name ascending so results are reproducible across runs.
type PropertyTypeRank struct {
	City         string  `json:"city"`
	PropertyType string  `json:"property_type"`
	Rank         int     `json:"rank"`
	ListingCount int     `json:"listing_count"`
	AvgPriceUSD  float64 `json:"average_price_usd"`
}

// RoomTypeDelta is the entire-property vs room price comparison. DeltaPct
// is (avg(room) - avg(entire)) / avg(entire) * 100.
type RoomTypeDelta struct {
	AvgEntireUSD float64 `json:"avg_entire_usd"`
	AvgRoomUSD   float64 `json:"avg_room_usd"`
	DeltaPct     float64 `json:"delta_pct"`
}

// ScoreComparisonRow is one of exactly two rows comparing a fixed property
// category against the complement set of all other listings.
type ScoreComparisonRow struct {
	Category    string `json:"category_label"`
	ReviewCount int    `json:"review_count"`
	ScoreAverages
}

// PriceTierScores compares review scores between listings priced at or
// above their city's average and those below it. The two buckets are
// complete and disjoint within the city. AboveReviews and BelowReviews
// count the fully scored reviews backing each bucket's score columns; a
// bucket can hold listings yet zero qualifying reviews, which makes its
// score aggregate empty.
type PriceTierScores struct {
	City          string        `json:"city"`
	AvgPriceUSD   float64       `json:"average_price_usd"`
	AboveListings int           `json:"above_listings"`
	BelowListings int           `json:"below_listings"`
	AboveReviews  int           `json:"above_reviews"`
	BelowReviews  int           `json:"below_reviews"`
	Above         ScoreAverages `json:"above"`
	Below         ScoreAverages `json:"below"`
}

// CityCompetitiveness is one row of the market competitiveness report,
// restricted to listings with at least one non-null overall rating.
type CityCompetitiveness struct {
	City          string  `json:"city"`
	TotalListings int     `json:"total_listings"`
	AvgPriceUSD   float64 `json:"average_price_usd"`
	AvgRating     float64 `json:"average_rating"`
}

// VerificationImpactRow is one of exactly two rows comparing review scores
// by host verification status. A host missing either the profile picture
// or identity verification falls into the single "Not Verified" bucket.
type VerificationImpactRow struct {
	Status      string `json:"verification_status"`
	ReviewCount int    `json:"review_count"`
	ScoreAverages
}

// Verification status labels for the verification impact report.
const (
	VerificationBoth = "Both Verified"
	VerificationNone = "Not Verified"
)

// RunStats counts the non-fatal data conditions encountered during a run.
// Nothing here aborts the pipeline; affected rows are excluded or resolved
// to sentinel values and the counts are logged by the caller.
type RunStats struct {
	ListingsMissingRate   int `json:"listings_missing_rate"`
	ReviewsUnknownListing int `json:"reviews_unknown_listing"`
	ReviewsUnknownHost    int `json:"reviews_unknown_host"`
	ListingsUnknownHost   int `json:"listings_unknown_host"`
	PartialScoreReviews   int `json:"partial_score_reviews"`
	EmptyPartitions       int `json:"empty_partitions"`
}

// MarketReport bundles the output of one full analysis run.
type MarketReport struct {
	RunID              string                  `json:"run_id"`
	GeneratedAt        time.Time               `json:"generated_at"`
	CityPriceRanks     []CityPriceRank         `json:"city_price_ranks"`
	TopPropertyTypes   []PropertyTypeRank      `json:"top_property_types"`
	RoomTypeDelta      RoomTypeDelta           `json:"room_type_delta"`
	RarePropertyTypes  []PropertyTypeRank      `json:"rare_property_types"`
	ScoreComparison    []ScoreComparisonRow    `json:"score_comparison"`
	PriceTierScores    []PriceTierScores       `json:"price_tier_scores"`
	Competitiveness    []CityCompetitiveness   `json:"market_competitiveness"`
	VerificationImpact []VerificationImpactRow `json:"verification_impact"`
	Stats              RunStats                `json:"stats"`
}
