package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staypulse/pkg/contracts/domain"
)

// fullReview builds a review with all six scores set to the same value.
func fullReview(listingID, hostID int64, score float64) domain.Review {
	return domain.Review{
		ListingID:     listingID,
		HostID:        hostID,
		Overall:       fp(score),
		Cleanliness:   fp(score),
		Location:      fp(score),
		Value:         fp(score),
		Accuracy:      fp(score),
		Communication: fp(score),
	}
}

// marketSnapshot is the shared two-city scenario used by the report tests.
// Istanbul and Paris both carry exchange rates; listing 5 has no city and
// listing 6 sits in an unrated city, so neither participates in USD
// aggregates.
func marketSnapshot() *domain.Snapshot {
	return &domain.Snapshot{
		Listings: []domain.Listing{
			{ID: 1, City: "Istanbul", PropertyType: "Entire home/apt", LocalPrice: 10, HostID: 1},
			{ID: 2, City: "Istanbul", PropertyType: "Private room", LocalPrice: 20, HostID: 2},
			{ID: 3, City: "Istanbul", PropertyType: "Entire home/apt", LocalPrice: 30, HostID: 1},
			{ID: 4, City: "Paris", PropertyType: "Entire home/apt", LocalPrice: 10, HostID: 3},
			{ID: 5, City: "", PropertyType: "Private room", LocalPrice: 50, HostID: 2},
			{ID: 6, City: "Oslo", PropertyType: "Entire home/apt", LocalPrice: 40, HostID: 1},
		},
		Hosts: []domain.Host{
			{ID: 1, ProfilePicture: true, IdentityVerified: true},
			{ID: 2, ProfilePicture: true, IdentityVerified: false},
			{ID: 3, ProfilePicture: false, IdentityVerified: false},
		},
		Reviews: []domain.Review{
			fullReview(1, 1, 9),
			fullReview(2, 2, 7),
			{ListingID: 3, HostID: 1, Overall: fp(8)}, // partial
			fullReview(4, 3, 5),
			fullReview(999, 1, 4), // unknown listing, dropped
			fullReview(5, 2, 6),
		},
		Rates: []domain.ExchangeRate{
			{City: "Istanbul", Rate: 1.0},
			{City: "Paris", Rate: 2.0},
		},
	}
}

func preparedMarket(t *testing.T) *Prepared {
	t.Helper()
	prep, err := Prepare(marketSnapshot(), testLogger())
	require.NoError(t, err)
	return prep
}

func TestCityPriceRanks(t *testing.T) {
	e := NewEngine(testLogger())
	ranks := e.CityPriceRanks(preparedMarket(t))

	// Istanbul [10, 20, 30] at rate 1 and Paris [10] at rate 2 both
	// average 20 USD, so the two cities tie at rank 1.
	require.Len(t, ranks, 2)
	assert.Equal(t, domain.CityPriceRank{Rank: 1, City: "Istanbul", AvgPriceUSD: 20}, ranks[0])
	assert.Equal(t, domain.CityPriceRank{Rank: 1, City: "Paris", AvgPriceUSD: 20}, ranks[1])
}

func TestCityPriceRanksDistinctAverages(t *testing.T) {
	snap := &domain.Snapshot{
		Listings: []domain.Listing{
			{ID: 1, City: "Athens", LocalPrice: 300},
			{ID: 2, City: "Berlin", LocalPrice: 100},
			{ID: 3, City: "Cairo", LocalPrice: 200},
		},
		Rates: []domain.ExchangeRate{
			{City: "Athens", Rate: 1}, {City: "Berlin", Rate: 1}, {City: "Cairo", Rate: 1},
		},
	}
	prep, err := Prepare(snap, testLogger())
	require.NoError(t, err)

	ranks := NewEngine(testLogger()).CityPriceRanks(prep)

	require.Len(t, ranks, 3)
	assert.Equal(t, "Berlin", ranks[0].City)
	assert.Equal(t, 1, ranks[0].Rank)
	assert.Equal(t, "Cairo", ranks[1].City)
	assert.Equal(t, 2, ranks[1].Rank)
	assert.Equal(t, "Athens", ranks[2].City)
	assert.Equal(t, 3, ranks[2].Rank)
}

func TestPropertyTypeRanks(t *testing.T) {
	e := NewEngine(testLogger())
	prep := preparedMarket(t)

	t.Run("top types by count descending", func(t *testing.T) {
		top := e.TopPropertyTypes(prep)

		require.Len(t, top, 3)
		assert.Equal(t, domain.PropertyTypeRank{
			City: "Istanbul", PropertyType: "Entire home/apt", Rank: 1, ListingCount: 2, AvgPriceUSD: 20,
		}, top[0])
		assert.Equal(t, domain.PropertyTypeRank{
			City: "Istanbul", PropertyType: "Private room", Rank: 2, ListingCount: 1, AvgPriceUSD: 20,
		}, top[1])
		assert.Equal(t, domain.PropertyTypeRank{
			City: "Paris", PropertyType: "Entire home/apt", Rank: 1, ListingCount: 1, AvgPriceUSD: 20,
		}, top[2])
	})

	t.Run("rarest types by count ascending", func(t *testing.T) {
		rare := e.RarestPropertyTypes(prep)

		require.Len(t, rare, 3)
		assert.Equal(t, "Private room", rare[0].PropertyType)
		assert.Equal(t, 1, rare[0].Rank)
		assert.Equal(t, "Entire home/apt", rare[1].PropertyType)
		assert.Equal(t, 2, rare[1].Rank)
		assert.Equal(t, "Paris", rare[2].City)
		assert.Equal(t, 1, rare[2].Rank)
	})

	t.Run("cutoff trims large partitions", func(t *testing.T) {
		listings := []domain.Listing{}
		for i := int64(0); i < 10; i++ {
			pt := "Type A"
			switch {
			case i >= 7:
				pt = "Type D"
			case i >= 5:
				pt = "Type C"
			case i >= 4:
				pt = "Type B"
			}
			listings = append(listings, domain.Listing{ID: i + 1, City: "Lima", PropertyType: pt, LocalPrice: 100})
		}
		prep, err := Prepare(&domain.Snapshot{
			Listings: listings,
			Rates:    []domain.ExchangeRate{{City: "Lima", Rate: 1}},
		}, testLogger())
		require.NoError(t, err)

		top := NewEngine(testLogger()).TopPropertyTypes(prep)
		require.Len(t, top, 3)
		assert.Equal(t, "Type A", top[0].PropertyType) // 4 listings
		assert.Equal(t, "Type D", top[1].PropertyType) // 3 listings
		assert.Equal(t, "Type C", top[2].PropertyType) // 2 listings

		rare := NewEngine(testLogger()).RarestPropertyTypes(prep)
		require.Len(t, rare, 2)
		assert.Equal(t, "Type B", rare[0].PropertyType)
		assert.Equal(t, "Type C", rare[1].PropertyType)
	})
}

func TestEntireVsRoomDelta(t *testing.T) {
	t.Run("room premium", func(t *testing.T) {
		snap := &domain.Snapshot{
			Listings: []domain.Listing{
				{ID: 1, City: "Lima", PropertyType: "Entire home/apt", LocalPrice: 100},
				{ID: 2, City: "Lima", PropertyType: "Private room", LocalPrice: 150},
				{ID: 3, City: "Lima", PropertyType: "Hotel", LocalPrice: 900}, // neither bucket
			},
			Rates: []domain.ExchangeRate{{City: "Lima", Rate: 1}},
		}
		prep, err := Prepare(snap, testLogger())
		require.NoError(t, err)

		delta := NewEngine(testLogger()).EntireVsRoomDelta(prep)

		assert.InDelta(t, 100.0, delta.AvgEntireUSD, 1e-9)
		assert.InDelta(t, 150.0, delta.AvgRoomUSD, 1e-9)
		assert.InDelta(t, 50.0, delta.DeltaPct, 1e-9)
	})

	t.Run("equal averages yield zero delta", func(t *testing.T) {
		delta := NewEngine(testLogger()).EntireVsRoomDelta(preparedMarket(t))
		assert.InDelta(t, 20.0, delta.AvgEntireUSD, 1e-9)
		assert.InDelta(t, 20.0, delta.AvgRoomUSD, 1e-9)
		assert.Zero(t, delta.DeltaPct)
	})

	t.Run("empty room bucket resolves to sentinel", func(t *testing.T) {
		snap := &domain.Snapshot{
			Listings: []domain.Listing{
				{ID: 1, City: "Lima", PropertyType: "Entire home/apt", LocalPrice: 100},
			},
			Rates: []domain.ExchangeRate{{City: "Lima", Rate: 1}},
		}
		prep, err := Prepare(snap, testLogger())
		require.NoError(t, err)

		delta := NewEngine(testLogger()).EntireVsRoomDelta(prep)

		assert.InDelta(t, 100.0, delta.AvgEntireUSD, 1e-9)
		assert.Zero(t, delta.AvgRoomUSD)
		assert.Zero(t, delta.DeltaPct)
		assert.Equal(t, 1, prep.Stats().EmptyPartitions)
	})
}

func TestPropertyCategoryClassifiers(t *testing.T) {
	assert.True(t, isEntireProperty("Entire home/apt"))
	assert.True(t, isEntireProperty("entire villa"))
	assert.False(t, isEntireProperty("Private room"))

	assert.True(t, isRoomProperty("Private room"))
	assert.True(t, isRoomProperty("Shared Room"))
	assert.True(t, isRoomProperty("Hotel room"))
	assert.False(t, isRoomProperty("Entire home/apt"))
}

func TestScoreComparison(t *testing.T) {
	e := NewEngine(testLogger())
	rows := e.ScoreComparison(preparedMarket(t))

	require.Len(t, rows, 2)

	category := rows[0]
	assert.Equal(t, "Entire home/apt", category.Category)
	// reviews 9 and 5 on category listings; the partial review on listing
	// 3 does not qualify
	assert.Equal(t, 2, category.ReviewCount)
	assert.InDelta(t, 7.0, category.Overall, 1e-9)
	assert.InDelta(t, 7.0, category.Communication, 1e-9)

	rest := rows[1]
	assert.Equal(t, "All Other", rest.Category)
	// reviews 7 and 6; the unrated listing still participates in
	// review-only aggregates
	assert.Equal(t, 2, rest.ReviewCount)
	assert.InDelta(t, 6.5, rest.Overall, 1e-9)
	assert.InDelta(t, 6.5, rest.Value, 1e-9)
}

func TestScoreComparisonCustomCategory(t *testing.T) {
	e := NewEngine(testLogger(), WithCompareCategory("Private room"))
	rows := e.ScoreComparison(preparedMarket(t))

	require.Len(t, rows, 2)
	assert.Equal(t, "Private room", rows[0].Category)
	assert.Equal(t, 2, rows[0].ReviewCount) // reviews 7 and 6
	assert.InDelta(t, 6.5, rows[0].Overall, 1e-9)
	assert.Equal(t, 2, rows[1].ReviewCount) // reviews 9 and 5
	assert.InDelta(t, 7.0, rows[1].Overall, 1e-9)
}

func TestPriceTierScoresByCity(t *testing.T) {
	e := NewEngine(testLogger())
	prep := preparedMarket(t)
	tiers := e.PriceTierScoresByCity(prep)

	require.Len(t, tiers, 2)

	istanbul := tiers[0]
	assert.Equal(t, "Istanbul", istanbul.City)
	assert.InDelta(t, 20.0, istanbul.AvgPriceUSD, 1e-9)
	// listing 2 (exactly at the average) and listing 3 land above
	assert.Equal(t, 2, istanbul.AboveListings)
	assert.Equal(t, 1, istanbul.BelowListings)
	// only the fully scored review on listing 2 qualifies above
	assert.Equal(t, 1, istanbul.AboveReviews)
	assert.Equal(t, 1, istanbul.BelowReviews)
	assert.InDelta(t, 7.0, istanbul.Above.Overall, 1e-9)
	assert.InDelta(t, 9.0, istanbul.Below.Overall, 1e-9)

	paris := tiers[1]
	assert.Equal(t, "Paris", paris.City)
	assert.InDelta(t, 20.0, paris.AvgPriceUSD, 1e-9)
	assert.Equal(t, 1, paris.AboveListings)
	assert.Equal(t, 0, paris.BelowListings)
	assert.Equal(t, 1, paris.AboveReviews)
	assert.Equal(t, 0, paris.BelowReviews)
	assert.InDelta(t, 5.0, paris.Above.Overall, 1e-9)
	// empty below bucket zero-fills and counts as a sentinel substitution
	assert.Zero(t, paris.Below.Overall)
	assert.GreaterOrEqual(t, prep.Stats().EmptyPartitions, 1)
}

// TestPriceTierBucketWithoutQualifyingReviews covers a bucket that holds
// listings but no fully scored review: its review count must be zero even
// though the listing count is not, so the presentation layer can apply the
// empty-aggregate sentinel.
func TestPriceTierBucketWithoutQualifyingReviews(t *testing.T) {
	snap := &domain.Snapshot{
		Listings: []domain.Listing{
			{ID: 1, City: "Lima", PropertyType: "Entire home/apt", LocalPrice: 100},
			{ID: 2, City: "Lima", PropertyType: "Entire home/apt", LocalPrice: 300},
		},
		Reviews: []domain.Review{
			fullReview(1, 0, 8),
			{ListingID: 2, Overall: fp(6)}, // partial, never qualifies
		},
		Rates: []domain.ExchangeRate{{City: "Lima", Rate: 1}},
	}
	prep, err := Prepare(snap, testLogger())
	require.NoError(t, err)

	tiers := NewEngine(testLogger()).PriceTierScoresByCity(prep)

	require.Len(t, tiers, 1)
	lima := tiers[0]
	assert.Equal(t, 1, lima.AboveListings)
	assert.Equal(t, 0, lima.AboveReviews)
	assert.Zero(t, lima.Above.Overall)
	assert.Equal(t, 1, lima.BelowListings)
	assert.Equal(t, 1, lima.BelowReviews)
	assert.InDelta(t, 8.0, lima.Below.Overall, 1e-9)
	// the reviewless bucket is tallied as an empty score aggregate
	assert.Equal(t, 1, prep.Stats().EmptyPartitions)
}

func TestMarketCompetitiveness(t *testing.T) {
	e := NewEngine(testLogger())
	rows := e.MarketCompetitiveness(preparedMarket(t))

	require.Len(t, rows, 2)
	// all three Istanbul listings carry at least one overall rating; the
	// partial review on listing 3 still counts for the single-metric
	// rating average
	assert.Equal(t, domain.CityCompetitiveness{
		City: "Istanbul", TotalListings: 3, AvgPriceUSD: 20, AvgRating: 8,
	}, rows[0])
	assert.Equal(t, domain.CityCompetitiveness{
		City: "Paris", TotalListings: 1, AvgPriceUSD: 20, AvgRating: 5,
	}, rows[1])
}

func TestMarketCompetitivenessExcludesUnreviewedListings(t *testing.T) {
	snap := &domain.Snapshot{
		Listings: []domain.Listing{
			{ID: 1, City: "Lima", LocalPrice: 100},
			{ID: 2, City: "Lima", LocalPrice: 900}, // never reviewed
		},
		Reviews: []domain.Review{{ListingID: 1, Overall: fp(8)}},
		Rates:   []domain.ExchangeRate{{City: "Lima", Rate: 1}},
	}
	prep, err := Prepare(snap, testLogger())
	require.NoError(t, err)

	rows := NewEngine(testLogger()).MarketCompetitiveness(prep)

	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].TotalListings)
	assert.InDelta(t, 100.0, rows[0].AvgPriceUSD, 1e-9)
}

func TestVerificationImpact(t *testing.T) {
	e := NewEngine(testLogger())
	rows := e.VerificationImpact(preparedMarket(t))

	require.Len(t, rows, 2)

	assert.Equal(t, domain.VerificationBoth, rows[0].Status)
	assert.Equal(t, 1, rows[0].ReviewCount) // host 1's fully scored review
	assert.InDelta(t, 9.0, rows[0].Overall, 1e-9)

	// hosts 2 and 3 each miss at least one verification clause and share
	// the negative bucket: reviews 7, 5 and 6
	assert.Equal(t, domain.VerificationNone, rows[1].Status)
	assert.Equal(t, 3, rows[1].ReviewCount)
	assert.InDelta(t, 6.0, rows[1].Overall, 1e-9)
	assert.InDelta(t, 6.0, rows[1].Cleanliness, 1e-9)
}

func TestRunAssemblesAllReports(t *testing.T) {
	prep := preparedMarket(t)
	report, err := NewEngine(testLogger()).Run(context.Background(), prep)
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.WithinDuration(t, time.Now().UTC(), report.GeneratedAt, time.Minute)
	assert.Len(t, report.CityPriceRanks, 2)
	assert.Len(t, report.TopPropertyTypes, 3)
	assert.Len(t, report.RarePropertyTypes, 3)
	assert.Len(t, report.ScoreComparison, 2)
	assert.Len(t, report.PriceTierScores, 2)
	assert.Len(t, report.Competitiveness, 2)
	assert.Len(t, report.VerificationImpact, 2)

	assert.Equal(t, 2, report.Stats.ListingsMissingRate)
	assert.Equal(t, 1, report.Stats.ReviewsUnknownListing)
	assert.Equal(t, 1, report.Stats.PartialScoreReviews)
	// Paris has no below-average listings
	assert.Equal(t, 1, report.Stats.EmptyPartitions)
}

// TestRunIdempotent runs the engine twice over the same prepared snapshot
// and requires identical output apart from the run identity.
func TestRunIdempotent(t *testing.T) {
	prep := preparedMarket(t)
	e := NewEngine(testLogger())

	first, err := e.Run(context.Background(), prep)
	require.NoError(t, err)
	second, err := e.Run(context.Background(), prep)
	require.NoError(t, err)

	assert.NotEqual(t, first.RunID, second.RunID)

	first.RunID, second.RunID = "", ""
	first.GeneratedAt, second.GeneratedAt = time.Time{}, time.Time{}
	assert.Equal(t, first, second)
}

func TestEngineOptions(t *testing.T) {
	e := NewEngine(testLogger(),
		WithNullPolicy(PropagateNull),
		WithCompareCategory("Hotel room"),
		WithCutoffs(5, 4),
	)
	assert.Equal(t, PropagateNull, e.policy)
	assert.Equal(t, "Hotel room", e.category)
	assert.Equal(t, 5, e.topN)
	assert.Equal(t, 4, e.bottomN)

	// non-positive cutoffs keep the defaults
	d := NewEngine(testLogger(), WithCutoffs(0, -1))
	assert.Equal(t, DefaultTopN, d.topN)
	assert.Equal(t, DefaultBottomN, d.bottomN)
}
