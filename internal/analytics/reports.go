package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"staypulse/pkg/contracts/domain"
)

// Default report parameters.
const (
	DefaultTopN            = 3
	DefaultBottomN         = 2
	DefaultCompareCategory = "Entire home/apt"
)

// Engine assembles the fixed report shapes from the aggregation, ranking
// and tier components. Each report is a pure projection of the prepared
// snapshot; the engine holds no state between runs.
type Engine struct {
	logger   *slog.Logger
	policy   NullPolicy
	category string
	topN     int
	bottomN  int
}

// Option configures an Engine.
type Option func(*Engine)

// WithNullPolicy sets the sentinel policy for empty aggregates.
func WithNullPolicy(p NullPolicy) Option {
	return func(e *Engine) { e.policy = p }
}

// WithCompareCategory sets the fixed property category for the score
// comparison report.
func WithCompareCategory(c string) Option {
	return func(e *Engine) { e.category = c }
}

// WithCutoffs overrides the top-N and bottom-N cutoffs for the property
// type ranking reports.
func WithCutoffs(topN, bottomN int) Option {
	return func(e *Engine) {
		if topN > 0 {
			e.topN = topN
		}
		if bottomN > 0 {
			e.bottomN = bottomN
		}
	}
}

// NewEngine creates a report engine with the given options.
func NewEngine(logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		logger:   logger,
		policy:   ZeroFill,
		category: DefaultCompareCategory,
		topN:     DefaultTopN,
		bottomN:  DefaultBottomN,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run computes all reports over the prepared snapshot. The reports are
// mutually independent and read from the same immutable view, so they run
// in parallel. Running twice on the same snapshot yields identical output
// apart from the run ID and timestamp.
func (e *Engine) Run(ctx context.Context, prep *Prepared) (*domain.MarketReport, error) {
	start := time.Now()
	report := &domain.MarketReport{
		RunID:       uuid.NewString(),
		GeneratedAt: start.UTC(),
	}

	e.logger.InfoContext(ctx, "starting market report run",
		slog.String("run_id", report.RunID),
		slog.String("null_policy", e.policy.String()),
		slog.String("compare_category", e.category),
	)

	emptyBefore := prep.emptyPartitions.Load()

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error { report.CityPriceRanks = e.CityPriceRanks(prep); return nil })
	g.Go(func() error { report.TopPropertyTypes = e.TopPropertyTypes(prep); return nil })
	g.Go(func() error { report.RoomTypeDelta = e.EntireVsRoomDelta(prep); return nil })
	g.Go(func() error { report.RarePropertyTypes = e.RarestPropertyTypes(prep); return nil })
	g.Go(func() error { report.ScoreComparison = e.ScoreComparison(prep); return nil })
	g.Go(func() error { report.PriceTierScores = e.PriceTierScoresByCity(prep); return nil })
	g.Go(func() error { report.Competitiveness = e.MarketCompetitiveness(prep); return nil })
	g.Go(func() error { report.VerificationImpact = e.VerificationImpact(prep); return nil })

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("compute reports: %w", err)
	}
	report.Stats = prep.stats
	report.Stats.EmptyPartitions = int(prep.emptyPartitions.Load() - emptyBefore)

	e.logger.InfoContext(ctx, "market report run completed",
		slog.String("run_id", report.RunID),
		slog.Duration("duration", time.Since(start)),
		slog.Int("cities_ranked", len(report.CityPriceRanks)),
		slog.Int("empty_partitions", report.Stats.EmptyPartitions),
	)

	return report, nil
}

// CityPriceRanks ranks cities by average USD listing price, cheapest
// first, with a dense rank: cities with equal averages share a rank.
// Listings in cities without an exchange rate do not participate.
func (e *Engine) CityPriceRanks(prep *Prepared) []domain.CityPriceRank {
	byCity := GroupBy(prep.ratedListings(), func(l domain.Listing) string {
		return NormalizeKey(l.City)
	})

	type cityAvg struct {
		city string
		avg  float64
	}
	rows := make([]cityAvg, 0, len(byCity))
	for city, listings := range byCity {
		var acc meanAcc
		for _, l := range listings {
			acc.Add(prep.mustUSD(l))
		}
		avg, _ := acc.Mean(e.policy)
		rows = append(rows, cityAvg{city: city, avg: avg})
	}

	ranked := DenseRank(rows,
		func(r cityAvg) float64 { return r.avg },
		Ascending,
		func(a, b cityAvg) bool { return a.city < b.city },
	)

	out := make([]domain.CityPriceRank, len(ranked))
	for i, r := range ranked {
		out[i] = domain.CityPriceRank{Rank: r.Rank, City: r.Row.city, AvgPriceUSD: r.Row.avg}
	}
	return out
}

// TopPropertyTypes returns the top-N most common property types per city
// by listing count, with average USD price per type.
func (e *Engine) TopPropertyTypes(prep *Prepared) []domain.PropertyTypeRank {
	return e.propertyTypeRanks(prep, Descending, e.topN)
}

// RarestPropertyTypes returns the bottom-N rarest property types per city
// by listing count, with average USD price per type.
func (e *Engine) RarestPropertyTypes(prep *Prepared) []domain.PropertyTypeRank {
	return e.propertyTypeRanks(prep, Ascending, e.bottomN)
}

// propertyTypeRanks is the shared city × property-type ranking. The two
// public reports are the same declarative spec with the direction flipped.
func (e *Engine) propertyTypeRanks(prep *Prepared, dir Direction, limit int) []domain.PropertyTypeRank {
	groups := GroupBy(prep.ratedListings(), func(l domain.Listing) CityType {
		return CityType{City: NormalizeKey(l.City), PropertyType: NormalizeKey(l.PropertyType)}
	})

	type typeAgg struct {
		key   CityType
		count int
		avg   float64
	}
	rows := make([]typeAgg, 0, len(groups))
	for key, listings := range groups {
		var acc meanAcc
		for _, l := range listings {
			acc.Add(prep.mustUSD(l))
		}
		avg, _ := acc.Mean(e.policy)
		rows = append(rows, typeAgg{key: key, count: len(listings), avg: avg})
	}

	ranked := RowNumber(rows, RankSpec[typeAgg]{
		Partition: func(r typeAgg) string { return r.key.City },
		Metric:    func(r typeAgg) float64 { return float64(r.count) },
		Direction: dir,
		TieBreak:  func(a, b typeAgg) bool { return a.key.PropertyType < b.key.PropertyType },
		Limit:     limit,
	})

	out := make([]domain.PropertyTypeRank, len(ranked))
	for i, r := range ranked {
		out[i] = domain.PropertyTypeRank{
			City:         r.Row.key.City,
			PropertyType: r.Row.key.PropertyType,
			Rank:         r.Rank,
			ListingCount: r.Row.count,
			AvgPriceUSD:  r.Row.avg,
		}
	}
	return out
}

// EntireVsRoomDelta compares the average USD price of entire-property
// listings against room listings as a single percentage:
// (avg(room) - avg(entire)) / avg(entire) * 100. Property types outside
// either category are ignored by this report.
func (e *Engine) EntireVsRoomDelta(prep *Prepared) domain.RoomTypeDelta {
	var entire, room meanAcc
	for _, l := range prep.ratedListings() {
		usd := prep.mustUSD(l)
		switch {
		case isEntireProperty(l.PropertyType):
			entire.Add(usd)
		case isRoomProperty(l.PropertyType):
			room.Add(usd)
		}
	}

	avgEntire, okEntire := entire.Mean(e.policy)
	avgRoom, okRoom := room.Mean(e.policy)
	if entire.Count() == 0 || room.Count() == 0 {
		prep.noteEmptyPartition()
	}

	delta := 0.0
	if okEntire && okRoom && avgEntire != 0 {
		delta = (avgRoom - avgEntire) / avgEntire * 100
	}
	return domain.RoomTypeDelta{AvgEntireUSD: avgEntire, AvgRoomUSD: avgRoom, DeltaPct: delta}
}

func isEntireProperty(propertyType string) bool {
	return strings.HasPrefix(strings.ToLower(propertyType), "entire")
}

func isRoomProperty(propertyType string) bool {
	return strings.Contains(strings.ToLower(propertyType), "room")
}

// ScoreComparison compares the six review score dimensions for the fixed
// category's listings against the complement set, selected by listing-id
// exclusion. Exactly two rows are returned. Only reviews carrying all six
// scores participate.
func (e *Engine) ScoreComparison(prep *Prepared) []domain.ScoreComparisonRow {
	inCategory := make(map[int64]bool)
	for id, l := range prep.listingByID {
		if NormalizeKey(l.PropertyType) == e.category {
			inCategory[id] = true
		}
	}

	var catAcc, restAcc scoreAcc
	catCount, restCount := 0, 0
	for listingID, reviews := range prep.reviewsByListing {
		for _, r := range reviews {
			if !r.HasAllScores() {
				continue
			}
			if inCategory[listingID] {
				catAcc.AddScores(r.Scores())
				catCount++
			} else {
				restAcc.AddScores(r.Scores())
				restCount++
			}
		}
	}

	return []domain.ScoreComparisonRow{
		{Category: e.category, ReviewCount: catCount, ScoreAverages: e.scoreAverages(prep, &catAcc)},
		{Category: "All Other", ReviewCount: restCount, ScoreAverages: e.scoreAverages(prep, &restAcc)},
	}
}

// PriceTierScoresByCity runs the two-phase tier comparison per city:
// phase one computes the city's average USD price over its full listing
// population, phase two re-scans the same population split at that
// average and aggregates review scores per bucket. Both phases share the
// same city key and the same converted prices.
func (e *Engine) PriceTierScoresByCity(prep *Prepared) []domain.PriceTierScores {
	byCity := GroupBy(prep.ratedListings(), func(l domain.Listing) string {
		return NormalizeKey(l.City)
	})

	cities := make([]string, 0, len(byCity))
	for city := range byCity {
		cities = append(cities, city)
	}
	sort.Strings(cities)

	out := make([]domain.PriceTierScores, 0, len(cities))
	for _, city := range cities {
		listings := byCity[city]

		var priceAcc meanAcc
		for _, l := range listings {
			priceAcc.Add(prep.mustUSD(l))
		}
		avgPrice, _ := priceAcc.Mean(e.policy)

		above, below := SplitAtThreshold(listings, avgPrice, prep.mustUSD)

		aboveScores, aboveReviews := e.bucketScores(prep, above)
		belowScores, belowReviews := e.bucketScores(prep, below)

		out = append(out, domain.PriceTierScores{
			City:          city,
			AvgPriceUSD:   avgPrice,
			AboveListings: len(above),
			BelowListings: len(below),
			AboveReviews:  aboveReviews,
			BelowReviews:  belowReviews,
			Above:         aboveScores,
			Below:         belowScores,
		})
	}
	return out
}

// bucketScores aggregates the six score dimensions over all fully scored
// reviews of the given listings and returns the qualifying review count,
// so the presentation layer can tell an empty score aggregate from one
// that genuinely averaged to zero.
func (e *Engine) bucketScores(prep *Prepared, listings []domain.Listing) (domain.ScoreAverages, int) {
	var acc scoreAcc
	reviews := 0
	for _, l := range listings {
		for _, r := range prep.Reviews(l.ID) {
			if r.HasAllScores() {
				acc.AddScores(r.Scores())
				reviews++
			}
		}
	}
	return e.scoreAverages(prep, &acc), reviews
}

// scoreAverages resolves a score accumulator into the six mean columns
// under the engine's null policy.
func (e *Engine) scoreAverages(prep *Prepared, acc *scoreAcc) domain.ScoreAverages {
	if acc[0].Count() == 0 {
		prep.noteEmptyPartition()
	}
	mean := func(i int) float64 {
		v, _ := acc[i].Mean(e.policy)
		return v
	}
	return domain.ScoreAverages{
		Overall:       mean(0),
		Cleanliness:   mean(1),
		Location:      mean(2),
		Value:         mean(3),
		Accuracy:      mean(4),
		Communication: mean(5),
	}
}

// MarketCompetitiveness summarizes each city over the listings carrying at
// least one non-null overall rating: how many such listings, their average
// USD price and the average overall rating. Ordered by listing count
// descending, then city ascending.
func (e *Engine) MarketCompetitiveness(prep *Prepared) []domain.CityCompetitiveness {
	type cityAgg struct {
		listings int
		price    meanAcc
		rating   meanAcc
	}
	byCity := make(map[string]*cityAgg)

	for _, l := range prep.ratedListings() {
		rated := false
		var overall meanAcc
		for _, r := range prep.Reviews(l.ID) {
			if r.Overall != nil {
				rated = true
				overall.AddPtr(r.Overall)
			}
		}
		if !rated {
			continue
		}
		city := NormalizeKey(l.City)
		agg := byCity[city]
		if agg == nil {
			agg = &cityAgg{}
			byCity[city] = agg
		}
		agg.listings++
		agg.price.Add(prep.mustUSD(l))
		agg.rating.sum += overall.sum
		agg.rating.n += overall.n
	}

	out := make([]domain.CityCompetitiveness, 0, len(byCity))
	for city, agg := range byCity {
		avgPrice, _ := agg.price.Mean(e.policy)
		avgRating, _ := agg.rating.Mean(e.policy)
		out = append(out, domain.CityCompetitiveness{
			City:          city,
			TotalListings: agg.listings,
			AvgPriceUSD:   avgPrice,
			AvgRating:     avgRating,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalListings != out[j].TotalListings {
			return out[i].TotalListings > out[j].TotalListings
		}
		return out[i].City < out[j].City
	})
	return out
}

// VerificationImpact compares review scores by host verification status.
// A host with both a profile picture and a verified identity lands in the
// positive bucket; any other combination lands in the single negative
// bucket. Exactly two rows are returned.
func (e *Engine) VerificationImpact(prep *Prepared) []domain.VerificationImpactRow {
	var verified, unverified scoreAcc
	verifiedCount, unverifiedCount := 0, 0

	for _, reviews := range prep.reviewsByListing {
		for _, r := range reviews {
			if !r.HasAllScores() {
				continue
			}
			host, ok := prep.hostByID[r.HostID]
			if !ok {
				continue // dangling host reference, already counted
			}
			if host.FullyVerified() {
				verified.AddScores(r.Scores())
				verifiedCount++
			} else {
				unverified.AddScores(r.Scores())
				unverifiedCount++
			}
		}
	}

	return []domain.VerificationImpactRow{
		{Status: domain.VerificationBoth, ReviewCount: verifiedCount, ScoreAverages: e.scoreAverages(prep, &verified)},
		{Status: domain.VerificationNone, ReviewCount: unverifiedCount, ScoreAverages: e.scoreAverages(prep, &unverified)},
	}
}
