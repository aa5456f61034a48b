package analytics

import (
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"

	"staypulse/pkg/contracts/domain"
)

// Prepared is the validated, indexed view of a snapshot that the report
// queries read from. It is built once per run and never mutated afterwards
// (the empty-partition tally uses an atomic counter so reports can run in
// parallel). All joins required by the reports happen here: rows with a
// dangling foreign key are dropped from the joined indexes, counted, and
// logged, never fatal.
type Prepared struct {
	snap *domain.Snapshot
	conv *Converter

	hostByID         map[int64]domain.Host
	listingByID      map[int64]domain.Listing
	reviewsByListing map[int64][]domain.Review
	usdByListing     map[int64]float64

	stats           domain.RunStats
	emptyPartitions atomic.Int64
}

// Prepare validates the snapshot structurally and builds the join indexes.
// A structural problem (duplicate keys, non-positive rate, negative price)
// is the only hard failure; it is returned before any aggregation begins.
func Prepare(snap *domain.Snapshot, logger *slog.Logger) (*Prepared, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if snap == nil || len(snap.Listings) == 0 {
		return nil, ErrEmptySnapshot
	}

	p := &Prepared{
		snap:             snap,
		conv:             NewConverter(snap.Rates),
		hostByID:         make(map[int64]domain.Host, len(snap.Hosts)),
		listingByID:      make(map[int64]domain.Listing, len(snap.Listings)),
		reviewsByListing: make(map[int64][]domain.Review),
		usdByListing:     make(map[int64]float64, len(snap.Listings)),
	}

	seenRate := make(map[string]bool, len(snap.Rates))
	for _, r := range snap.Rates {
		if r.Rate <= 0 {
			return nil, &ValidationError{Entity: "exchange_rate", Key: r.City, Err: ErrInvalidRate}
		}
		if seenRate[r.City] {
			return nil, &ValidationError{Entity: "exchange_rate", Key: r.City, Err: ErrDuplicateRate}
		}
		seenRate[r.City] = true
	}

	for _, h := range snap.Hosts {
		if _, dup := p.hostByID[h.ID]; dup {
			return nil, &ValidationError{Entity: "host", Key: strconv.FormatInt(h.ID, 10), Err: ErrDuplicateHost}
		}
		p.hostByID[h.ID] = h
	}

	for _, l := range snap.Listings {
		if l.LocalPrice < 0 {
			return nil, &ValidationError{Entity: "listing", Key: strconv.FormatInt(l.ID, 10), Err: ErrNegativePrice}
		}
		if _, dup := p.listingByID[l.ID]; dup {
			return nil, &ValidationError{Entity: "listing", Key: strconv.FormatInt(l.ID, 10), Err: ErrDuplicateListing}
		}
		p.listingByID[l.ID] = l

		if usd, ok := p.conv.USD(l); ok {
			p.usdByListing[l.ID] = usd
		} else {
			p.stats.ListingsMissingRate++
		}
		if _, ok := p.hostByID[l.HostID]; !ok {
			p.stats.ListingsUnknownHost++
		}
	}

	for _, r := range snap.Reviews {
		if _, ok := p.listingByID[r.ListingID]; !ok {
			p.stats.ReviewsUnknownListing++
			continue
		}
		if _, ok := p.hostByID[r.HostID]; !ok {
			p.stats.ReviewsUnknownHost++
		}
		if !r.HasAllScores() {
			p.stats.PartialScoreReviews++
		}
		p.reviewsByListing[r.ListingID] = append(p.reviewsByListing[r.ListingID], r)
	}

	logger.Info("snapshot prepared",
		slog.Int("listings", len(snap.Listings)),
		slog.Int("hosts", len(snap.Hosts)),
		slog.Int("reviews", len(snap.Reviews)),
		slog.Int("rate_cities", len(snap.Rates)),
		slog.Int("listings_missing_rate", p.stats.ListingsMissingRate),
		slog.Int("reviews_unknown_listing", p.stats.ReviewsUnknownListing),
		slog.Int("partial_score_reviews", p.stats.PartialScoreReviews),
	)

	return p, nil
}

// USD returns the converted price for a listing, false when its city has
// no exchange rate.
func (p *Prepared) USD(id int64) (float64, bool) {
	usd, ok := p.usdByListing[id]
	return usd, ok
}

// Reviews returns the reviews joined to a listing.
func (p *Prepared) Reviews(id int64) []domain.Review {
	return p.reviewsByListing[id]
}

// Stats returns the run statistics including sentinel substitutions made
// by report queries so far.
func (p *Prepared) Stats() domain.RunStats {
	s := p.stats
	s.EmptyPartitions = int(p.emptyPartitions.Load())
	return s
}

// noteEmptyPartition records a sentinel substitution for an aggregate with
// zero qualifying rows. Safe for concurrent use.
func (p *Prepared) noteEmptyPartition() {
	p.emptyPartitions.Add(1)
}

// ratedListings returns the listings participating in USD-denominated
// aggregates, i.e. those whose city has an exchange rate row.
func (p *Prepared) ratedListings() []domain.Listing {
	out := make([]domain.Listing, 0, len(p.usdByListing))
	for _, l := range p.snap.Listings {
		if _, ok := p.usdByListing[l.ID]; ok {
			out = append(out, l)
		}
	}
	return out
}

// mustUSD is the metric accessor for listings already known to be rated.
func (p *Prepared) mustUSD(l domain.Listing) float64 {
	usd, ok := p.usdByListing[l.ID]
	if !ok {
		panic(fmt.Sprintf("listing %d has no exchange rate", l.ID))
	}
	return usd
}
