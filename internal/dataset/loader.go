package dataset

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"

	"staypulse/pkg/contracts/domain"
)

// Default file names inside the snapshot directory.
const (
	ListingsFile = "listings.csv"
	HostsFile    = "hosts.csv"
	ReviewsFile  = "reviews.csv"
	RatesFile    = "exchange_rates.csv"
)

// LoadSnapshot loads all four relations from the given directory and
// returns them as one immutable snapshot.
func LoadSnapshot(dir string) (*domain.Snapshot, error) {
	listings, err := LoadListings(filepath.Join(dir, ListingsFile))
	if err != nil {
		return nil, fmt.Errorf("load listings: %w", err)
	}
	hosts, err := LoadHosts(filepath.Join(dir, HostsFile))
	if err != nil {
		return nil, fmt.Errorf("load hosts: %w", err)
	}
	reviews, err := LoadReviews(filepath.Join(dir, ReviewsFile))
	if err != nil {
		return nil, fmt.Errorf("load reviews: %w", err)
	}
	rates, err := LoadRates(filepath.Join(dir, RatesFile))
	if err != nil {
		return nil, fmt.Errorf("load exchange rates: %w", err)
	}

	slog.Info("snapshot loaded",
		slog.String("dir", dir),
		slog.Int("listings", len(listings)),
		slog.Int("hosts", len(hosts)),
		slog.Int("reviews", len(reviews)),
		slog.Int("rates", len(rates)),
	)

	return &domain.Snapshot{
		Listings: listings,
		Hosts:    hosts,
		Reviews:  reviews,
		Rates:    rates,
	}, nil
}

// LoadListings reads the listings relation. City and property type are
// kept as-is when empty; the analytics engine owns Unknown-bucket
// normalization.
func LoadListings(path string) ([]domain.Listing, error) {
	records, err := readRecords(path)
	if err != nil {
		return nil, err
	}

	header := records[0]
	cols := map[string]int{
		"id":            findColumn(header, "id", "listing_id"),
		"city":          findColumn(header, "city", "market", "neighbourhood_city"),
		"property_type": findColumn(header, "property_type", "room_type"),
		"price":         findColumn(header, "price", "local_price"),
		"host_id":       findColumn(header, "host_id"),
	}
	if err := requireColumns(path, cols); err != nil {
		return nil, err
	}

	listings := make([]domain.Listing, 0, len(records)-1)
	skipped := 0
	for _, record := range records[1:] {
		id, err := strconv.ParseInt(cell(record, cols["id"]), 10, 64)
		if err != nil {
			skipped++
			continue
		}
		hostID, _ := strconv.ParseInt(cell(record, cols["host_id"]), 10, 64)
		price := 0.0
		if p := parseNullableFloat(cell(record, cols["price"])); p != nil {
			price = *p
		}
		listings = append(listings, domain.Listing{
			ID:           id,
			City:         cell(record, cols["city"]),
			PropertyType: cell(record, cols["property_type"]),
			LocalPrice:   price,
			HostID:       hostID,
		})
	}
	if skipped > 0 {
		slog.Warn("skipped listings with unparseable id", slog.String("file", path), slog.Int("count", skipped))
	}
	return listings, nil
}

// LoadHosts reads the hosts relation.
func LoadHosts(path string) ([]domain.Host, error) {
	records, err := readRecords(path)
	if err != nil {
		return nil, err
	}

	header := records[0]
	cols := map[string]int{
		"id":                findColumn(header, "id", "host_id"),
		"profile_picture":   findColumn(header, "profile_picture", "has_profile_pic", "host_has_profile_pic"),
		"identity_verified": findColumn(header, "identity_verified", "host_identity_verified"),
	}
	if err := requireColumns(path, cols); err != nil {
		return nil, err
	}

	hosts := make([]domain.Host, 0, len(records)-1)
	for _, record := range records[1:] {
		id, err := strconv.ParseInt(cell(record, cols["id"]), 10, 64)
		if err != nil {
			continue
		}
		hosts = append(hosts, domain.Host{
			ID:               id,
			ProfilePicture:   parseBool(cell(record, cols["profile_picture"])),
			IdentityVerified: parseBool(cell(record, cols["identity_verified"])),
		})
	}
	return hosts, nil
}

// LoadReviews reads the reviews relation, preserving null scores as nil.
func LoadReviews(path string) ([]domain.Review, error) {
	records, err := readRecords(path)
	if err != nil {
		return nil, err
	}

	header := records[0]
	cols := map[string]int{
		"listing_id":    findColumn(header, "listing_id"),
		"host_id":       findColumn(header, "host_id"),
		"overall":       findColumn(header, "overall", "review_scores_rating", "rating"),
		"cleanliness":   findColumn(header, "cleanliness", "review_scores_cleanliness"),
		"location":      findColumn(header, "location", "review_scores_location"),
		"value":         findColumn(header, "value", "review_scores_value"),
		"accuracy":      findColumn(header, "accuracy", "review_scores_accuracy"),
		"communication": findColumn(header, "communication", "review_scores_communication"),
	}
	if err := requireColumns(path, cols); err != nil {
		return nil, err
	}

	reviews := make([]domain.Review, 0, len(records)-1)
	for _, record := range records[1:] {
		listingID, err := strconv.ParseInt(cell(record, cols["listing_id"]), 10, 64)
		if err != nil {
			continue
		}
		hostID, _ := strconv.ParseInt(cell(record, cols["host_id"]), 10, 64)
		reviews = append(reviews, domain.Review{
			ListingID:     listingID,
			HostID:        hostID,
			Overall:       parseNullableFloat(cell(record, cols["overall"])),
			Cleanliness:   parseNullableFloat(cell(record, cols["cleanliness"])),
			Location:      parseNullableFloat(cell(record, cols["location"])),
			Value:         parseNullableFloat(cell(record, cols["value"])),
			Accuracy:      parseNullableFloat(cell(record, cols["accuracy"])),
			Communication: parseNullableFloat(cell(record, cols["communication"])),
		})
	}
	return reviews, nil
}

// LoadRates reads the exchange rate relation, one row per city.
func LoadRates(path string) ([]domain.ExchangeRate, error) {
	records, err := readRecords(path)
	if err != nil {
		return nil, err
	}

	header := records[0]
	cols := map[string]int{
		"city": findColumn(header, "city", "market"),
		"rate": findColumn(header, "rate", "exchange_rate", "usd_rate"),
	}
	if err := requireColumns(path, cols); err != nil {
		return nil, err
	}

	rates := make([]domain.ExchangeRate, 0, len(records)-1)
	for _, record := range records[1:] {
		rate := parseNullableFloat(cell(record, cols["rate"]))
		city := cell(record, cols["city"])
		if city == "" || rate == nil {
			continue
		}
		rates = append(rates, domain.ExchangeRate{City: city, Rate: *rate})
	}
	return rates, nil
}
