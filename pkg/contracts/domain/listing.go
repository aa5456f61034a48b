package domain

// Listing represents a single rental listing as supplied by the ingestion
// collaborator. City and PropertyType may be empty in the source data; the
// analytics engine normalizes empty grouping keys to "Unknown".
type Listing struct {
	ID           int64   `json:"id" validate:"required"`
	City         string  `json:"city"`
	PropertyType string  `json:"property_type"`
	LocalPrice   float64 `json:"local_price" validate:"min=0"`
	HostID       int64   `json:"host_id"`
}

// Host represents a listing owner and their verification state.
type Host struct {
	ID               int64 `json:"id" validate:"required"`
	ProfilePicture   bool  `json:"profile_picture"`
	IdentityVerified bool  `json:"identity_verified"`
}

// FullyVerified reports whether the host satisfies every clause of the
// positive verification condition. Any partial combination counts as not
// verified.
func (h Host) FullyVerified() bool {
	return h.ProfilePicture && h.IdentityVerified
}

// Review holds the six guest score dimensions for one stay. Each score is
// nullable in the source data, represented here as a pointer.
type Review struct {
	ListingID     int64    `json:"listing_id"`
	HostID        int64    `json:"host_id"`
	Overall       *float64 `json:"overall"`
	Cleanliness   *float64 `json:"cleanliness"`
	Location      *float64 `json:"location"`
	Value         *float64 `json:"value"`
	Accuracy      *float64 `json:"accuracy"`
	Communication *float64 `json:"communication"`
}

// HasAllScores reports whether all six score dimensions are present. Only
// such reviews are eligible for the six-column comparison aggregates;
// partially scored reviews still contribute their individual non-null
// scores to single-metric aggregates.
func (r Review) HasAllScores() bool {
	return r.Overall != nil && r.Cleanliness != nil && r.Location != nil &&
		r.Value != nil && r.Accuracy != nil && r.Communication != nil
}

// Scores returns the six score dimensions in their canonical column order:
// overall, cleanliness, location, value, accuracy, communication.
func (r Review) Scores() [6]*float64 {
	return [6]*float64{r.Overall, r.Cleanliness, r.Location, r.Value, r.Accuracy, r.Communication}
}

// ExchangeRate maps a city to its conversion rate into the reference
// currency (USD). One row per city.
type ExchangeRate struct {
	City string  `json:"city" validate:"required"`
	Rate float64 `json:"rate" validate:"gt=0"`
}

// Snapshot is the immutable four-relation input to an analysis run. The
// ingestion collaborator is responsible for producing a consistent,
// complete snapshot before the core is invoked; the core never mutates it.
type Snapshot struct {
	Listings []Listing      `json:"listings"`
	Hosts    []Host         `json:"hosts"`
	Reviews  []Review       `json:"reviews"`
	Rates    []ExchangeRate `json:"rates"`
}
