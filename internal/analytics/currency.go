package analytics

import (
	"staypulse/pkg/contracts/domain"
)

// Converter translates a listing's local price into the reference currency
// using the per-city rate table. It is a pure lookup: the same listing and
// rate table always produce the same converted value, and nothing is
// mutated or cached between calls.
type Converter struct {
	rates map[string]float64
}

// NewConverter builds a Converter from the exchange rate relation. Rows
// with a non-positive rate are rejected upstream by snapshot validation.
func NewConverter(rates []domain.ExchangeRate) *Converter {
	m := make(map[string]float64, len(rates))
	for _, r := range rates {
		m[r.City] = r.Rate
	}
	return &Converter{rates: m}
}

// USD converts the listing's local price to the reference currency. The
// second return value is false when the listing's city has no rate row, in
// which case the listing is excluded from price-based aggregates rather
// than zero-filled.
func (c *Converter) USD(l domain.Listing) (float64, bool) {
	rate, ok := c.rates[l.City]
	if !ok {
		return 0, false
	}
	return l.LocalPrice * rate, true
}
