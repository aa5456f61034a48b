package analytics

// NullPolicy declares how an aggregate with zero qualifying inputs is
// presented. The source data substitutes 0 or the literal "Unknown"
// depending on context; making the policy an explicit parameter turns that
// behavior into a contract instead of a call-site convention.
type NullPolicy int

const (
	// ZeroFill resolves an empty aggregate to 0.
	ZeroFill NullPolicy = iota
	// UnknownLabel resolves an empty aggregate to the "Unknown" label at
	// presentation time; numerically it behaves like PropagateNull.
	UnknownLabel
	// PropagateNull marks the aggregate as having no value.
	PropagateNull
)

// String returns the policy name.
func (p NullPolicy) String() string {
	switch p {
	case ZeroFill:
		return "zero_fill"
	case UnknownLabel:
		return "unknown_label"
	case PropagateNull:
		return "propagate_null"
	default:
		return "unknown"
	}
}

// UnknownKey is the bucket for grouping key values absent in source rows.
// Absent keys are normalized into this bucket, never silently dropped.
const UnknownKey = "Unknown"

// NormalizeKey maps an absent grouping key value to the Unknown bucket.
func NormalizeKey(s string) string {
	if s == "" {
		return UnknownKey
	}
	return s
}

// CityType is the composite grouping key for city × property-type
// aggregates. Grouping keys are derived, not stored entities; they exist
// only as aggregation output.
type CityType struct {
	City         string
	PropertyType string
}

// GroupBy buckets rows by the given key extractor. Output ordering across
// groups is not guaranteed; callers sort as their final presentation step.
func GroupBy[T any, K comparable](rows []T, key func(T) K) map[K][]T {
	groups := make(map[K][]T)
	for _, r := range rows {
		k := key(r)
		groups[k] = append(groups[k], r)
	}
	return groups
}

// meanAcc accumulates an arithmetic mean over non-null values. The zero
// value is ready to use.
type meanAcc struct {
	sum float64
	n   int
}

// Add includes a value in the mean.
func (m *meanAcc) Add(v float64) {
	m.sum += v
	m.n++
}

// AddPtr includes a nullable value: nil is excluded from the aggregate per
// the NullMetric rule rather than treated as zero.
func (m *meanAcc) AddPtr(p *float64) {
	if p != nil {
		m.Add(*p)
	}
}

// Count returns the number of non-null values seen.
func (m *meanAcc) Count() int {
	return m.n
}

// Mean returns the arithmetic mean under the given policy. For an empty
// accumulator ZeroFill yields (0, true); the other policies yield
// (0, false) and leave labeling to the presentation layer. Aggregates
// never raise on empty input.
func (m *meanAcc) Mean(policy NullPolicy) (float64, bool) {
	if m.n == 0 {
		if policy == ZeroFill {
			return 0, true
		}
		return 0, false
	}
	return m.sum / float64(m.n), true
}

// scoreAcc accumulates the six review score dimensions side by side, in
// the canonical column order.
type scoreAcc [6]meanAcc

// AddScores folds one review's six nullable scores into the accumulator.
func (s *scoreAcc) AddScores(scores [6]*float64) {
	for i, p := range scores {
		s[i].AddPtr(p)
	}
}
